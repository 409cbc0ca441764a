// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"tuner/internal/log"
	"tuner/internal/pitch"
	"tuner/internal/spectral"
	"tuner/pkg/bitint"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// DefaultPath is the file LoadConfig looks for when no path is given.
const DefaultPath = "config.yaml"

// LoadConfig loads configuration from the YAML file at path. If path is
// empty it tries DefaultPath and falls back to built-in defaults when that
// file does not exist. Environment overrides are applied after the file
// and the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err != nil {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	log.Debugf("configuration: loaded %s", path)

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if _, ok := log.ParseLevel(c.LogLevel); !ok && c.LogLevel != "" {
		return invalid("log_level %q is not a known level", c.LogLevel)
	}

	// Audio
	a := c.Audio
	if a.InputDevice < MinDeviceID {
		return invalid("audio.input_device must be >= %d, got %d", MinDeviceID, a.InputDevice)
	}
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		return invalid("audio.sample_rate must be within [%d, %d], got %d", MinSampleRate, MaxSampleRate, a.SampleRate)
	}
	if a.BlockSize < pitch.MinBlockSize || a.BlockSize > MaxBlockSize {
		return invalid("audio.block_size must be within [%d, %d], got %d", pitch.MinBlockSize, MaxBlockSize, a.BlockSize)
	}
	if a.InputChannels < 1 {
		return invalid("audio.input_channels must be at least 1, got %d", a.InputChannels)
	}
	if _, err := pitch.ParseWindowFunc(a.Window); err != nil {
		return invalid("audio.window: %v", err)
	}

	// Tuning
	if r := c.Tuning.ReferenceHz; math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return invalid("tuning.reference_hz must be finite and positive, got %v", r)
	}
	backend, err := spectral.ParseBackend(c.Tuning.Transform)
	if err != nil {
		return invalid("tuning.transform: %v", err)
	}
	if backend == spectral.Radix2 && !bitint.IsPowerOfTwo(a.BlockSize) {
		return invalid("audio.block_size must be a power of two for the radix2 transform, got %d", a.BlockSize)
	}

	// Gate
	if t := c.Gate.Threshold; t < 0 || t > 1 {
		return invalid("gate.threshold must be within [0, 1], got %v", t)
	}

	// Recording
	switch c.Recording.BitDepth {
	case 16, 24, 32:
	default:
		return invalid("recording.bit_depth must be 16, 24 or 32, got %d", c.Recording.BitDepth)
	}
	if c.Recording.Enabled && c.Recording.OutputDir == "" {
		return invalid("recording.output_dir must be set when recording is enabled")
	}

	// Transport
	t := c.Transport
	if t.WebSocketEnabled && t.WebSocketAddress == "" {
		return invalid("transport.websocket_address must be set when the websocket is enabled")
	}
	if t.UDPEnabled {
		if t.UDPTargetAddress == "" {
			return invalid("transport.udp_target_address must be set when UDP is enabled")
		}
		if t.UDPSendInterval <= 0 {
			return invalid("transport.udp_send_interval must be positive when UDP is enabled")
		}
	}

	// Tone
	if v := c.Tone.Volume; v < 0 || v > 1 {
		return invalid("tone.volume must be within [0, 1], got %v", v)
	}
	if c.Tone.Duration < 0 {
		return invalid("tone.duration must not be negative, got %s", c.Tone.Duration)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// applyEnvOverrides replaces values with ENV_* variables when set and
// parseable. Unparseable values are logged and ignored.
func (c *Config) applyEnvOverrides() {
	// ENV_{...}
	// These are general overrides.
	envBool("ENV_DEBUG", "debug", &c.Debug)
	envString("ENV_LOG_LEVEL", "log_level", &c.LogLevel)

	// ENV_REFERENCE_HZ, ENV_SAMPLE_RATE, ENV_BLOCK_SIZE
	// These are specific to the analysis.
	if val, ok := os.LookupEnv("ENV_REFERENCE_HZ"); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.Tuning.ReferenceHz = f
			log.Infof("configuration: overriding tuning.reference_hz from env: %v", f)
		} else {
			log.Warnf("configuration: ignoring ENV_REFERENCE_HZ=%q: %v", val, err)
		}
	}
	envInt("ENV_SAMPLE_RATE", "audio.sample_rate", &c.Audio.SampleRate)
	envInt("ENV_BLOCK_SIZE", "audio.block_size", &c.Audio.BlockSize)

	// ENV_UDP_{...}, ENV_WS_{...}
	// These are specific to the transport layer.
	envBool("ENV_UDP_ENABLED", "transport.udp_enabled", &c.Transport.UDPEnabled)
	envString("ENV_UDP_TARGET_ADDRESS", "transport.udp_target_address", &c.Transport.UDPTargetAddress)
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
			log.Infof("configuration: overriding transport.udp_send_interval from env: %s", dur)
		} else {
			log.Warnf("configuration: ignoring ENV_UDP_SEND_INTERVAL=%q: %v", val, err)
		}
	}
	envBool("ENV_WS_ENABLED", "transport.websocket_enabled", &c.Transport.WebSocketEnabled)
	envString("ENV_WS_ADDRESS", "transport.websocket_address", &c.Transport.WebSocketAddress)
}

func envBool(key, field string, dst *bool) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		log.Warnf("configuration: ignoring %s=%q: %v", key, val, err)
		return
	}
	*dst = b
	log.Infof("configuration: overriding %s from env: %v", field, b)
}

func envInt(key, field string, dst *int) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		log.Warnf("configuration: ignoring %s=%q: %v", key, val, err)
		return
	}
	*dst = n
	log.Infof("configuration: overriding %s from env: %d", field, n)
}

func envString(key, field string, dst *string) {
	if val, ok := os.LookupEnv(key); ok {
		*dst = val
		log.Infof("configuration: overriding %s from env: %s", field, val)
	}
}
