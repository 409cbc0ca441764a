// SPDX-License-Identifier: MIT
package config

import "time"

// Defaults and limits for the tuner configuration.
const (
	// Audio defaults
	DefaultDeviceID      = MinDeviceID // System default input device
	DefaultSampleRate    = 44100       // CD-quality audio
	DefaultBlockSize     = 1024        // ~23 ms at 44.1 kHz, 43 Hz bins
	DefaultInputChannels = 1           // Mono
	DefaultWindow        = "hann"

	// Tuning defaults
	DefaultReferenceHz = 440.0
	DefaultTransform   = "radix2"

	// Noise gate defaults
	DefaultGateThreshold = 0.001 // ~0.1% of full scale

	// Recording defaults
	DefaultOutputDir = "./recordings"
	DefaultBitDepth  = 16

	// Transport defaults
	DefaultWebSocketAddress = ":8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 33 * time.Millisecond // ~30 Hz

	// Reference tone defaults
	DefaultToneDuration = 2 * time.Second
	DefaultToneVolume   = 0.3

	// Hardware and processing limits
	MinDeviceID   = -1     // -1 represents system default device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MaxBlockSize  = 65536  // Largest analysis block
)

// Config represents the tuner configuration, loaded from YAML and
// overridden by environment variables and command line flags.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Enable debug logging.
	LogLevel  string          `yaml:"log_level"` // Logging level ("debug", "info", "warn", "error").
	Audio     AudioConfig     `yaml:"audio"`
	Tuning    TuningConfig    `yaml:"tuning"`
	Gate      GateConfig      `yaml:"gate"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
	Tone      ToneConfig      `yaml:"tone"`
}

// AudioConfig holds capture and analysis block settings.
type AudioConfig struct {
	InputDevice   int    `yaml:"input_device"`   // PortAudio device index (-1 for default).
	SampleRate    int    `yaml:"sample_rate"`    // Sample rate in Hz.
	BlockSize     int    `yaml:"block_size"`     // Samples per analysed block.
	InputChannels int    `yaml:"input_channels"` // Captured channels; channel 0 is analysed.
	LowLatency    bool   `yaml:"low_latency"`    // Request low latency settings from PortAudio.
	Window        string `yaml:"window"`         // Analysis window name.
}

// TuningConfig holds the pitch reference and transform choice.
type TuningConfig struct {
	ReferenceHz float64 `yaml:"reference_hz"` // Frequency of A4.
	Transform   string  `yaml:"transform"`    // "radix2" or "gonum".
}

// GateConfig holds the noise gate settings.
type GateConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Threshold float64 `yaml:"threshold"` // Peak amplitude, 0..1.
}

// RecordingConfig holds settings for capturing the input to WAV.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OutputDir string `yaml:"output_dir"` // Directory for recordings.
	BitDepth  int    `yaml:"bit_depth"`  // 16, 24 or 32.
}

// TransportConfig holds settings for publishing readings.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddress string        `yaml:"websocket_address"`  // Listen address, e.g. ":8080".
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Enable sending readings over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target host:port for UDP packets.
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between UDP packets.
}

// ToneConfig holds reference tone playback settings.
type ToneConfig struct {
	Duration time.Duration `yaml:"duration"`
	Volume   float64       `yaml:"volume"` // 0..1.
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:   DefaultDeviceID,
			SampleRate:    DefaultSampleRate,
			BlockSize:     DefaultBlockSize,
			InputChannels: DefaultInputChannels,
			Window:        DefaultWindow,
		},
		Tuning: TuningConfig{
			ReferenceHz: DefaultReferenceHz,
			Transform:   DefaultTransform,
		},
		Gate: GateConfig{
			Enabled:   true,
			Threshold: DefaultGateThreshold,
		},
		Recording: RecordingConfig{
			OutputDir: DefaultOutputDir,
			BitDepth:  DefaultBitDepth,
		},
		Transport: TransportConfig{
			WebSocketAddress: DefaultWebSocketAddress,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
		Tone: ToneConfig{
			Duration: DefaultToneDuration,
			Volume:   DefaultToneVolume,
		},
	}
}
