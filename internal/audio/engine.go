// SPDX-License-Identifier: MIT
/*
Package audio captures live input and turns it into tuning readings:
- Audio capture using PortAudio into a block-sized snapshot buffer
- Per-block pitch analysis through a tuning session
- Noise gate with branchless peak detection
- WAV recording with atomic state management
- WAV file decoding and reference tone playback

Thread Safety:
- The capture callback and the analysis loop share only the Buffer
- Pre-allocates buffers to avoid GC in hot path
- Locks OS thread during audio processing
*/
package audio

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"tuner/internal/config"
	"tuner/internal/log"
	"tuner/internal/pitch"
	"tuner/internal/tuner"
)

// Sink receives every reading the engine produces. Transports satisfy it.
type Sink interface {
	Send(data any) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(data any) error

// Send calls f(data).
func (f SinkFunc) Send(data any) error {
	return f(data)
}

type Engine struct {
	// Core configuration and state.
	config  *config.Config
	session *tuner.Session
	sinks   []Sink

	// Audio input handling.
	inputBuffer  []int32
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// Latest mono block, shared with the analysis loop.
	buffer   *Buffer
	analysis []float64 // snapshot owned by Run

	// Noise gate for signal conditioning.
	gate Gate

	// Recording state and buffers.
	isRecording int32 // Atomic flag for thread-safe state
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer // Reusable buffer for format conversion
}

// NewEngine opens the configured input device and prepares an engine that
// analyses each captured block with session and hands the readings to
// sinks. PortAudio must be initialised.
func NewEngine(cfg *config.Config, session *tuner.Session, sinks ...Sink) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}

	engine, err := newEngine(cfg, session, sinks...)
	if err != nil {
		return nil, err
	}
	engine.inputDevice = inputDevice

	if cfg.Audio.LowLatency {
		engine.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		engine.inputLatency = inputDevice.DefaultHighInputLatency
	}

	return engine, nil
}

// newEngine builds everything but the device binding.
func newEngine(cfg *config.Config, session *tuner.Session, sinks ...Sink) (*Engine, error) {
	if session.BlockSize() != cfg.Audio.BlockSize {
		return nil, fmt.Errorf("session block size %d does not match audio.block_size %d",
			session.BlockSize(), cfg.Audio.BlockSize)
	}

	// Pre-allocate I/O buffers sized for frames × channels.
	inputSize := cfg.Audio.BlockSize * cfg.Audio.InputChannels

	engine := &Engine{
		config:      cfg,
		session:     session,
		sinks:       sinks,
		inputBuffer: make([]int32, inputSize),
		buffer:      NewBuffer(cfg.Audio.BlockSize),
		analysis:    make([]float64, cfg.Audio.BlockSize),
		gate:        NewGate(cfg.Gate.Enabled, cfg.Gate.Threshold),
	}

	return engine, nil
}

func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.config.Audio.InputChannels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.config.Audio.BlockSize,
		SampleRate:      float64(e.config.Audio.SampleRate),
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return err
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		return err
	}

	log.Infof("audio: capturing from %q at %d Hz, %d frames per block",
		e.inputDevice.Name, e.config.Audio.SampleRate, e.config.Audio.BlockSize)
	return nil
}

func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}

		if err := e.inputStream.Close(); err != nil {
			return err
		}

		e.inputStream = nil
	}

	return nil
}

// processInputStream is the capture callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	copy(e.inputBuffer, in)
	e.buffer.Write(e.inputBuffer, e.config.Audio.InputChannels)

	// Write to WAV file if recording
	if atomic.LoadInt32(&e.isRecording) == 1 && e.wavEncoder != nil {
		e.recordBuffer(e.inputBuffer)
	}
}

// Run analyses one snapshot per captured block until ctx is cancelled and
// dispatches each reading to the sinks. It returns nil on cancellation.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.buffer.Ready():
		}

		peak, _ := e.buffer.Snapshot(e.analysis)
		e.dispatch(e.analyze(e.analysis, peak))
	}
}

// analyze runs the session over samples unless the gate holds the block
// back, in which case the no-signal reading is returned.
func (e *Engine) analyze(samples []float64, peak int32) tuner.Reading {
	if !e.gate.Passes(peak) {
		return tuner.SilentReading(time.Now())
	}

	block := pitch.AudioBlock{Samples: samples, SampleRate: e.config.Audio.SampleRate}
	reading, err := e.session.Read(block)
	if err != nil {
		log.Warnf("audio: analysis failed: %v", err)
	}
	return reading
}

func (e *Engine) dispatch(reading tuner.Reading) {
	for _, sink := range e.sinks {
		if err := sink.Send(reading); err != nil {
			log.Warnf("audio: sink %T: %v", sink, err)
		}
	}
}
