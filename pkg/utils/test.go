// SPDX-License-Identifier: MIT

// Package utils holds the synthetic signals and the recording transport
// shared by the tuner's tests and benchmarks.
package utils

import (
	"math"
	"sync"
)

// MockTransport records every value sent to it instead of transmitting.
type MockTransport struct {
	mu     sync.Mutex
	Sent   []any
	Closed bool
}

// Send stores the data for later inspection.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, data)
	return nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Last returns the most recent value sent, or nil.
func (m *MockTransport) Last() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return m.Sent[len(m.Sent)-1]
}

// Count returns the number of values sent.
func (m *MockTransport) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// SineWave returns size samples of a sine at frequency Hz with the given
// peak amplitude and phase (radians).
func SineWave(size int, sampleRate, frequency, amplitude, phase float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = amplitude * math.Sin(2*math.Pi*frequency*t+phase)
	}
	return buffer
}

// HarmonicWave returns a plucked-string like tone: the fundamental plus
// the 2nd and 3rd harmonics at decreasing amplitude.
func HarmonicWave(size int, sampleRate, fundamental float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*fundamental*t)*0.5 +
			math.Sin(2*math.Pi*2*fundamental*t)*0.3 +
			math.Sin(2*math.Pi*3*fundamental*t)*0.2
	}
	return buffer
}

// ToInt16 scales samples in [-1, 1] to 16-bit PCM, clipping out-of-range values.
func ToInt16(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = int16(clip(s) * math.MaxInt16)
	}
	return out
}

// ToInt32 scales samples in [-1, 1] to 32-bit PCM, clipping out-of-range values.
func ToInt32(samples []float64) []int32 {
	out := make([]int32, len(samples))
	for i, s := range samples {
		out[i] = int32(clip(s) * math.MaxInt32)
	}
	return out
}

// ToInts scales samples to integer PCM of bitDepth bits, the layout used by
// go-audio IntBuffers.
func ToInts(samples []float64, bitDepth int) []int {
	full := float64(int64(1)<<(bitDepth-1) - 1)
	out := make([]int, len(samples))
	for i, s := range samples {
		out[i] = int(clip(s) * full)
	}
	return out
}

func clip(s float64) float64 {
	return math.Max(-1, math.Min(1, s))
}
