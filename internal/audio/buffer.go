// SPDX-License-Identifier: MIT
package audio

import "sync"

// fullScale normalises 32-bit PCM to [-1, 1).
const fullScale = 1.0 / float64(0x80000000)

// Buffer holds the most recent block of captured audio. The capture
// callback writes whole blocks; the analysis loop copies them out with
// Snapshot, so the analysed samples never change mid-estimate.
type Buffer struct {
	mu      sync.Mutex
	samples []float64 // channel 0, normalised
	peak    int32     // absolute peak of samples as 32-bit PCM
	seq     uint64    // blocks written so far
	ready   chan struct{}
}

// NewBuffer returns a buffer for blocks of size frames.
func NewBuffer(size int) *Buffer {
	return &Buffer{
		samples: make([]float64, size),
		ready:   make(chan struct{}, 1),
	}
}

// Len returns the block size in frames.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Write stores channel 0 of interleaved 32-bit frames. Missing frames are
// zero filled. It does not allocate and never blocks on readers.
func (b *Buffer) Write(in []int32, channels int) {
	if channels < 1 {
		channels = 1
	}

	b.mu.Lock()
	var peak int32
	for i := range b.samples {
		var sample int32
		if j := i * channels; j < len(in) {
			sample = in[j]
		}
		b.samples[i] = float64(sample) * fullScale

		peak = maxAmplitude(peak, sample)
	}
	b.peak = peak
	b.seq++
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// Ready is signalled after each Write. Writes that arrive before the
// previous signal was taken are coalesced.
func (b *Buffer) Ready() <-chan struct{} {
	return b.ready
}

// Snapshot copies the latest block into dst, which must hold Len samples,
// and returns its peak and sequence number.
func (b *Buffer) Snapshot(dst []float64) (peak int32, seq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(dst, b.samples)
	return b.peak, b.seq
}
