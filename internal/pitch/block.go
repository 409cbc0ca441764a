// SPDX-License-Identifier: MIT
package pitch

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptyBlock is returned for blocks without samples.
	ErrEmptyBlock = errors.New("audio block has no samples")

	// ErrSampleRate is returned for non-positive sample rates.
	ErrSampleRate = errors.New("sample rate must be positive")

	// ErrBitDepth is returned when integer samples have an unsupported depth.
	ErrBitDepth = errors.New("unsupported bit depth")
)

// AudioBlock is a fixed-length run of mono samples at a known rate. The
// estimator only reads it; callers hand over a snapshot that must not
// change during the call.
type AudioBlock struct {
	Samples    []float64
	SampleRate int
}

// NewBlock validates samples and rate and wraps them without copying.
func NewBlock(samples []float64, sampleRate int) (AudioBlock, error) {
	b := AudioBlock{Samples: samples, SampleRate: sampleRate}
	if err := b.Validate(); err != nil {
		return AudioBlock{}, err
	}
	return b, nil
}

// Validate checks the block invariants: at least one sample, positive rate.
func (b AudioBlock) Validate() error {
	if len(b.Samples) == 0 {
		return ErrEmptyBlock
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w, got %d", ErrSampleRate, b.SampleRate)
	}
	return nil
}

// Len returns the number of samples.
func (b AudioBlock) Len() int {
	return len(b.Samples)
}

// Duration returns the block length in seconds.
func (b AudioBlock) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Peak returns the largest absolute sample value.
func (b AudioBlock) Peak() float64 {
	var peak float64
	for _, s := range b.Samples {
		peak = math.Max(peak, math.Abs(s))
	}
	return peak
}

// FromInt16 converts 16-bit PCM to a block normalised to [-1, 1).
func FromInt16(samples []int16, sampleRate int) (AudioBlock, error) {
	const norm = 1.0 / float64(1<<15)
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) * norm
	}
	return NewBlock(out, sampleRate)
}

// FromInt32 converts 32-bit PCM to a block normalised to [-1, 1).
func FromInt32(samples []int32, sampleRate int) (AudioBlock, error) {
	const norm = 1.0 / float64(0x80000000)
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) * norm
	}
	return NewBlock(out, sampleRate)
}

// FromInts converts integer PCM of the given bit depth (8, 16, 24 or 32),
// as produced by WAV decoders, to a normalised block.
func FromInts(samples []int, bitDepth, sampleRate int) (AudioBlock, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return AudioBlock{}, fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}
	norm := 1.0 / float64(int64(1)<<(bitDepth-1))
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) * norm
	}
	return NewBlock(out, sampleRate)
}
