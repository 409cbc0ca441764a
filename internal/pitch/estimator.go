// SPDX-License-Identifier: MIT

// Package pitch estimates the fundamental frequency of a single audio
// block from the peak of its windowed magnitude spectrum.
package pitch

import (
	"errors"
	"fmt"
	"sync"

	"tuner/internal/log"
	"tuner/internal/spectral"
)

const (
	// PeakSearchStartBin is the first bin considered by the peak search.
	// Bin 0 (DC offset) and bin 1 (the lowest non-zero frequency) are
	// treated as noise and skipped regardless of sample rate or size.
	PeakSearchStartBin = 2

	// MinFrequency is the plausibility floor in Hz. Estimates below it are
	// reported as NoSignal; it sits under the lowest commonly tuned pitch.
	MinFrequency = 50.0

	// NoSignal is the estimate returned when no pitch was detected.
	NoSignal = 0.0

	// MinBlockSize is the smallest block whose half spectrum (size/2 + 1
	// bins) still has a searchable bin after the excluded ones.
	MinBlockSize = 2 * PeakSearchStartBin
)

var (
	// ErrBlockTooShort is returned for sizes below MinBlockSize.
	ErrBlockTooShort = errors.New("audio block too short for peak search")

	// ErrBlockSize is returned when a block does not match the estimator size.
	ErrBlockSize = errors.New("audio block length does not match estimator size")
)

// Pre-allocated buffers for one estimate.
type workspace struct {
	input     []float64    // windowed samples
	coeffs    []complex128 // half spectrum
	magnitude []float64    // |coeffs|
	window    []float64    // window coefficients
}

// Estimator finds the dominant frequency of fixed-size blocks. Buffers are
// allocated once in NewEstimator; Estimate does not allocate and is safe
// for concurrent use.
type Estimator struct {
	size      int
	windowFn  WindowFunc
	backend   spectral.Backend
	transform spectral.Transform

	mu        sync.Mutex // guards workspace and transform scratch
	workspace workspace
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithWindow selects the window function (default Hann).
func WithWindow(w WindowFunc) Option {
	return func(e *Estimator) { e.windowFn = w }
}

// WithBackend selects the transform implementation (default Radix2).
func WithBackend(b spectral.Backend) Option {
	return func(e *Estimator) { e.backend = b }
}

// NewEstimator prepares an estimator for blocks of size samples. The radix-2
// backend requires a power-of-2 size; blocks are never padded.
func NewEstimator(size int, opts ...Option) (*Estimator, error) {
	if size < MinBlockSize {
		return nil, fmt.Errorf("%w: %d samples, need at least %d", ErrBlockTooShort, size, MinBlockSize)
	}

	e := &Estimator{size: size, windowFn: Hann, backend: spectral.Radix2}
	for _, opt := range opts {
		opt(e)
	}

	transform, err := spectral.New(e.backend, size)
	if err != nil {
		return nil, fmt.Errorf("pitch: %s transform: %w", e.backend, err)
	}
	e.transform = transform

	bins := size/2 + 1
	e.workspace = workspace{
		input:     make([]float64, size),
		coeffs:    make([]complex128, bins),
		magnitude: make([]float64, bins),
		window:    windowCoefficients(size, e.windowFn),
	}

	log.Debugf("pitch: estimator ready (size %d, window %s, transform %s)", size, e.windowFn, e.backend)
	return e, nil
}

// Size returns the block length the estimator accepts.
func (e *Estimator) Size() int {
	return e.size
}

// Estimate returns the frequency in Hz of the strongest spectral peak of
// block, or NoSignal when that frequency is below MinFrequency.
func (e *Estimator) Estimate(block AudioBlock) (float64, error) {
	if err := block.Validate(); err != nil {
		return NoSignal, err
	}
	if block.Len() != e.size {
		return NoSignal, fmt.Errorf("%w: got %d, want %d", ErrBlockSize, block.Len(), e.size)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ws := &e.workspace

	// --- 1. Window ---
	for i, s := range block.Samples {
		ws.input[i] = s * ws.window[i]
	}

	// --- 2. Transform and magnitude ---
	coeffs, err := e.transform.Coefficients(ws.coeffs, ws.input)
	if err != nil {
		return NoSignal, err
	}
	ws.magnitude = spectral.Magnitudes(ws.magnitude, coeffs)

	// --- 3. Peak search, skipping DC and the first bin ---
	peak := PeakBin(ws.magnitude, PeakSearchStartBin)
	if ws.magnitude[peak] == 0 {
		return NoSignal, nil // digital silence
	}

	// --- 4. Bin to Hz, then plausibility gate ---
	f := BinFrequency(peak, block.SampleRate, e.size)
	if f < MinFrequency {
		return NoSignal, nil
	}
	return f, nil
}

// PeakBin returns the index of the largest magnitude at or after start. The
// first maximum wins on ties. It returns start when the slice is too short.
func PeakBin(magnitudes []float64, start int) int {
	if start < 0 {
		start = 0
	}
	if start >= len(magnitudes) {
		return start
	}

	peakBin := start
	peakValue := magnitudes[start]
	for bin := start + 1; bin < len(magnitudes); bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}
	return peakBin
}

// BinFrequency converts a bin index of an n-point transform to Hz.
func BinFrequency(bin, sampleRate, n int) float64 {
	return float64(bin) * (float64(sampleRate) / float64(n))
}
