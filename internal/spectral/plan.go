// SPDX-License-Identifier: MIT

// Package spectral turns fixed-length real sample blocks into their
// discrete Fourier transform.
//
// Plan is an in-place radix-2 decimation-in-time transform: the input is
// permuted into bit-reversed order, then log2(N) butterfly stages combine
// pairs of half-size transforms with the twiddle factors exp(-2πik/N):
//
//	X[k]       = E[k] + W^k·O[k]
//	X[k + N/2] = E[k] - W^k·O[k]
//
// Twiddles and the permutation are computed once per plan, so repeated
// transforms of the same size do not allocate.
package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"tuner/pkg/bitint"
)

var (
	// ErrNotPowerOfTwo is returned for radix-2 plans of any other length.
	ErrNotPowerOfTwo = errors.New("transform length must be a power of 2")

	// ErrLength is returned when a sequence does not match the plan length.
	ErrLength = errors.New("sequence length does not match transform length")
)

// Transform is a real-input DFT of fixed length returning the
// non-redundant half spectrum (Len()/2 + 1 coefficients).
type Transform interface {
	Len() int
	Coefficients(dst []complex128, src []float64) ([]complex128, error)
}

// Plan holds the pre-computed tables for an N-point radix-2 transform and
// a scratch buffer used by Coefficients. A Plan is not safe for concurrent
// use; callers serialise access or keep one plan per goroutine.
type Plan struct {
	n        int
	stages   int
	reversed []int        // bit-reversed index for each position
	twiddle  []complex128 // exp(-2πik/N), k in [0, N/2)
	scratch  []complex128 // full spectrum for Coefficients
}

var _ Transform = (*Plan)(nil)

// NewPlan prepares an N-point transform. n must be a power of 2.
func NewPlan(n int) (*Plan, error) {
	if !bitint.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w, got %d", ErrNotPowerOfTwo, n)
	}

	stages := bitint.Log2(n)
	reversed := make([]int, n)
	for i := range n {
		reversed[i] = bitint.ReverseBits(i, stages)
	}

	twiddle := make([]complex128, n/2)
	for k := range twiddle {
		twiddle[k] = cmplx.Rect(1, -2*math.Pi*float64(k)/float64(n))
	}

	return &Plan{
		n:        n,
		stages:   stages,
		reversed: reversed,
		twiddle:  twiddle,
		scratch:  make([]complex128, n),
	}, nil
}

// Len returns the transform length N.
func (p *Plan) Len() int {
	return p.n
}

// Transform computes the full N-point DFT of src into dst and returns it.
// dst is reused when it has capacity N, otherwise a new slice is allocated.
func (p *Plan) Transform(dst []complex128, src []float64) ([]complex128, error) {
	if len(src) != p.n {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrLength, len(src), p.n)
	}
	if cap(dst) < p.n {
		dst = make([]complex128, p.n)
	}
	dst = dst[:p.n]

	for i, j := range p.reversed {
		dst[j] = complex(src[i], 0)
	}
	p.butterflies(dst)
	return dst, nil
}

// Coefficients computes the DFT of src and returns the first N/2+1
// coefficients (DC through Nyquist) in dst. The remaining coefficients are
// the complex conjugates of these for real input.
func (p *Plan) Coefficients(dst []complex128, src []float64) ([]complex128, error) {
	full, err := p.Transform(p.scratch, src)
	if err != nil {
		return nil, err
	}

	half := p.n/2 + 1
	if cap(dst) < half {
		dst = make([]complex128, half)
	}
	dst = dst[:half]
	copy(dst, full[:half])
	return dst, nil
}

// butterflies runs the log2(N) combine stages over a bit-reversed buffer.
// At stage s the buffer holds N/size independent transforms of length
// size/2; each pair is merged with stride N/size into the twiddle table.
func (p *Plan) butterflies(x []complex128) {
	for size := 2; size <= p.n; size <<= 1 {
		half := size >> 1
		stride := p.n / size
		for start := 0; start < p.n; start += size {
			for k := range half {
				even := x[start+k]
				odd := p.twiddle[k*stride] * x[start+k+half]
				x[start+k] = even + odd
				x[start+k+half] = even - odd
			}
		}
	}
}

// DFT returns the N complex coefficients of samples. len(samples) must be a
// power of 2; a length of 1 is its own transform.
func DFT(samples []float64) ([]complex128, error) {
	plan, err := NewPlan(len(samples))
	if err != nil {
		return nil, err
	}
	return plan.Transform(nil, samples)
}

// Magnitudes writes the complex modulus of each coefficient into dst,
// growing it if needed, and returns it.
func Magnitudes(dst []float64, coeffs []complex128) []float64 {
	if cap(dst) < len(coeffs) {
		dst = make([]float64, len(coeffs))
	}
	dst = dst[:len(coeffs)]
	for i, c := range coeffs {
		dst[i] = cmplx.Abs(c)
	}
	return dst
}
