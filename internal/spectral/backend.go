// SPDX-License-Identifier: MIT
package spectral

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Backend selects the transform implementation used for analysis.
type Backend int

const (
	// Radix2 is the in-house iterative radix-2 transform (power-of-2 lengths).
	Radix2 Backend = iota
	// Gonum is gonum's real-input FFT, which accepts any positive length.
	Gonum
)

// String returns the configuration name of the backend.
func (b Backend) String() string {
	switch b {
	case Radix2:
		return "radix2"
	case Gonum:
		return "gonum"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend converts a configuration name (case-insensitive) to a
// Backend. Unknown names return Radix2 and an error.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "radix2", "radix-2":
		return Radix2, nil
	case "gonum", "fourier":
		return Gonum, nil
	default:
		return Radix2, fmt.Errorf("unknown transform backend: '%s'", name)
	}
}

// New returns an n-point transform for the backend.
func New(b Backend, n int) (Transform, error) {
	switch b {
	case Radix2:
		return NewPlan(n)
	case Gonum:
		return NewGonumFFT(n)
	default:
		return nil, fmt.Errorf("unknown transform backend %d", int(b))
	}
}

// GonumFFT adapts gonum's real FFT to the Transform interface. Like Plan
// it keeps internal work buffers and is not safe for concurrent use.
type GonumFFT struct {
	n   int
	fft *fourier.FFT
}

var _ Transform = (*GonumFFT)(nil)

// NewGonumFFT prepares an n-point real FFT. n must be positive.
func NewGonumFFT(n int) (*GonumFFT, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrLength, n)
	}
	return &GonumFFT{n: n, fft: fourier.NewFFT(n)}, nil
}

// Len returns the transform length N.
func (g *GonumFFT) Len() int {
	return g.n
}

// Coefficients returns the N/2+1 non-redundant coefficients of src.
func (g *GonumFFT) Coefficients(dst []complex128, src []float64) ([]complex128, error) {
	if len(src) != g.n {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrLength, len(src), g.n)
	}
	half := g.n/2 + 1
	if cap(dst) < half {
		dst = make([]complex128, half)
	}
	return g.fft.Coefficients(dst[:half], src), nil
}
