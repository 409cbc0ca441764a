// SPDX-License-Identifier: MIT
package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"testing"
)

// naiveDFT is the O(N²) definition used as ground truth.
func naiveDFT(x []float64) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	for k := range n {
		var sum complex128
		for t := range n {
			sum += complex(x[t], 0) * cmplx.Rect(1, -2*math.Pi*float64(k*t)/float64(n))
		}
		out[k] = sum
	}
	return out
}

// testSignal is deterministic, non-periodic in the block and has a DC offset.
func testSignal(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		tm := float64(i)
		x[i] = 0.25 + math.Sin(0.37*tm) + 0.5*math.Cos(1.9*tm+0.3) + 0.1*float64(i%7)
	}
	return x
}

func assertClose(t *testing.T, got, want []complex128, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	scale := 1.0
	for _, w := range want {
		scale = math.Max(scale, cmplx.Abs(w))
	}
	for i := range want {
		if d := cmplx.Abs(got[i] - want[i]); d > tol*scale {
			t.Fatalf("coefficient %d = %v, want %v (diff %g)", i, got[i], want[i], d)
		}
	}
}

func TestNewPlanRejectsNonPowerOfTwo(t *testing.T) {
	for _, n := range []int{-4, 0, 3, 6, 1000} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			if _, err := NewPlan(n); !errors.Is(err, ErrNotPowerOfTwo) {
				t.Errorf("NewPlan(%d) error = %v, want ErrNotPowerOfTwo", n, err)
			}
		})
	}
}

func TestTransformMatchesNaiveDFT(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 16, 64, 256, 1024} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			x := testSignal(n)
			got, err := DFT(x)
			if err != nil {
				t.Fatalf("DFT: %v", err)
			}
			assertClose(t, got, naiveDFT(x), 1e-9)
		})
	}
}

func TestTransformSmallCases(t *testing.T) {
	got, err := DFT([]float64{3})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 3 {
		t.Errorf("length-1 transform = %v, want [3]", got)
	}

	got, err = DFT([]float64{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	assertClose(t, got, []complex128{3, -1}, 1e-12)

	// An impulse has a flat spectrum.
	got, err = DFT([]float64{1, 0, 0, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	for k, c := range got {
		if cmplx.Abs(c-1) > 1e-12 {
			t.Errorf("impulse bin %d = %v, want 1", k, c)
		}
	}
}

func TestTransformConjugateSymmetry(t *testing.T) {
	const n = 128
	got, err := DFT(testSignal(n))
	if err != nil {
		t.Fatal(err)
	}
	for k := 1; k < n/2; k++ {
		if d := cmplx.Abs(got[k] - cmplx.Conj(got[n-k])); d > 1e-9 {
			t.Errorf("X[%d] != conj(X[%d]) (diff %g)", k, n-k, d)
		}
	}
	if math.Abs(imag(got[0])) > 1e-12 || math.Abs(imag(got[n/2])) > 1e-9 {
		t.Errorf("DC and Nyquist must be real, got %v and %v", got[0], got[n/2])
	}
}

func TestTransformSineBin(t *testing.T) {
	const n, bin = 64, 5
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * bin * float64(i) / n)
	}
	got, err := DFT(x)
	if err != nil {
		t.Fatal(err)
	}
	mags := Magnitudes(nil, got)
	for k, m := range mags {
		want := 0.0
		if k == bin || k == n-bin {
			want = n / 2
		}
		if math.Abs(m-want) > 1e-9 {
			t.Errorf("|X[%d]| = %g, want %g", k, m, want)
		}
	}
}

func TestTransformLengthMismatch(t *testing.T) {
	plan, err := NewPlan(8)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := plan.Transform(nil, make([]float64, 7)); !errors.Is(err, ErrLength) {
		t.Errorf("Transform error = %v, want ErrLength", err)
	}
	if _, err := plan.Coefficients(nil, make([]float64, 9)); !errors.Is(err, ErrLength) {
		t.Errorf("Coefficients error = %v, want ErrLength", err)
	}
}

func TestTransformDoesNotModifyInput(t *testing.T) {
	x := testSignal(32)
	orig := append([]float64(nil), x...)
	if _, err := DFT(x); err != nil {
		t.Fatal(err)
	}
	for i := range x {
		if x[i] != orig[i] {
			t.Fatalf("input modified at %d", i)
		}
	}
}

func TestCoefficientsHalfSpectrum(t *testing.T) {
	const n = 256
	x := testSignal(n)
	plan, err := NewPlan(n)
	if err != nil {
		t.Fatal(err)
	}
	half, err := plan.Coefficients(nil, x)
	if err != nil {
		t.Fatal(err)
	}
	if len(half) != n/2+1 {
		t.Fatalf("half spectrum length = %d, want %d", len(half), n/2+1)
	}
	assertClose(t, half, naiveDFT(x)[:n/2+1], 1e-9)
}

func TestTransformHotPath(t *testing.T) {
	const n = 1024
	plan, err := NewPlan(n)
	if err != nil {
		t.Fatal(err)
	}
	x := testSignal(n)
	dst := make([]complex128, n)
	half := make([]complex128, n/2+1)
	mags := make([]float64, n/2+1)

	allocs := testing.AllocsPerRun(100, func() {
		_, _ = plan.Transform(dst, x)
		half, _ = plan.Coefficients(half, x)
		mags = Magnitudes(mags, half)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in transform hot path, got %.1f", allocs)
	}
}

func BenchmarkPlanTransform(b *testing.B) {
	for _, n := range []int{256, 1024, 4096} {
		b.Run(fmt.Sprint(n), func(b *testing.B) {
			plan, _ := NewPlan(n)
			x := testSignal(n)
			dst := make([]complex128, n)
			b.ReportAllocs()
			for b.Loop() {
				_, _ = plan.Transform(dst, x)
			}
		})
	}
}
