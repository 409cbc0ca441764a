// SPDX-License-Identifier: MIT
package pitch

import (
	"errors"
	"math"
	"testing"

	"tuner/pkg/utils"
)

func TestNewBlock(t *testing.T) {
	if _, err := NewBlock(nil, 44100); !errors.Is(err, ErrEmptyBlock) {
		t.Errorf("NewBlock(nil) error = %v", err)
	}
	if _, err := NewBlock([]float64{1}, 0); !errors.Is(err, ErrSampleRate) {
		t.Errorf("NewBlock(rate 0) error = %v", err)
	}
	if _, err := NewBlock([]float64{1}, -8000); !errors.Is(err, ErrSampleRate) {
		t.Errorf("NewBlock(rate -8000) error = %v", err)
	}

	b, err := NewBlock([]float64{0.1, -0.5, 0.25, 0}, 8)
	if err != nil {
		t.Fatal(err)
	}
	if b.Len() != 4 || b.Duration() != 0.5 || b.Peak() != 0.5 {
		t.Errorf("Len/Duration/Peak = %d, %v, %v", b.Len(), b.Duration(), b.Peak())
	}
}

func TestIntegerConversions(t *testing.T) {
	src := utils.SineWave(64, 8000, 440, 0.9, 0)

	b16, err := FromInt16(utils.ToInt16(src), 8000)
	if err != nil {
		t.Fatal(err)
	}
	b32, err := FromInt32(utils.ToInt32(src), 8000)
	if err != nil {
		t.Fatal(err)
	}
	b24, err := FromInts(utils.ToInts(src, 24), 24, 8000)
	if err != nil {
		t.Fatal(err)
	}

	for i, want := range src {
		if math.Abs(b16.Samples[i]-want) > 1e-4 {
			t.Fatalf("FromInt16[%d] = %v, want %v", i, b16.Samples[i], want)
		}
		if math.Abs(b32.Samples[i]-want) > 1e-8 {
			t.Fatalf("FromInt32[%d] = %v, want %v", i, b32.Samples[i], want)
		}
		if math.Abs(b24.Samples[i]-want) > 1e-6 {
			t.Fatalf("FromInts(24)[%d] = %v, want %v", i, b24.Samples[i], want)
		}
	}

	if _, err := FromInts([]int{1}, 12, 8000); !errors.Is(err, ErrBitDepth) {
		t.Errorf("FromInts(12 bit) error = %v", err)
	}
	if _, err := FromInt16(nil, 8000); !errors.Is(err, ErrEmptyBlock) {
		t.Errorf("FromInt16(nil) error = %v", err)
	}
}
