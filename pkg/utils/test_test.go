// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"testing"
)

func TestMockTransport(t *testing.T) {
	mt := &MockTransport{}
	if mt.Last() != nil || mt.Count() != 0 {
		t.Fatalf("new MockTransport not empty")
	}

	for i := range 3 {
		if err := mt.Send(i); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}
	if mt.Count() != 3 || mt.Last() != 2 {
		t.Errorf("Count() = %d, Last() = %v; want 3, 2", mt.Count(), mt.Last())
	}

	if err := mt.Close(); err != nil || !mt.Closed {
		t.Errorf("Close() = %v, Closed = %v", err, mt.Closed)
	}
}

func TestSineWave(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		sampleRate float64
		frequency  float64
	}{
		{"A4 Note", 1024, 44100, 440.0},
		{"Middle C", 1024, 44100, 261.63},
		{"High Sample Rate", 1024, 192000, 440.0},
		{"Low Sample Rate", 1024, 8000, 440.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SineWave(tt.size, tt.sampleRate, tt.frequency, 0.9, 0)
			if len(result) != tt.size {
				t.Fatalf("SineWave() size = %d, want %d", len(result), tt.size)
			}

			// Two zero crossings per cycle.
			samplesPerCycle := tt.sampleRate / tt.frequency
			crossCount := 0
			for i := 1; i < tt.size; i++ {
				if (result[i-1] < 0) != (result[i] < 0) {
					crossCount++
				}
			}
			expected := float64(tt.size) / (samplesPerCycle / 2)
			if math.Abs(float64(crossCount)-expected) > 0.2*expected {
				t.Errorf("zero crossings = %d, expected about %.1f", crossCount, expected)
			}

			for _, v := range result {
				if math.Abs(v) > 0.9+1e-12 {
					t.Fatalf("sample %v exceeds amplitude", v)
				}
			}
		})
	}
}

func TestHarmonicWave(t *testing.T) {
	result := HarmonicWave(512, 44100, 110)
	hasNonZero := false
	for _, v := range result {
		if v != 0 {
			hasNonZero = true
		}
		if math.Abs(v) > 1 {
			t.Fatalf("sample %v out of range", v)
		}
	}
	if !hasNonZero {
		t.Error("HarmonicWave() produced all zeros")
	}
}

func TestPCMConversions(t *testing.T) {
	in := []float64{0, 1, -1, 0.5, 2, -2}

	i16 := ToInt16(in)
	want16 := []int16{0, math.MaxInt16, -math.MaxInt16, math.MaxInt16 / 2, math.MaxInt16, -math.MaxInt16}
	for i := range want16 {
		if i16[i] != want16[i] {
			t.Errorf("ToInt16[%d] = %d, want %d", i, i16[i], want16[i])
		}
	}

	i32 := ToInt32(in)
	if i32[1] != math.MaxInt32 || i32[4] != math.MaxInt32 || i32[0] != 0 {
		t.Errorf("ToInt32 = %v", i32)
	}

	ints := ToInts(in, 24)
	if ints[1] != 1<<23-1 || ints[2] != -(1<<23-1) {
		t.Errorf("ToInts(24) = %v", ints)
	}
}
