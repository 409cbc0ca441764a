// SPDX-License-Identifier: MIT
package tuner

import (
	"errors"
	"math"
	"testing"
	"time"

	"tuner/internal/note"
	"tuner/internal/pitch"
	"tuner/internal/spectral"
	"tuner/pkg/utils"
)

// A 4096-sample block at 4096 Hz has 1 Hz bins, so integer test pitches
// land exactly on a bin.
const (
	testSize = 4096
	testRate = 4096
)

func newTestSession(t *testing.T, ref float64) *Session {
	t.Helper()
	opts := DefaultOptions()
	opts.BlockSize = testSize
	opts.Reference = ref
	s, err := NewSession(opts)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s
}

func toneBlock(t *testing.T, freq float64) pitch.AudioBlock {
	t.Helper()
	block, err := pitch.NewBlock(utils.SineWave(testSize, testRate, freq, 0.8, 0), testRate)
	if err != nil {
		t.Fatal(err)
	}
	return block
}

func TestAnalyze(t *testing.T) {
	s := newTestSession(t, 440)

	tests := []struct {
		freq   float64
		label  string
		cents  int
		signal bool
	}{
		{440, "A4", 0, true},
		{220, "A3", 0, true},
		{0, note.NoSignalLabel, 0, false},
		{453, "A#4", -50, true},
		{82, "E2", -9, true},
		{30, note.NoSignalLabel, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := s.Analyze(toneBlock(t, tt.freq))
			if err != nil {
				t.Fatalf("Analyze(%v Hz) error = %v", tt.freq, err)
			}
			if got.Signal != tt.signal || got.Label != tt.label || got.Cents != tt.cents {
				t.Errorf("Analyze(%v Hz) = %+v, want %s %+d", tt.freq, got, tt.label, tt.cents)
			}
		})
	}
}

func TestAnalyzeUsesReference(t *testing.T) {
	s := newTestSession(t, 432)
	if got := s.Reference().Hz(); got != 432 {
		t.Fatalf("Reference() = %v, want 432", got)
	}

	got, err := s.Analyze(toneBlock(t, 432))
	if err != nil {
		t.Fatal(err)
	}
	if got.Label != "A4" || got.Cents != 0 {
		t.Errorf("Analyze(432 Hz) = %s, want A4 +0 cents", got)
	}

	got, err = s.Analyze(toneBlock(t, 440))
	if err != nil {
		t.Fatal(err)
	}
	if got.Label != "A4" || got.Cents != 32 {
		t.Errorf("Analyze(440 Hz) at A4=432 = %s, want A4 +32 cents", got)
	}
}

func TestRead(t *testing.T) {
	s := newTestSession(t, 440)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return at }

	r, err := s.Read(toneBlock(t, 220))
	if err != nil {
		t.Fatal(err)
	}
	if !r.Time.Equal(at) {
		t.Errorf("Time = %v, want %v", r.Time, at)
	}
	if math.Abs(r.Estimate-220) > 1e-9 {
		t.Errorf("Estimate = %v, want 220", r.Estimate)
	}
	if r.Result.Label != "A3" || r.Result.Number != 57 {
		t.Errorf("Result = %+v, want A3 (57)", r.Result)
	}
}

func TestReadError(t *testing.T) {
	s := newTestSession(t, 440)

	short, err := pitch.NewBlock(make([]float64, 512), testRate)
	if err != nil {
		t.Fatal(err)
	}

	r, err := s.Read(short)
	if !errors.Is(err, pitch.ErrBlockSize) {
		t.Fatalf("Read() error = %v, want ErrBlockSize", err)
	}
	if r.Result.Signal || r.Result.Label != note.NoSignalLabel {
		t.Errorf("Read() on error = %+v, want no-signal result", r.Result)
	}

	if _, err := s.Analyze(pitch.AudioBlock{}); !errors.Is(err, pitch.ErrEmptyBlock) {
		t.Errorf("Analyze(empty) error = %v, want ErrEmptyBlock", err)
	}
}

func TestNewSessionErrors(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Options)
		want error
	}{
		{"zero reference", func(o *Options) { o.Reference = 0 }, note.ErrInvalidReference},
		{"NaN reference", func(o *Options) { o.Reference = math.NaN() }, note.ErrInvalidReference},
		{"short block", func(o *Options) { o.BlockSize = 3 }, pitch.ErrBlockTooShort},
		{"radix2 odd size", func(o *Options) { o.BlockSize = 1000 }, spectral.ErrNotPowerOfTwo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.edit(&opts)
			if _, err := NewSession(opts); !errors.Is(err, tt.want) {
				t.Errorf("NewSession() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGonumSessionAcceptsAnySize(t *testing.T) {
	opts := DefaultOptions()
	opts.BlockSize = 1000
	opts.Backend = spectral.Gonum
	s, err := NewSession(opts)
	if err != nil {
		t.Fatal(err)
	}
	if s.BlockSize() != 1000 {
		t.Fatalf("BlockSize() = %d, want 1000", s.BlockSize())
	}

	// 1000 samples at 1000 Hz gives 1 Hz bins.
	block, err := pitch.NewBlock(utils.SineWave(1000, 1000, 220, 0.5, 0), 1000)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Analyze(block)
	if err != nil {
		t.Fatal(err)
	}
	if got.Label != "A3" || got.Cents != 0 {
		t.Errorf("Analyze(220 Hz) = %s, want A3 +0 cents", got)
	}
}

func TestSilentReading(t *testing.T) {
	at := time.Unix(1700000000, 0)
	r := SilentReading(at)
	if !r.Time.Equal(at) || r.Estimate != pitch.NoSignal || r.Result != note.NoSignalResult() {
		t.Errorf("SilentReading() = %+v", r)
	}
}
