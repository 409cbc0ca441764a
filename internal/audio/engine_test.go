// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"tuner/internal/note"
	"tuner/internal/tuner"
	"tuner/pkg/utils"
)

// TestBranchlessAbsPerformance verifies the branchless absolute value calculation has no allocations
func TestBranchlessAbsPerformance(t *testing.T) {
	samples := make([]int32, 1024)
	for i := range samples {
		// Mix of positive and negative values
		if i%2 == 0 {
			samples[i] = int32(i * 1000)
		} else {
			samples[i] = int32(-i * 1000)
		}
	}

	allocs := testing.AllocsPerRun(100, func() {
		for i, sample := range samples {
			mask := sample >> 31
			samples[i] = (sample ^ mask) - mask
		}
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in branchless abs, got %.1f", allocs)
	}
	for i, s := range samples {
		if s < 0 {
			t.Fatalf("samples[%d] = %d, want non-negative", i, s)
		}
	}
}

func TestBufferWriteSnapshot(t *testing.T) {
	b := NewBuffer(4)
	b.Write([]int32{1 << 30, -1 << 30, 1 << 29, -1 << 31}, 1)

	dst := make([]float64, b.Len())
	peak, seq := b.Snapshot(dst)
	if seq != 1 {
		t.Errorf("seq = %d, want 1", seq)
	}
	want := []float64{0.5, -0.5, 0.25, -1}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
	// A full-scale negative sample saturates instead of wrapping.
	if peak != math.MaxInt32 {
		t.Errorf("peak = %d, want %d", peak, math.MaxInt32)
	}

	// Snapshots are copies.
	dst[0] = 9
	b.Snapshot(dst)
	if dst[0] != 0.5 {
		t.Error("Snapshot should copy the buffered samples")
	}
}

func TestBufferKeepsChannelZero(t *testing.T) {
	b := NewBuffer(3)
	b.Write([]int32{100, 7, 200, 7, 300}, 2) // last frame incomplete

	dst := make([]float64, 3)
	peak, _ := b.Snapshot(dst)
	if peak != 200 {
		t.Errorf("peak = %d, want 200 (channel 0 only)", peak)
	}
	if dst[0] != 100*fullScale || dst[1] != 200*fullScale || dst[2] != 0 {
		t.Errorf("dst = %v, want channel 0 with zero fill", dst)
	}
}

func TestBufferReadyCoalesces(t *testing.T) {
	b := NewBuffer(2)
	b.Write([]int32{1, 2}, 1)
	b.Write([]int32{3, 4}, 1)

	select {
	case <-b.Ready():
	default:
		t.Fatal("Ready should be signalled after Write")
	}
	select {
	case <-b.Ready():
		t.Fatal("Ready should coalesce writes")
	default:
	}

	_, seq := b.Snapshot(make([]float64, 2))
	if seq != 2 {
		t.Errorf("seq = %d, want 2", seq)
	}
}

func TestBufferWriteHotPath(t *testing.T) {
	b := NewBuffer(testFrameSize)
	allocs := testing.AllocsPerRun(100, func() {
		b.Write(testBuffer, 1)
		select {
		case <-b.Ready():
		default:
		}
	})
	if allocs > 0 {
		t.Errorf("Buffer.Write allocated: got %.1f allocs, want 0", allocs)
	}
}

func TestNewEngineBlockSizeMismatch(t *testing.T) {
	cfg := testConfig(1)
	session := newTestSession(t, cfg)
	cfg.Audio.BlockSize = 2048
	if _, err := newEngine(cfg, session); err == nil {
		t.Error("expected an error when the session and config block sizes differ")
	}
}

func TestEngineAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		buffer   []int32
		gate     bool
		label    string
	}{
		{"Mono A4", 1, testBuffer, true, "A4"},
		{"Stereo A4", 2, testBuffer, true, "A4"},
		{"Quiet signal gated", 1, quietBuffer, true, note.NoSignalLabel},
		{"Quiet signal ungated", 1, quietBuffer, false, "A4"},
		{"Silence ungated", 1, make([]int32, testFrameSize), false, note.NoSignalLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, tt.channels)
			if !tt.gate {
				engine.gate = NewGate(false, 0)
			}

			engine.processInputStream(interleave(tt.buffer, tt.channels))
			peak, _ := engine.buffer.Snapshot(engine.analysis)
			r := engine.analyze(engine.analysis, peak)

			if r.Result.Label != tt.label {
				t.Errorf("analyze() = %s, want %s", r.Result, tt.label)
			}
			if r.Time.IsZero() {
				t.Error("reading has no timestamp")
			}
		})
	}
}

type recordingSink struct {
	mu       sync.Mutex
	readings []tuner.Reading
	notify   chan struct{}
}

func (s *recordingSink) Send(data any) error {
	s.mu.Lock()
	s.readings = append(s.readings, data.(tuner.Reading))
	s.mu.Unlock()
	s.notify <- struct{}{}
	return nil
}

func TestEngineRunDispatches(t *testing.T) {
	sink := &recordingSink{notify: make(chan struct{}, 4)}
	var failures int
	failing := SinkFunc(func(any) error {
		failures++
		return errors.New("closed")
	})
	engine := newTestEngine(t, 1, failing, sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	engine.processInputStream(utils.ToInt32(utils.SineWave(testFrameSize, testSampleRate, 220, 0.5, 0)))

	select {
	case <-sink.notify:
	case <-time.After(5 * time.Second):
		t.Fatal("no reading dispatched")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() = %v, want nil on cancellation", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.readings) != 1 || sink.readings[0].Result.Label != "A3" {
		t.Errorf("readings = %+v, want one A3 reading", sink.readings)
	}
	if failures != 1 {
		t.Errorf("failing sink called %d times, want 1", failures)
	}
}

// TestNoiseGateHotPath checks the peak fold and gate decision do not allocate.
func TestNoiseGateHotPath(t *testing.T) {
	buffer := make([]int32, 1024)
	for i := range buffer {
		buffer[i] = int32((i % 100) * 10000000)
	}

	gate := NewGate(true, 0.25)

	allocs := testing.AllocsPerRun(100, func() {
		var peak int32
		for _, sample := range buffer {
			peak = maxAmplitude(peak, sample)
		}
		_ = gate.Passes(peak)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in noise gate hot path, got %.1f", allocs)
	}
}

// BenchmarkHotPath benchmarks the capture callback plus one analysis.
func BenchmarkHotPath(b *testing.B) {
	engine := newTestEngine(b, 1)

	b.ReportAllocs()
	for b.Loop() {
		engine.processInputStream(testBuffer)
		peak, _ := engine.buffer.Snapshot(engine.analysis)
		_ = engine.analyze(engine.analysis, peak)
	}
}
