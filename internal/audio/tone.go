// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"tuner/internal/log"
)

// toneRamp is the fade in applied to reference tones to avoid a click.
const toneRamp = 20 * time.Millisecond

// Tone is an endless sine streamer at a fixed frequency and volume.
type Tone struct {
	sr     beep.SampleRate
	freq   float64
	volume float64
	ramp   int
	pos    int
}

// NewTone returns a sine streamer. Volume is clamped to [0, 1].
func NewTone(freq float64, sr beep.SampleRate, volume float64) (*Tone, error) {
	if !(freq > 0) || math.IsInf(freq, 0) {
		return nil, fmt.Errorf("invalid tone frequency: %v", freq)
	}
	if sr <= 0 {
		return nil, fmt.Errorf("invalid tone sample rate: %d", sr)
	}
	if freq >= float64(sr)/2 {
		return nil, fmt.Errorf("tone frequency %.2f Hz is above the Nyquist limit of %d Hz", freq, sr/2)
	}
	return &Tone{
		sr:     sr,
		freq:   freq,
		volume: math.Max(0, math.Min(1, volume)),
		ramp:   sr.N(toneRamp),
	}, nil
}

// Frequency returns the tone frequency in Hz.
func (t *Tone) Frequency() float64 {
	return t.freq
}

func (t *Tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		phase := 2 * math.Pi * t.freq * float64(t.pos) / float64(t.sr)
		envelope := 1.0
		if t.pos < t.ramp {
			envelope = float64(t.pos) / float64(t.ramp)
		}

		sample := t.volume * envelope * math.Sin(phase)
		samples[i][0] = sample
		samples[i][1] = sample
		t.pos++
	}
	return len(samples), true
}

func (t *Tone) Err() error {
	return nil
}

// PlayTone plays freq through the default output for d, or until ctx is
// cancelled.
func PlayTone(ctx context.Context, freq float64, sr beep.SampleRate, d time.Duration, volume float64) error {
	tone, err := NewTone(freq, sr, volume)
	if err != nil {
		return err
	}

	// Initialize speaker with sample rate and buffer size
	if err := speaker.Init(sr, sr.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	defer speaker.Close()

	done := make(chan struct{})
	speaker.Play(beep.Seq(beep.Take(sr.N(d), tone), beep.Callback(func() {
		close(done)
	})))
	log.Debugf("audio: playing %.2f Hz for %s", freq, d)

	select {
	case <-done:
	case <-ctx.Done():
		speaker.Clear()
	}
	return nil
}
