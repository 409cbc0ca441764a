// SPDX-License-Identifier: MIT
package audio

import "math"

// Gate is a peak-amplitude noise gate. A block whose channel 0 peak does
// not exceed the threshold is reported as no signal without running the
// estimator.
type Gate struct {
	enabled   bool
	threshold int32 // absolute amplitude, 0..math.MaxInt32
}

// NewGate returns a gate for a threshold in [0, 1] of full scale. Values
// outside the range are clamped.
func NewGate(enabled bool, threshold float64) Gate {
	g := Gate{enabled: enabled}
	g.SetThreshold(threshold)
	return g
}

// Enabled reports whether the gate holds quiet blocks back.
func (g Gate) Enabled() bool {
	return g.enabled
}

// SetThreshold sets the threshold as a fraction of full scale, where 0
// lets everything but digital silence through and 1 holds every block.
func (g *Gate) SetThreshold(threshold float64) {
	if threshold < 0.0 || math.IsNaN(threshold) {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}
	g.threshold = int32(threshold * float64(math.MaxInt32))
}

// Threshold returns the threshold as a fraction of full scale.
func (g Gate) Threshold() float64 {
	return float64(g.threshold) / float64(math.MaxInt32)
}

// Passes reports whether a block with the given absolute peak is analysed.
func (g Gate) Passes(peak int32) bool {
	return !g.enabled || peak > g.threshold
}

// maxAmplitude folds sample into the running absolute peak without
// branching.
func maxAmplitude(peak, sample int32) int32 {
	mask := sample >> 31
	amplitude := (sample ^ mask) - mask
	amplitude ^= amplitude >> 31 // math.MinInt32 wraps; saturate it

	diff := amplitude - peak
	return peak + ((diff & (diff >> 31)) ^ diff)
}
