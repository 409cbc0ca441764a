// SPDX-License-Identifier: MIT
package config

import (
	"tuner/internal/pitch"
	"tuner/internal/spectral"
	"tuner/internal/tuner"
)

// SessionOptions converts the analysis settings into tuning session
// options. The config should have passed Validate.
func (c *Config) SessionOptions() (tuner.Options, error) {
	window, err := pitch.ParseWindowFunc(c.Audio.Window)
	if err != nil {
		return tuner.Options{}, invalid("audio.window: %v", err)
	}
	backend, err := spectral.ParseBackend(c.Tuning.Transform)
	if err != nil {
		return tuner.Options{}, invalid("tuning.transform: %v", err)
	}
	return tuner.Options{
		BlockSize: c.Audio.BlockSize,
		Reference: c.Tuning.ReferenceHz,
		Window:    window,
		Backend:   backend,
	}, nil
}
