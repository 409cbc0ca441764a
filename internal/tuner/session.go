// SPDX-License-Identifier: MIT

// Package tuner composes pitch estimation and note mapping into a tuning
// session that turns one audio block into one reading.
package tuner

import (
	"fmt"
	"time"

	"tuner/internal/log"
	"tuner/internal/note"
	"tuner/internal/pitch"
	"tuner/internal/spectral"
)

// Options configures a Session.
type Options struct {
	BlockSize int              // samples per block (N)
	Reference float64          // A4 in Hz
	Window    pitch.WindowFunc // analysis window, Hann by default
	Backend   spectral.Backend // transform implementation
}

// DefaultOptions returns a 1024-sample, A4 = 440 Hz, Hann, radix-2 setup.
func DefaultOptions() Options {
	return Options{
		BlockSize: 1024,
		Reference: note.DefaultReference,
		Window:    pitch.Hann,
		Backend:   spectral.Radix2,
	}
}

// Reading is one analysed block: when it was taken, the raw estimate in
// Hz and the mapped note.
type Reading struct {
	Time     time.Time   `json:"time"`
	Estimate float64     `json:"estimate"`
	Result   note.Result `json:"result"`
}

// SilentReading is the reading for a block that was not analysed, such as
// one held back by the noise gate.
func SilentReading(t time.Time) Reading {
	return Reading{Time: t, Estimate: pitch.NoSignal, Result: note.NoSignalResult()}
}

// Session owns an estimator and a mapper. The reference is fixed at
// construction; a session keeps no history and may be shared between
// goroutines.
type Session struct {
	estimator *pitch.Estimator
	mapper    *note.Mapper
	now       func() time.Time
}

// NewSession validates opts and builds the estimator and mapper.
func NewSession(opts Options) (*Session, error) {
	ref, err := note.NewReference(opts.Reference)
	if err != nil {
		return nil, fmt.Errorf("tuner: %w", err)
	}

	estimator, err := pitch.NewEstimator(opts.BlockSize,
		pitch.WithWindow(opts.Window),
		pitch.WithBackend(opts.Backend),
	)
	if err != nil {
		return nil, fmt.Errorf("tuner: %w", err)
	}

	log.Debugf("tuner: session ready (A4 = %.2f Hz, block %d)", ref.Hz(), opts.BlockSize)
	return &Session{
		estimator: estimator,
		mapper:    note.NewMapper(ref),
		now:       time.Now,
	}, nil
}

// BlockSize returns the number of samples Analyze expects.
func (s *Session) BlockSize() int {
	return s.estimator.Size()
}

// Reference returns the session's A4 frequency.
func (s *Session) Reference() note.Reference {
	return s.mapper.Reference()
}

// Mapper exposes the note mapper, e.g. for parsing note names.
func (s *Session) Mapper() *note.Mapper {
	return s.mapper
}

// Analyze estimates the fundamental of block and maps it to a note. A
// block without a usable pitch yields the no-signal result, not an error.
func (s *Session) Analyze(block pitch.AudioBlock) (note.Result, error) {
	f, err := s.estimator.Estimate(block)
	if err != nil {
		return note.NoSignalResult(), err
	}
	return s.mapper.Map(f), nil
}

// Read is Analyze with the raw estimate and a timestamp attached.
func (s *Session) Read(block pitch.AudioBlock) (Reading, error) {
	t := s.now()
	f, err := s.estimator.Estimate(block)
	if err != nil {
		return SilentReading(t), err
	}
	return Reading{Time: t, Estimate: f, Result: s.mapper.Map(f)}, nil
}
