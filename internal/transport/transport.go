// SPDX-License-Identifier: MIT

// Package transport publishes tuning readings to observers: the log, web
// clients over WebSocket and, through the udp subpackage, UDP listeners.
package transport

import (
	"errors"
	"sync"

	"tuner/internal/tuner"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("transport closed")

// Transport defines a generic interface for sending readings or events.
// Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// ReadingSource provides the most recent reading to pull-based publishers.
type ReadingSource interface {
	// Latest returns the newest reading and false if none arrived yet.
	Latest() (tuner.Reading, bool)
}

// Latest is a Transport that keeps only the newest reading, bridging the
// push-based engine to pull-based publishers such as the UDP publisher.
type Latest struct {
	mu      sync.RWMutex
	reading tuner.Reading
	ok      bool
}

// NewLatest returns an empty Latest.
func NewLatest() *Latest {
	return &Latest{}
}

// Send stores data if it is a tuner.Reading and ignores anything else.
func (l *Latest) Send(data any) error {
	reading, ok := data.(tuner.Reading)
	if !ok {
		return nil
	}
	l.mu.Lock()
	l.reading, l.ok = reading, true
	l.mu.Unlock()
	return nil
}

func (l *Latest) Latest() (tuner.Reading, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.reading, l.ok
}

// Close is a no-op.
func (l *Latest) Close() error {
	return nil
}

// Ensure Latest satisfies the interfaces at compile time.
var (
	_ Transport     = (*Latest)(nil)
	_ ReadingSource = (*Latest)(nil)
)
