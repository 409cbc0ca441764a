// SPDX-License-Identifier: MIT
package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	applog "tuner/internal/log"
)

// ErrSenderClosed is returned by Send after Close.
var ErrSenderClosed = errors.New("UDP sender is closed")

// sendTimeout bounds one datagram write so a stalled socket cannot hold
// the publisher past its next tick.
const sendTimeout = 10 * time.Millisecond

// UDPSender writes reading packets to one connected UDP peer.
type UDPSender struct {
	mu     sync.Mutex // guards conn against Close
	conn   *net.UDPConn
	target *net.UDPAddr

	sent   atomic.Uint64
	failed atomic.Uint64
}

// NewUDPSender connects to targetAddress ("host:port", e.g.
// "127.0.0.1:9090"). The local port is chosen by the system.
func NewUDPSender(targetAddress string) (*UDPSender, error) {
	target, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address '%s': %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, target)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP for target '%s': %w", targetAddress, err)
	}

	applog.Infof("UDP Sender: sending readings to %s", target)
	return &UDPSender{conn: conn, target: target}, nil
}

// Target returns the resolved destination address.
func (s *UDPSender) Target() *net.UDPAddr {
	return s.target
}

// Sent returns the number of datagrams written.
func (s *UDPSender) Sent() uint64 {
	return s.sent.Load()
}

// Failed returns the number of failed writes.
func (s *UDPSender) Failed() uint64 {
	return s.failed.Load()
}

// Send writes data as one datagram. It is safe for concurrent use.
func (s *UDPSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrSenderClosed
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(sendTimeout)); err != nil {
		s.failed.Add(1)
		return fmt.Errorf("failed to set UDP write deadline: %w", err)
	}
	if _, err := s.conn.Write(data); err != nil {
		// A missing listener shows up here as ECONNREFUSED; keep going.
		if s.failed.Add(1) == 1 {
			applog.Warnf("UDP Sender: error sending packet: %v", err)
		}
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}

	s.sent.Add(1)
	return nil
}

// Close closes the connection. Further calls are no-ops.
func (s *UDPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	applog.Debugf("UDP Sender: closing connection to %s after %d packets (%d failed)",
		s.target, s.sent.Load(), s.failed.Load())
	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return fmt.Errorf("failed to close UDP connection: %w", err)
	}
	return nil
}

var _ interface{ Close() error } = (*UDPSender)(nil)
