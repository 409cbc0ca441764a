// SPDX-License-Identifier: MIT

// Package udp streams tuning readings as fixed-size binary packets.
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	applog "tuner/internal/log"
	"tuner/internal/transport"
	"tuner/internal/tuner"
)

// DefaultInterval is used when NewUDPPublisher gets a non-positive interval.
const DefaultInterval = 33 * time.Millisecond

// ErrPacketSize is returned by DecodePacket for input of the wrong length.
var ErrPacketSize = errors.New("UDP packet has the wrong size")

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Reading time, Unix ns   |
| Note Number       | int16          | 2            | A4 = 69                 |
| Cents             | int16          | 2            | Rounded deviation       |
| Signal            | uint8          | 1            | 1 = pitched, 0 = none   |
| Frequency         | float32        | 4            | Estimate in Hz          |
| Deviation         | float32        | 4            | Unrounded cents         |
+-----------------------------------------------------------------------------+
*/

// Packet is the wire form of one reading.
type Packet struct {
	Sequence  uint32
	Timestamp int64
	Note      int16
	Cents     int16
	Signal    uint8
	Frequency float32
	Deviation float32
}

// PacketSize is the encoded length of a Packet in bytes.
const PacketSize = 4 + 8 + 2 + 2 + 1 + 4 + 4

// NewPacket converts a reading. Note numbers and cents outside the int16
// range saturate.
func NewPacket(seq uint32, r tuner.Reading) Packet {
	p := Packet{
		Sequence:  seq,
		Timestamp: r.Time.UnixNano(),
		Frequency: float32(r.Estimate),
	}
	if r.Result.Signal {
		p.Signal = 1
		p.Note = saturate16(r.Result.Number)
		p.Cents = saturate16(r.Result.Cents)
		p.Deviation = float32(r.Result.Deviation)
	}
	return p
}

// DecodePacket parses a packet produced by the publisher.
func DecodePacket(data []byte) (Packet, error) {
	var p Packet
	if len(data) != PacketSize {
		return p, fmt.Errorf("%w: got %d bytes, want %d", ErrPacketSize, len(data), PacketSize)
	}
	err := binary.Read(bytes.NewReader(data), binary.BigEndian, &p)
	return p, err
}

func saturate16(v int) int16 {
	return int16(max(math.MinInt16, min(math.MaxInt16, v)))
}

// UDPPublisher periodically fetches the latest reading from a source,
// packs it into the binary format above and sends it with a UDPSender.
// It runs in a separate goroutine managed by Start and Stop methods.
type UDPPublisher struct {
	sender   *UDPSender              // The underlying UDP sender instance.
	source   transport.ReadingSource // Where readings come from.
	interval time.Duration           // The interval at which packets are sent.

	ticker   *time.Ticker   // Ticker that triggers packet sending.
	doneChan chan struct{}  // Channel used to signal the publisher goroutine to stop.
	stopOnce sync.Once      // Ensures the stop logic runs only once per Start/Stop cycle.
	wg       sync.WaitGroup // Waits for the publisher goroutine to finish during Stop.
	mu       sync.Mutex     // Protects access to ticker and doneChan during Start/Stop.

	sequenceNum uint32 // Monotonically increasing sequence number for packets.

	// Reusable buffer for constructing the binary packet.
	packetBuffer *bytes.Buffer
}

// NewUDPPublisher creates and initializes a new UDPPublisher.
// It requires a valid UDPSender and ReadingSource.
// If the provided interval is invalid (<= 0), it defaults to DefaultInterval.
func NewUDPPublisher(interval time.Duration, sender *UDPSender, source transport.ReadingSource) (*UDPPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("UDPPublisher: reading source cannot be nil")
	}

	if interval <= 0 {
		interval = DefaultInterval
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}

	applog.Infof("UDPPublisher: Initializing (Interval: %s, Packet: %d bytes)", interval, PacketSize)

	packetBuffer := new(bytes.Buffer)
	packetBuffer.Grow(PacketSize)

	return &UDPPublisher{
		sender:       sender,
		source:       source,
		interval:     interval,
		packetBuffer: packetBuffer,
	}, nil
}

// Start begins the periodic publishing process.
// It launches a goroutine that ticks at the configured interval, calling
// buildAndSendPacket on each tick until Stop is called.
// It is safe to call Start multiple times; subsequent calls are no-ops if already started.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	// Prevent starting if already running
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}

	// Initialize resources for this run
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{} // Reset stopOnce for this run

	// Capture local variables for the goroutine to avoid data races on p.ticker/p.doneChan
	ticker := p.ticker
	doneChan := p.doneChan

	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Debugf("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				applog.Debugf("UDPPublisher: Publisher goroutine received stop signal.")
				return
			}
		}
	}()
}

// Stop gracefully signals the publisher goroutine to terminate and waits for it to exit.
// It is safe to call Stop multiple times; subsequent calls are no-ops.
func (p *UDPPublisher) Stop() error {
	p.mu.Lock()
	// Check if already stopped or never started
	if p.ticker == nil {
		p.mu.Unlock()
		applog.Debugf("UDPPublisher: Stop called but not running.")
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan) // Signal the goroutine to exit
		p.ticker.Stop()
		p.ticker = nil // Mark as stopped
	})

	p.mu.Unlock() // Unlock before waiting

	p.wg.Wait()
	applog.Debugf("UDPPublisher: Publisher goroutine finished.")
	return nil
}

// buildAndSendPacket is executed on each ticker interval. It fetches the
// latest reading, packs it and sends it. Nothing is sent before the first
// reading arrives.
func (p *UDPPublisher) buildAndSendPacket() {
	reading, ok := p.source.Latest()
	if !ok {
		return
	}

	p.sequenceNum++
	packet := NewPacket(p.sequenceNum, reading)

	// Reset the reusable buffer before writing new packet data.
	p.packetBuffer.Reset()
	if err := binary.Write(p.packetBuffer, binary.BigEndian, &packet); err != nil {
		applog.Errorf("UDPPublisher: Error packing data into binary buffer: %v", err)
		return // Skip sending this packet
	}

	packetBytes := p.packetBuffer.Bytes()
	if err := p.sender.Send(packetBytes); err == nil {
		// Log successful sends only at Debug level to avoid flooding logs.
		applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, len(packetBytes))
	}
}

// Close implements the io.Closer interface. It gracefully stops the publisher goroutine.
func (p *UDPPublisher) Close() error {
	return p.Stop()
}

// Ensure UDPPublisher satisfies the io.Closer interface at compile time.
var _ interface{ Close() error } = (*UDPPublisher)(nil)
