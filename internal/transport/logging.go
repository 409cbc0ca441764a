// SPDX-License-Identifier: MIT
package transport

import (
	"fmt"
	"sync"

	"tuner/internal/log"
	"tuner/internal/tuner"
)

// LoggingTransport implements the Transport interface by logging readings.
// A reading is logged only when its text differs from the previous one, so
// a steady note does not flood the log.
type LoggingTransport struct {
	mu   sync.Mutex
	last string
}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	log.Debugf("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received data through the application logger.
func (lt *LoggingTransport) Send(data any) error {
	var line string
	switch v := data.(type) {
	case tuner.Reading:
		if v.Result.Signal {
			line = fmt.Sprintf("%s (%.2f Hz)", v.Result, v.Estimate)
		} else {
			line = v.Result.String()
		}
	default:
		log.Debugf("LOG_TRANSPORT: Received (%T): %+v", data, data)
		return nil
	}

	lt.mu.Lock()
	changed := line != lt.last
	lt.last = line
	lt.mu.Unlock()

	if changed {
		log.Infof("%s", line)
	}
	return nil // Logging transport never fails to "send"
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	log.Debugf("LOG_TRANSPORT: Close called.")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
