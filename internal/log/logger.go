// SPDX-License-Identifier: MIT

// Package log is the tuner's levelled logger. The level is global and
// atomic so the capture callback, the analysis loop and the transports can
// log without coordination.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel defines the severity of a log message.
type LogLevel uint32

// Constants for log levels.
const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel converts a string (case-insensitive) to a LogLevel.
// Returns LevelInfo and false if the string is not recognized.
func ParseLevel(levelStr string) (LogLevel, bool) {
	name := strings.ToUpper(strings.TrimSpace(levelStr))
	if name == "WARNING" {
		name = "WARN"
	}
	for level, n := range levelNames {
		if n == name {
			return LogLevel(level), true
		}
	}
	return LevelInfo, false
}

// currentLevel holds the current global log level atomically.
var currentLevel atomic.Uint32

// stderr is the default destination, restored by SetOutput(nil).
var stderr io.Writer = os.Stderr

// logger shows date and time with microseconds.
var logger = stdlog.New(stderr, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds)

func init() {
	SetLevel(LevelInfo)
}

// SetLevel sets the global logging level atomically.
func SetLevel(level LogLevel) {
	currentLevel.Store(uint32(level))
}

// GetLevel gets the current global logging level atomically.
func GetLevel() LogLevel {
	return LogLevel(currentLevel.Load())
}

// SetOutput redirects log output, mainly for tests. A nil writer restores
// standard error.
func SetOutput(w io.Writer) {
	if w == nil {
		w = stderr
	}
	logger.SetOutput(w)
}

// Configure applies the configured level name. Debug mode always wins.
// An unknown name keeps INFO and is reported as a warning.
func Configure(levelName string, debug bool) {
	if debug {
		SetLevel(LevelDebug)
		return
	}
	level, ok := ParseLevel(levelName)
	SetLevel(level)
	if !ok && levelName != "" {
		Warnf("log: unknown level %q, using %s", levelName, level)
	}
}

// output writes one line tagged with level, padding the tag so messages
// line up: "[INFO]  msg", "[ERROR] msg".
func output(level LogLevel, msg string) {
	tag := level.String()
	logger.Printf("[%s]%s %s", tag, strings.Repeat(" ", max(0, 5-len(tag))), msg)
}

// Debugf logs a formatted debug message if the level is appropriate.
func Debugf(format string, v ...any) {
	if GetLevel() <= LevelDebug {
		output(LevelDebug, fmt.Sprintf(format, v...))
	}
}

// Infof logs a formatted info message if the level is appropriate.
func Infof(format string, v ...any) {
	if GetLevel() <= LevelInfo {
		output(LevelInfo, fmt.Sprintf(format, v...))
	}
}

// Warnf logs a formatted warning message if the level is appropriate.
func Warnf(format string, v ...any) {
	if GetLevel() <= LevelWarn {
		output(LevelWarn, fmt.Sprintf(format, v...))
	}
}

// Errorf logs a formatted error message if the level is appropriate.
func Errorf(format string, v ...any) {
	if GetLevel() <= LevelError {
		output(LevelError, fmt.Sprintf(format, v...))
	}
}

// Fatalf logs regardless of level and exits with status 1.
func Fatalf(format string, v ...any) {
	output(LevelFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}
