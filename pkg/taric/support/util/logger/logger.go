// Package logger is the leveled logger used across the TARIC importer.
// Output goes through the standard `log` package; messages below the
// configured level are dropped.
package logger

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
)

// LogLevel orders log severities. Smaller values are more verbose.
type LogLevel int32

const (
	// LevelDebug enables everything, including per-record parse traces.
	LevelDebug LogLevel = iota
	// LevelInfo is the default level.
	LevelInfo
	// LevelWarn reports recoverable problems such as skipped records.
	LevelWarn
	// LevelError reports failed chunks and infrastructure errors.
	LevelError
	// LevelFatal terminates the process after logging.
	LevelFatal
)

var logLevel atomic.Int32

func init() {
	logLevel.Store(int32(LevelInfo))
}

// ParseLevel converts "DEBUG", "INFO", "WARN", "ERROR" or "FATAL"
// (case-insensitive) into a LogLevel.
func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG", "TRACE":
		return LevelDebug, nil
	case "INFO", "":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// SetLogLevel sets the global level. Unknown values fall back to INFO.
func SetLogLevel(level string) {
	parsed, err := ParseLevel(level)
	if err != nil {
		log.Printf("[WARN] %v, defaulting to INFO", err)
	}
	logLevel.Store(int32(parsed))
}

// Level returns the current global level.
func Level() LogLevel {
	return LogLevel(logLevel.Load())
}

func enabled(l LogLevel) bool {
	return Level() <= l
}

// Debugf logs at DEBUG.
func Debugf(format string, v ...interface{}) {
	if enabled(LevelDebug) {
		log.Printf("[DEBUG] "+format, v...)
	}
}

// Infof logs at INFO.
func Infof(format string, v ...interface{}) {
	if enabled(LevelInfo) {
		log.Printf("[INFO] "+format, v...)
	}
}

// Warnf logs at WARN.
func Warnf(format string, v ...interface{}) {
	if enabled(LevelWarn) {
		log.Printf("[WARN] "+format, v...)
	}
}

// Errorf logs at ERROR.
func Errorf(format string, v ...interface{}) {
	if enabled(LevelError) {
		log.Printf("[ERROR] "+format, v...)
	}
}

// Fatalf logs the message and exits with status 1.
func Fatalf(format string, v ...interface{}) {
	log.Fatalf("[FATAL] "+format, v...)
}

// Component prefixes every message with a component name, e.g.
// "[INFO] [chunker] finalized chunk 3".
type Component string

// For returns a Component logger for name.
func For(name string) Component {
	return Component(name)
}

func (c Component) prefix(format string) string {
	return "[" + string(c) + "] " + format
}

// Debugf logs at DEBUG with the component prefix.
func (c Component) Debugf(format string, v ...interface{}) { Debugf(c.prefix(format), v...) }

// Infof logs at INFO with the component prefix.
func (c Component) Infof(format string, v ...interface{}) { Infof(c.prefix(format), v...) }

// Warnf logs at WARN with the component prefix.
func (c Component) Warnf(format string, v ...interface{}) { Warnf(c.prefix(format), v...) }

// Errorf logs at ERROR with the component prefix.
func (c Component) Errorf(format string, v ...interface{}) { Errorf(c.prefix(format), v...) }
