package api

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// LogLevel is the logger severity threshold.
type LogLevel int

const (
	LogError LogLevel = iota
	LogWarn
	LogInfo
	LogDebug
)

// String returns the level name.
func (l LogLevel) String() string {
	switch l {
	case LogError:
		return "ERROR"
	case LogWarn:
		return "WARN"
	case LogInfo:
		return "INFO"
	case LogDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps a config string to a level. Unknown values fall back to
// info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LogError
	case "warn", "warning":
		return LogWarn
	case "debug":
		return LogDebug
	default:
		return LogInfo
	}
}

// Logger is the logging interface used across the service.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	SetLevel(level LogLevel)
	GetLevel() LogLevel
}

// DefaultLogger writes leveled lines to a single writer.
type DefaultLogger struct {
	level  LogLevel
	mu     sync.Mutex
	output io.Writer
}

// NewDefaultLogger creates a logger writing to stdout.
func NewDefaultLogger(level LogLevel) *DefaultLogger {
	return &DefaultLogger{
		level:  level,
		output: os.Stdout,
	}
}

// NewDefaultLoggerWithOutput creates a logger with a custom writer.
func NewDefaultLoggerWithOutput(level LogLevel, output io.Writer) *DefaultLogger {
	return &DefaultLogger{
		level:  level,
		output: output,
	}
}

// SetLevel updates the severity threshold.
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the severity threshold.
func (l *DefaultLogger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Debug logs at DEBUG level.
func (l *DefaultLogger) Debug(format string, args ...interface{}) {
	if !l.shouldLog(LogDebug) {
		return
	}
	l.log(LogDebug, format, args...)
}

// Info logs at INFO level.
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	if !l.shouldLog(LogInfo) {
		return
	}
	l.log(LogInfo, format, args...)
}

// Warn logs at WARN level.
func (l *DefaultLogger) Warn(format string, args ...interface{}) {
	if !l.shouldLog(LogWarn) {
		return
	}
	l.log(LogWarn, format, args...)
}

// Error logs at ERROR level.
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	if !l.shouldLog(LogError) {
		return
	}
	l.log(LogError, format, args...)
}

func (l *DefaultLogger) shouldLog(level LogLevel) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level <= l.level
}

func (l *DefaultLogger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	message := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.output, "[%s] %s\n", level.String(), message)
}

// NoOpLogger discards everything. Used to silence components in tests.
type NoOpLogger struct{}

// NewNoOpLogger creates a no-op logger.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Debug(format string, args ...interface{}) {}
func (l *NoOpLogger) Info(format string, args ...interface{})  {}
func (l *NoOpLogger) Warn(format string, args ...interface{})  {}
func (l *NoOpLogger) Error(format string, args ...interface{}) {}
func (l *NoOpLogger) SetLevel(level LogLevel)                  {}
func (l *NoOpLogger) GetLevel() LogLevel                       { return LogInfo }
