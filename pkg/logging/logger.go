package logging

import (
	"context"
)

// Level represents log severity
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Logger defines the interface for logging
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields Fields)

	// Info logs an info message
	Info(ctx context.Context, msg string, fields Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields Fields)

	// WithFields returns a logger with additional fields
	WithFields(fields Fields) Logger

	// Close flushes and closes the logger
	Close() error
}

// levelString returns the string representation of a log level
func levelString(level Level) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string, defaulting to info
func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return DebugLevel
	case "info", "INFO":
		return InfoLevel
	case "warn", "WARN", "warning", "WARNING":
		return WarnLevel
	case "error", "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// LevelString returns level as string (exported version)
func LevelString(level Level) string {
	return levelString(level)
}
