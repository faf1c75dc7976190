package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSizeMB is the size in megabytes that triggers rotation (0 = 100)
	MaxSizeMB int
	// MaxBackups is the maximum number of backup files to keep (0 = all)
	MaxBackups int
}

// FileLogger implements Logger on top of zap, writing to a rotating file
type FileLogger struct {
	zl   *zap.Logger
	sink *lumberjack.Logger
}

// NewFileLogger creates a new file logger
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	sink := &lumberjack.Logger{
		Filename:   config.Path,
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
	}
	// lumberjack opens lazily; an empty write surfaces a bad path here
	if _, err := sink.Write(nil); err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     utcTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var encoder zapcore.Encoder
	if config.Format == FormatJSON {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(sink), zapLevel(config.Level))
	return &FileLogger{zl: zap.New(core), sink: sink}, nil
}

// Debug logs a debug message
func (l *FileLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.zl.Debug(msg, zapFields(fields)...)
}

// Info logs an info message
func (l *FileLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.zl.Info(msg, zapFields(fields)...)
}

// Warn logs a warning message
func (l *FileLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.zl.Warn(msg, zapFields(fields)...)
}

// Error logs an error message
func (l *FileLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	zf := zapFields(fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	l.zl.Error(msg, zf...)
}

// WithFields returns a logger with additional fields sharing the same file
func (l *FileLogger) WithFields(fields Fields) Logger {
	return &FileLogger{zl: l.zl.With(zapFields(fields)...), sink: l.sink}
}

// Close flushes and closes the logger
func (l *FileLogger) Close() error {
	_ = l.zl.Sync()
	return l.sink.Close()
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// zapFields converts fields in key order so output is stable
func zapFields(fields Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}

func utcTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(time.RFC3339))
}
