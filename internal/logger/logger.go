// Package logger provides logging utilities for the violations pipeline.
package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging functionality.
type Logger struct {
	internal *zap.SugaredLogger
	level    zap.AtomicLevel
}

// NewLogger creates a new logger writing to stderr with the specified level.
func NewLogger(level string) *Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a logger that writes console-encoded lines to w.
func NewLoggerWithWriter(level string, w io.Writer) *Logger {
	lvl := zap.NewAtomicLevelAt(ParseLevel(level))

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeCaller = nil
	encoderCfg.CallerKey = zapcore.OmitKey

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		lvl,
	)

	return &Logger{
		internal: zap.New(core).Sugar(),
		level:    lvl,
	}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{
		internal: zap.NewNop().Sugar(),
		level:    zap.NewAtomicLevelAt(zapcore.ErrorLevel),
	}
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level string) {
	l.level.SetLevel(ParseLevel(level))
}

// Info logs an info level message.
func (l *Logger) Info(msg string, args ...any) {
	l.internal.Infow(msg, args...)
}

// Error logs an error level message.
func (l *Logger) Error(msg string, args ...any) {
	l.internal.Errorw(msg, args...)
}

// Debug logs a debug level message.
func (l *Logger) Debug(msg string, args ...any) {
	l.internal.Debugw(msg, args...)
}

// Warn logs a warning level message.
func (l *Logger) Warn(msg string, args ...any) {
	l.internal.Warnw(msg, args...)
}

// With creates a child logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		internal: l.internal.With(args...),
		level:    l.level,
	}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.internal.Sync()
}
