// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package logger provides the leveled structured logger used across the library.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Config describes logger output.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Format is either text or json. Empty means text.
	Format string
	// Output is the destination. Nil means os.Stderr.
	Output io.Writer
}

// Logger wraps slog.Logger, so that the level can be changed at runtime.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	l, _ := New(Config{Level: "warn"})
	defaultLogger.Store(l)
}

// New creates a new logger with the specified configuration.
func New(cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	lv := new(slog.LevelVar)
	lv.Set(level)
	opts := &slog.HandlerOptions{Level: lv}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		handler = slog.NewTextHandler(out, opts)
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		return nil, errors.Errorf("invalid log format %q (must be json or text)", cfg.Format)
	}
	return &Logger{Logger: slog.New(handler), level: lv}, nil
}

// Discard returns a logger, which drops everything.
func Discard() *Logger {
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelError + 1)
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: lv})), level: lv}
}

// ParseLevel converts a string log level into slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.Errorf("unknown log level %q", level)
	}
}

// SetLevel changes the minimal level of the logger and all loggers derived with With.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// With returns a logger with additional attributes sharing the level with l.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), level: l.level}
}

// Default returns the process-wide logger.
func Default() *Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger. Nil restores the default one.
func SetDefault(l *Logger) {
	if l == nil {
		l, _ = New(Config{Level: "warn"})
	}
	defaultLogger.Store(l)
}
