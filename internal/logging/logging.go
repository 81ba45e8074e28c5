// Package logging builds the structured loggers used across radonlens.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/panbanda/radonlens/pkg/config"
)

// LevelFromString converts a string to a slog.Level.
// Supports debug, info, warn and error (case-insensitive).
// Returns slog.LevelInfo for unrecognized strings.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a logger writing text or json records to w.
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// FromConfig creates a logger from the logging section of the config.
// verbose forces debug level.
func FromConfig(w io.Writer, cfg config.LoggingConfig, verbose bool) *slog.Logger {
	level := LevelFromString(cfg.Level)
	if verbose {
		level = slog.LevelDebug
	}
	return NewLogger(w, level, cfg.Format)
}

// NewDiscardLogger creates a logger that discards all output.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
