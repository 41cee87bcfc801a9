// Package logging configures the process-wide slog logger.
//
// Two formats are supported:
//
//	text: colored, human readable output via tint (default)
//	json: one JSON object per line, for log shippers
//
// Levels are debug, info, warn and error (default: info).
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup builds a logger writing to stderr, installs it as the slog default
// and returns it.
func Setup(format, level string) *slog.Logger {
	logger := New(os.Stderr, format, ParseLevel(level))
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w in the given format.
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level == slog.LevelDebug,
	}))
}

// ParseLevel maps a level name to a slog.Level. Unknown names yield info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
