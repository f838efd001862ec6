package logger

import (
	"io"
	"os"

	"golang.org/x/exp/slog"

	"noteminder/internal/config"
)

// New builds the process logger for env: human-readable debug output for
// local runs, JSON for dev (debug) and prod (info).
func New(env string) *slog.Logger {
	return NewWithWriter(env, os.Stderr)
}

// NewWithWriter is New writing to w.
func NewWithWriter(env string, w io.Writer) *slog.Logger {
	switch env {
	case config.EnvProd:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
