package config

import (
	"io"
	"log/slog"
)

// NewLogger creates a JSON slog.Logger writing to w at the configured level.
func NewLogger(c Config, w io.Writer, attrs ...any) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: c.LogLevel})

	return slog.New(handler).With(attrs...)
}
