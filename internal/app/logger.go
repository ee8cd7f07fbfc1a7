package app

import (
	"io"
	"log/slog"
)

// newLogger builds a slog.Logger writing to outW. It does not touch the
// global logger, so apps can hold isolated instances.
func newLogger(level slog.Level, format string, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
