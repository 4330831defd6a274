// Package logger builds the process-wide slog.Logger.
package logger

import (
	"io"
	"log/slog"
)

// New returns a logger writing to w at the given level. format "json"
// selects JSON lines; anything else gives slog's key=value text output.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
