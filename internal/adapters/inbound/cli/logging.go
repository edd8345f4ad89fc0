package cli

import (
	"io"
	"log/slog"
)

// newLogger returns the diagnostics logger: warnings only, or everything
// down to subprocess tracing when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
