package main

import (
	"io"
	"log/slog"
)

// setupLogger logs to stderr so stdout only carries command output.
func setupLogger(w io.Writer, debug bool) *slog.Logger {
	logLevel := slog.LevelWarn
	if debug {
		logLevel = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: debug,
	}

	return slog.New(slog.NewTextHandler(w, opts)).With(
		"service", "vizpath",
		"version", Version,
	)
}
