package logging

import (
	"log/slog"
	"os"
)

// Setup configures the default logger. Diagnostics go to stderr so that
// stdout stays reserved for the rendered markdown.
func Setup(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
