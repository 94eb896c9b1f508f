package logger

import (
	"io"
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

// New builds a logger for the given environment. Development and debug runs
// get the human-readable text handler, everything else gets JSON.
func New(w io.Writer, env string, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var handler slog.Handler
	if debug || env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// Init initializes the default logger with appropriate handler based on environment
func Init(env string, debug bool) *slog.Logger {
	// stderr keeps command output on stdout clean
	defaultLogger = New(os.Stderr, env, debug)
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

// Default returns the default logger instance
func Default() *slog.Logger {
	if defaultLogger == nil {
		// Fallback to text handler if not initialized
		defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return defaultLogger
}

// Discard returns a logger that drops every record. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
