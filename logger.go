package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// The TUI owns stdout, so logs only ever go to a file.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// closeLogger closes the log file opened by initLogger. Anything that exits
// the process must call it first.
var closeLogger = func() error { return nil }

func initLogger(path string) error {
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("logger initialized", "version", VERSION)
	closeLogger = func() error {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		return f.Close()
	}
	return nil
}
