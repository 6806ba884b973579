package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New constructs a text logger with the desired log level.
func New(service string) *slog.Logger {
	return NewWithWriter(service, os.Stdout)
}

// NewWithWriter is New writing to w. A nil w discards everything.
func NewWithWriter(service string, w io.Writer) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", service)
}

// NewFile appends log lines to path. The dashboard owns the terminal, so an
// empty path yields a discarding logger and a no-op closer.
func NewFile(service, path string) (*slog.Logger, func() error, error) {
	if strings.TrimSpace(path) == "" {
		return NewWithWriter(service, nil), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewWithWriter(service, f), f.Close, nil
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
