// Package applog builds the application's slog logger.
//
// The logger writes colorized output to stderr via tint and, when a log
// directory is available, mirrors entries to ~/.paichat/logs/app.log so
// TUI sessions (which own the terminal) still leave a trace. The file
// sink gets its own handler with color disabled; ANSI escapes belong on
// a terminal, not in a log file.
package applog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"
)

// Options controls logger construction.
type Options struct {
	Level slog.Level

	// Quiet drops the stderr sink. Used by the TUI, which cannot share
	// the terminal with log output.
	Quiet bool
}

const timeFormat = "2006-01-02 15:04:05"

// New constructs the application logger.
func New(opts Options) *slog.Logger {
	var handlers []slog.Handler

	if !opts.Quiet {
		handlers = append(handlers, tint.NewHandler(os.Stderr, &tint.Options{
			Level:      opts.Level,
			TimeFormat: timeFormat,
		}))
	}
	if f := openLogFile(); f != nil {
		handlers = append(handlers, tint.NewHandler(f, &tint.Options{
			Level:      opts.Level,
			TimeFormat: timeFormat,
			NoColor:    true,
		}))
	}

	switch len(handlers) {
	case 0:
		return slog.New(slog.DiscardHandler)
	case 1:
		return slog.New(handlers[0])
	default:
		return slog.New(teeHandler{handlers: handlers})
	}
}

// teeHandler fans one record out to every sink.
type teeHandler struct {
	handlers []slog.Handler
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		out[i] = h.WithAttrs(attrs)
	}
	return teeHandler{handlers: out}
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		out[i] = h.WithGroup(name)
	}
	return teeHandler{handlers: out}
}

// openLogFile opens ~/.paichat/logs/app.log for appending.
// Returns nil on any failure; logging must never block startup.
func openLogFile() *os.File {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	logDir := filepath.Join(homeDir, ".paichat", "logs")
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(logDir, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil
	}
	return f
}
