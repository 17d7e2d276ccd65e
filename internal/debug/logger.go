package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger provides leveled diagnostic logging for the CLI.
// A nil or disabled Logger discards everything.
type Logger struct {
	enabled bool
	log     *slog.Logger
}

// New returns a logger writing through handler when enabled. A nil handler
// selects a text handler on stderr.
func New(enabled bool, handler slog.Handler) *Logger {
	if handler == nil {
		handler = TextHandler(os.Stderr)
	}
	return &Logger{enabled: enabled, log: slog.New(handler)}
}

// TextHandler returns the default handler format used by New.
func TextHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// Enabled reports whether the logger emits anything.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Infof writes a formatted info line when enabled.
func (l *Logger) Infof(format string, args ...any) {
	l.logf(slog.LevelInfo, format, args...)
}

// Warnf writes a formatted warning line when enabled.
func (l *Logger) Warnf(format string, args ...any) {
	l.logf(slog.LevelWarn, format, args...)
}

// With returns a logger that adds attrs to every line.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{enabled: l.enabled, log: l.log.With(args...)}
}

func (l *Logger) logf(level slog.Level, format string, args ...any) {
	if !l.Enabled() {
		return
	}
	l.log.Log(context.Background(), level, fmt.Sprintf(format, args...))
}
