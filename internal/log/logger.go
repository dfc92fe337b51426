// Package log wraps slog with a component attribute and the structured
// event helpers the handlers and workers share. Every log line carries a
// component so events from the HTTP layer, the export worker and the
// broker client can be told apart in one stream.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger bound to one component. The component
// attribute is attached once at construction, not on every call.
type Logger struct {
	*slog.Logger
	component string
}

// New creates a component logger on the given handler. A nil handler
// falls back to the process default.
func New(component string, h slog.Handler) *Logger {
	base := slog.Default()
	if h != nil {
		base = slog.New(h)
	}
	return &Logger{
		Logger:    base.With(FieldComponent, component),
		component: component,
	}
}

// Named returns a logger for a different component sharing the same
// handler chain.
func (l *Logger) Named(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With(FieldComponent, component),
		component: component,
	}
}

// With returns a logger carrying extra attributes on every line.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

// Component returns the component this logger is bound to.
func (l *Logger) Component() string {
	return l.component
}

// NewHandler builds the process log handler from LOG_FORMAT ("text",
// default, or "json") and LOG_LEVEL ("debug", "info", "warn", "error").
func NewHandler() slog.Handler {
	opts := &slog.HandlerOptions{Level: levelFromEnv()}
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		return slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.NewTextHandler(os.Stdout, opts)
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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
