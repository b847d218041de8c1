package core

import (
	"log/slog"
	"os"
)

// Logger wraps slog and hands out per-component child loggers so every
// service logs with a stable "component" attribute instead of touching
// global logging state.
type Logger struct {
	*slog.Logger
	components map[string]*slog.Logger
}

// NewLogger creates the process-wide logger. Configure once at startup,
// pass by reference everywhere.
func NewLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	return &Logger{
		Logger:     slog.New(handler),
		components: make(map[string]*slog.Logger),
	}
}

// ForComponent returns a logger scoped to a pipeline component
// (fetcher, normalizer, store, ...).
func (l *Logger) ForComponent(name string) *Logger {
	if child, exists := l.components[name]; exists {
		return &Logger{
			Logger:     child,
			components: l.components,
		}
	}

	child := l.Logger.With("component", name)
	l.components[name] = child

	return &Logger{
		Logger:     child,
		components: l.components,
	}
}

// ForSource returns a logger annotated with the feed source being
// processed, for per-source failure reporting.
func (l *Logger) ForSource(name string) *Logger {
	return &Logger{
		Logger:     l.Logger.With("source", name),
		components: l.components,
	}
}
