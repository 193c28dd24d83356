package leven

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

// Logger wraps slog.Logger with search-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a charm text logger on stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = NewCharmHandler(os.Stderr, slog.LevelInfo, log.TextFormatter)
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewCharmHandler returns a charmbracelet/log logger usable as a slog.Handler.
func NewCharmHandler(w io.Writer, level slog.Level, formatter log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          "leven",
		ReportTimestamp: true,
		Formatter:       formatter,
		Level:           log.Level(level),
	})
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(NewCharmHandler(os.Stderr, level, log.JSONFormatter))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(NewCharmHandler(os.Stderr, level, log.TextFormatter))
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithK adds a k (result count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithMode adds a search mode field to the logger.
func (l *Logger) WithMode(m Mode) *Logger {
	return &Logger{
		Logger: l.Logger.With("mode", m.String()),
	}
}

// LogBuild logs index construction.
func (l *Logger) LogBuild(ctx context.Context, entries, workers int, keyCost bool) {
	l.InfoContext(ctx, "index built",
		"entries", entries,
		"workers", workers,
		"key_cost", keyCost,
	)
}

// LogSearch logs a search operation, scoped by WithMode and WithK.
func (l *Logger) LogSearch(ctx context.Context, stats SearchStats, err error) {
	sl := l.WithMode(stats.Mode).WithK(stats.K)
	if err != nil {
		sl.ErrorContext(ctx, "search failed", "error", err)
		return
	}
	sl.DebugContext(ctx, "search completed",
		"results", stats.Results,
		"visited", stats.Visited,
		"pruned", stats.Pruned,
		"cached", stats.Cached,
	)
}
