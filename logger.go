package meshgo

import (
	"context"
	"log/slog"
	"os"

	"github.com/golang/geo/r3"
	"github.com/hupe1980/meshgo/delaunay"
)

// Logger wraps slog.Logger with meshgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithCount adds a vertex count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("vertices", count),
	}
}

// WithArchive adds an archive name field to the logger.
func (l *Logger) WithArchive(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("archive", name),
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(ctx context.Context, p r3.Vector, levels int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"point", p,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"point", p,
			"levels", levels,
		)
	}
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(ctx context.Context, v delaunay.VertexHandle, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"vertex", v.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"vertex", v.String(),
		)
	}
}

// LogLocate logs a locate operation.
func (l *Logger) LogLocate(ctx context.Context, q r3.Vector, loc delaunay.Location) {
	l.DebugContext(ctx, "locate completed",
		"point", q,
		"type", loc.Type.String(),
		"steps", loc.Steps,
	)
}

// LogSnapshot logs a save operation.
func (l *Logger) LogSnapshot(ctx context.Context, name string, count, size int, err error) {
	al := l.WithArchive(name)
	if err != nil {
		al.ErrorContext(ctx, "snapshot failed",
			"error", err,
		)
	} else {
		al.WithCount(count).InfoContext(ctx, "snapshot saved",
			"bytes", size,
		)
	}
}

// LogLoad logs a load operation.
// Count is the number of vertices read, also on failure.
func (l *Logger) LogLoad(ctx context.Context, name string, count int, err error) {
	al := l.WithArchive(name).WithCount(count)
	if err != nil {
		al.ErrorContext(ctx, "load failed",
			"error", err,
		)
	} else {
		al.InfoContext(ctx, "snapshot loaded")
	}
}
