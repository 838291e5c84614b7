package devframe

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with devframe-specific context.
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

// WithOp adds an operation name field to the logger.
func (l *Logger) WithOp(op string) *Logger {
	return &Logger{
		Logger: l.Logger.With("op", op),
	}
}

// WithRows adds a row count field to the logger.
func (l *Logger) WithRows(rows int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rows", rows),
	}
}

// WithColumns adds a column count field to the logger.
func (l *Logger) WithColumns(columns int) *Logger {
	return &Logger{
		Logger: l.Logger.With("columns", columns),
	}
}

// LogAllocate logs a device allocation.
func (l *Logger) LogAllocate(ctx context.Context, bytes int64, err error) {
	if err != nil {
		l.WarnContext(ctx, "allocation failed",
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "allocation completed",
			"bytes", bytes,
		)
	}
}

// LogRelease logs an explicit release of device memory.
func (l *Logger) LogRelease(ctx context.Context, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "release failed",
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "release completed",
			"bytes", bytes,
		)
	}
}

// LogTableOp logs a table-level operation.
func (l *Logger) LogTableOp(ctx context.Context, op string, rows, columns int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "table operation failed",
			"op", op,
			"rows", rows,
			"columns", columns,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "table operation completed",
			"op", op,
			"rows", rows,
			"columns", columns,
			"duration", duration,
		)
	}
}
