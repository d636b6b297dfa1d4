package boxtree

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with boxtree-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithFanout adds a fanout field to the logger.
func (l *Logger) WithFanout(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("fanout", k),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogBulkLoad logs a bulk build.
func (l *Logger) LogBulkLoad(ctx context.Context, count, nodes int, elapsed time.Duration) {
	l.DebugContext(ctx, "bulk load completed",
		"count", count,
		"nodes", nodes,
		"elapsed", elapsed,
	)
}

// LogSplit logs the rebuild of an overflowing subtree.
func (l *Logger) LogSplit(ctx context.Context, count int) {
	l.DebugContext(ctx, "subtree split",
		"count", count,
	)
}

// LogMerge logs a merge of two trees.
func (l *Logger) LogMerge(ctx context.Context, received int) {
	l.DebugContext(ctx, "merge completed",
		"received", received,
	)
}

// LogPartition logs one partitioner run. Runs that hit the iteration cap
// are logged at warn level.
func (l *Logger) LogPartition(ctx context.Context, boxes, groups, iterations int, converged, fallback bool) {
	if !converged {
		l.WarnContext(ctx, "box partition did not converge",
			"boxes", boxes,
			"groups", groups,
			"iterations", iterations,
		)
		return
	}
	l.DebugContext(ctx, "box partition completed",
		"boxes", boxes,
		"groups", groups,
		"iterations", iterations,
		"fallback", fallback,
	)
}
