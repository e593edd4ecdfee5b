package vfs

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with consistent field names for file system
// operations.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler. If handler is
// nil, a text handler writing to stderr at info level is used.
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

func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// logCall records an operation invocation.
func (l *Logger) logCall(operation string, args ...any) {
	l.Debug(operation+" called", args...)
}

// logResult records the outcome of an operation. Exhaustion is a
// warning, every other rejected call is a debug message.
func (l *Logger) logResult(operation string, err error, args ...any) {
	if err == nil {
		return
	}
	args = append(args, "error", err)
	if IsExhausted(err) {
		l.Warn(operation+" ran out of space", args...)
		return
	}
	l.Debug(operation+" failed", args...)
}
