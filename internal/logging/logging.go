package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a stdout slog.Logger; format "json" switches to structured output.
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromString(level)}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything, for tests and optional wiring.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// CronLogger adapts slog to the robfig/cron logger interface.
type CronLogger struct {
	Logger *slog.Logger
}

// Info logs scheduler chatter at debug level.
func (c CronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.Logger.Debug(msg, keysAndValues...)
}

// Error logs scheduler failures.
func (c CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.Logger.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
