package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog so packages don't depend on the handler setup.
type Logger struct {
	*slog.Logger
}

func New(level string) *Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	return &Logger{
		Logger: slog.New(slog.NewTextHandler(os.Stdout, opts)),
	}
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
