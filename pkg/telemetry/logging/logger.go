package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"treblle-hq/relay/pkg/masking"
)

// Config selects the logger's behavior.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string

	// Format is the output format ("json", "text").
	Format string

	// RedactKeys redacts values logged under matching keys. Nil disables
	// redaction.
	RedactKeys *masking.PatternSet

	// Writer is the output destination. Defaults to os.Stdout.
	Writer io.Writer
}

// Logger is the SDK logger handed to every component.
type Logger struct {
	slog   *slog.Logger
	redact *masking.PatternSet
}

// New creates a Logger. Unknown levels and formats are construction errors;
// the SDK surfaces them at startup like any other config problem.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	writer := cfg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch cfg.Format {
	case "json", "":
		handler = slog.NewJSONHandler(writer, opts)
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	return &Logger{
		slog:   slog.New(handler),
		redact: cfg.RedactKeys,
	}, nil
}

// Default returns an info-level JSON logger writing to stdout, handed to
// components that were given no logger of their own.
func Default() *Logger {
	l, _ := New(Config{})
	return l
}

// Discard returns a logger that produces no output, for tests and for hosts
// that silence the SDK entirely.
func Discard() *Logger {
	return &Logger{slog: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, l.redactArgs(args)...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, l.redactArgs(args)...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, l.redactArgs(args)...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, l.redactArgs(args)...)
}

// With returns a logger carrying additional fields, redacted like any other.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:   l.slog.With(l.redactArgs(args)...),
		redact: l.redact,
	}
}

// Slog exposes the underlying slog.Logger for components written against
// the standard interface. Redaction does not apply on this path.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// redactArgs replaces the value of every key/value pair whose key matches
// the redaction set.
func (l *Logger) redactArgs(args []any) []any {
	if l.redact == nil || len(args) == 0 {
		return args
	}

	out := make([]any, len(args))
	copy(out, args)
	for i := 1; i < len(out); i += 2 {
		if key, ok := out[i-1].(string); ok && l.redact.Match(key) {
			out[i] = masking.RedactionToken
		}
	}
	return out
}

func parseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", level)
	}
}
