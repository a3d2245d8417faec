// Package logging provides structured logging for the hss module and its
// command-line tools.
//
// It is a thin wrapper over the standard library's log/slog: a Logger
// writes to stderr (unless Quiet), and optionally forwards every entry to
// a caller-supplied LogExporter for callers that want to assert on or
// redirect log output (tests use BufferedExporter for exactly this).
//
// # Basic Usage
//
//	logger := logging.Default()
//	logger.Info("starting compression", "rows", m, "cols", n)
//	logger.Warn("compression degraded", "reason", err)
//
// # Export
//
// To capture log entries instead of (or in addition to) stderr, implement
// LogExporter:
//
//	logger := logging.New(logging.Config{
//	    Level:    logging.LevelInfo,
//	    Service:  "hssctl",
//	    Exporter: exporter,
//	})
//
// The exporter receives LogEntry structs asynchronously.
//
// # Thread Safety
//
// Logger is safe for concurrent use; the underlying slog.Logger is
// thread-safe and exporter dispatch never touches shared mutable state
// outside the exporter itself.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Level represents log severity levels, following the slog convention:
// Debug < Info < Warn < Error. Setting a minimum level filters out all logs
// below it.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns "DEBUG", "INFO", "WARN", "ERROR", or "UNKNOWN".
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures the Logger behavior. The zero value creates a logger
// that writes Debug+ messages to stderr in text format.
type Config struct {
	// Level sets the minimum log level. The zero value is LevelDebug;
	// Default() uses LevelInfo.
	Level Level

	// Service identifies the component generating logs, included in every
	// entry as the "service" attribute.
	Service string

	// JSON selects JSON-formatted stderr output instead of human-readable
	// text.
	JSON bool

	// Quiet disables stderr output. Useful when only the Exporter matters.
	Quiet bool

	// Exporter is an optional sink log entries are also sent to,
	// asynchronously. Export failures are silently ignored.
	Exporter LogExporter
}

// LogExporter receives a copy of every log entry at or above the logger's
// configured level. Implementations should not block Export for long —
// it's called from a fresh goroutine per entry, but a slow or hanging
// Export still accumulates goroutines under sustained logging.
type LogExporter interface {
	// Export sends a log entry to the external system. Called
	// asynchronously; a returned error is ignored.
	Export(ctx context.Context, entry LogEntry) error

	// Flush blocks until all pending entries are sent. Called during
	// graceful shutdown.
	Flush(ctx context.Context) error

	// Close releases resources held by the exporter. Called after Flush.
	Close() error
}

// LogEntry is a structured log entry handed to a LogExporter.
type LogEntry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Service   string
	Attrs     map[string]any
}

// Logger wraps slog.Logger with level-gated export and proper shutdown via
// Close().
type Logger struct {
	slog     *slog.Logger
	config   Config
	exporter LogExporter
}

// New creates a Logger from config. The returned Logger should be closed
// with Close() when done, to flush and close its exporter.
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}

	var handler slog.Handler
	if config.Quiet {
		handler = slog.NewTextHandler(discard{}, opts)
	} else if config.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	return &Logger{slog: slog.New(handler), config: config, exporter: config.Exporter}
}

// Default returns a Logger with Info level, stderr text output, and
// Service "hssctl" — the baseline for hssctl's own CLI commands.
func Default() *Logger {
	return New(Config{Level: LevelInfo, Service: "hssctl"})
}

func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// Close flushes and closes the logger's exporter, if any. Safe to call on a
// Logger with no exporter configured.
func (l *Logger) Close() error {
	if l.exporter == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.exporter.Flush(ctx); err != nil {
		return fmt.Errorf("flush exporter: %w", err)
	}
	if err := l.exporter.Close(); err != nil {
		return fmt.Errorf("close exporter: %w", err)
	}
	return nil
}

func (l *Logger) log(level Level, msg string, args ...any) {
	switch level {
	case LevelDebug:
		l.slog.Debug(msg, args...)
	case LevelInfo:
		l.slog.Info(msg, args...)
	case LevelWarn:
		l.slog.Warn(msg, args...)
	case LevelError:
		l.slog.Error(msg, args...)
	}

	if l.exporter != nil && level >= l.config.Level {
		entry := LogEntry{
			Timestamp: time.Now(),
			Level:     level,
			Message:   msg,
			Service:   l.config.Service,
			Attrs:     argsToMap(args),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = l.exporter.Export(ctx, entry)
		}()
	}
}

// discard is an io.Writer that drops everything, used so Quiet still builds
// a real slog.Handler (and so Level filtering is exercised the same way
// regardless of Quiet) instead of special-casing a nil handler.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// argsToMap converts slog-style key-value args to a map for LogEntry.Attrs.
func argsToMap(args []any) map[string]any {
	result := make(map[string]any)
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			result[key] = args[i+1]
		}
	}
	return result
}

// BufferedExporter collects log entries in memory. Useful for tests that
// need to assert on log output:
//
//	exporter := logging.NewBufferedExporter()
//	logger := logging.New(logging.Config{Exporter: exporter})
//	logger.Info("test message", "key", "value")
//	entries := exporter.Entries()
type BufferedExporter struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewBufferedExporter creates a new BufferedExporter.
func NewBufferedExporter() *BufferedExporter {
	return &BufferedExporter{entries: make([]LogEntry, 0, 16)}
}

// Export adds the entry to the buffer.
func (e *BufferedExporter) Export(ctx context.Context, entry LogEntry) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = append(e.entries, entry)
	return nil
}

// Flush is a no-op; entries are already in memory.
func (e *BufferedExporter) Flush(ctx context.Context) error { return nil }

// Close is a no-op.
func (e *BufferedExporter) Close() error { return nil }

// Entries returns a copy of all collected entries.
func (e *BufferedExporter) Entries() []LogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	result := make([]LogEntry, len(e.entries))
	copy(result, e.entries)
	return result
}
