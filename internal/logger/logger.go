package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

// Initialize sets up the global logger writing to stdout.
func Initialize(level, format string) {
	InitializeWithWriter(level, format, os.Stdout)
}

// InitializeWithWriter sets up the global logger on an arbitrary writer.
// The operator CLI logs to stderr so that report output on stdout stays clean.
func InitializeWithWriter(level, format string, w io.Writer) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler).With("app", "azoom")

	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	slog.SetDefault(l)
}

// ParseLevel maps a config string onto a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the global logger, initializing a text logger at info level on first use.
func Get() *slog.Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l == nil {
		Initialize("info", "text")
		mu.RLock()
		l = defaultLogger
		mu.RUnlock()
	}
	return l
}

func Debug(msg string, args ...any) { Get().Debug(msg, args...) }
func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }

func DebugContext(ctx context.Context, msg string, args ...any) {
	Get().DebugContext(ctx, msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	Get().InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	Get().WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	Get().ErrorContext(ctx, msg, args...)
}

// WithComponent returns a logger tagged with the owning component (service, job, store).
func WithComponent(name string) *slog.Logger {
	return Get().With("component", name)
}

// EnterMethod logs method entry at debug level.
func EnterMethod(methodName string, args ...any) {
	Get().Debug("→ enter", append([]any{"method", methodName}, args...)...)
}

// ExitMethod logs method exit at debug level.
func ExitMethod(methodName string, args ...any) {
	Get().Debug("← exit", append([]any{"method", methodName}, args...)...)
}

// ExitMethodWithError logs a failed method exit.
func ExitMethodWithError(methodName string, err error, args ...any) {
	Get().Error("← exit with error", append([]any{"method", methodName, "error", err}, args...)...)
}

// StorageCall logs a key/value store operation before it runs.
func StorageCall(operation, key string, args ...any) {
	Get().Debug("→ storage", append([]any{"operation", operation, "key", key}, args...)...)
}

// StorageResult logs the outcome of a key/value store operation.
// Version conflicts are expected under contention and are logged at debug.
func StorageResult(operation, key string, version int64, err error, args ...any) {
	all := append([]any{"operation", operation, "key", key, "version", version}, args...)
	if err != nil {
		Get().Debug("← storage failed", append(all, "error", err)...)
		return
	}
	Get().Debug("← storage ok", all...)
}

// ExternalServiceCall logs a call out to a third-party service.
func ExternalServiceCall(service, operation string, args ...any) {
	Get().Debug("→ external", append([]any{"service", service, "operation", operation}, args...)...)
}

// ExternalServiceResult logs the outcome of a third-party call.
func ExternalServiceResult(service, operation string, err error, args ...any) {
	all := append([]any{"service", service, "operation", operation}, args...)
	if err != nil {
		Get().Error("← external failed", append(all, "error", err)...)
		return
	}
	Get().Debug("← external ok", all...)
}
