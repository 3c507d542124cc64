package logging

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"solvecheck/internal/observability"
)

// Logger defines a minimal, printf-style logging contract.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// contextScoper is implemented by loggers that can tag records with the
// identifiers carried by a context.
type contextScoper interface {
	forContext(ctx context.Context) Logger
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// IsNil reports whether logger is nil or wraps a nil pointer receiver.
func IsNil(logger Logger) bool {
	if logger == nil {
		return true
	}
	val := reflect.ValueOf(logger)
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return val.IsNil()
	default:
		return false
	}
}

// OrNop returns logger when usable, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if IsNil(logger) {
		return Nop()
	}
	return logger
}

// ForContext scopes logger to the run, agent and log id carried by ctx.
// Loggers that cannot carry attributes are returned unchanged.
func ForContext(ctx context.Context, logger Logger) Logger {
	logger = OrNop(logger)
	if ctx == nil {
		return logger
	}
	if scoper, ok := logger.(contextScoper); ok {
		return scoper.forContext(ctx)
	}
	return logger
}

var (
	defaultMu   sync.RWMutex
	defaultBase *observability.Logger
)

// SetDefault installs the structured logger backing NewComponentLogger.
func SetDefault(logger *observability.Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultBase = logger
}

// NewComponentLogger returns the default logger tagged with component.
// Before SetDefault is called it discards everything.
func NewComponentLogger(component string) Logger {
	defaultMu.RLock()
	base := defaultBase
	defaultMu.RUnlock()
	return FromObservabilityWithComponent(base, component)
}

// FromObservabilityWithComponent adapts a structured logger to the printf
// contract. Messages are formatted before they reach the handler.
func FromObservabilityWithComponent(logger *observability.Logger, component string) Logger {
	if logger == nil {
		return Nop()
	}
	if component != "" {
		logger = logger.With(observability.LogKeyComponent, component)
	}
	return &structuredLogger{base: logger}
}

type structuredLogger struct {
	base *observability.Logger
}

func (l *structuredLogger) forContext(ctx context.Context) Logger {
	return &structuredLogger{base: l.base.ForRun(ctx)}
}

func (l *structuredLogger) emit(level slog.Level, format string, args []any) {
	if !l.base.Enabled(level) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	switch level {
	case slog.LevelDebug:
		l.base.Debug(msg)
	case slog.LevelWarn:
		l.base.Warn(msg)
	case slog.LevelError:
		l.base.Error(msg)
	default:
		l.base.Info(msg)
	}
}

func (l *structuredLogger) Debug(format string, args ...any) { l.emit(slog.LevelDebug, format, args) }
func (l *structuredLogger) Info(format string, args ...any)  { l.emit(slog.LevelInfo, format, args) }
func (l *structuredLogger) Warn(format string, args ...any)  { l.emit(slog.LevelWarn, format, args) }
func (l *structuredLogger) Error(format string, args ...any) { l.emit(slog.LevelError, format, args) }

type multiLogger []Logger

// Multi fans every call out to the usable loggers in order.
func Multi(loggers ...Logger) Logger {
	var flattened multiLogger
	for _, logger := range loggers {
		if IsNil(logger) {
			continue
		}
		if nested, ok := logger.(multiLogger); ok {
			flattened = append(flattened, nested...)
			continue
		}
		flattened = append(flattened, logger)
	}
	switch len(flattened) {
	case 0:
		return Nop()
	case 1:
		return flattened[0]
	default:
		return flattened
	}
}

func (m multiLogger) forContext(ctx context.Context) Logger {
	scoped := make(multiLogger, len(m))
	for i, logger := range m {
		scoped[i] = ForContext(ctx, logger)
	}
	return scoped
}

func (m multiLogger) each(fn func(Logger)) {
	for _, logger := range m {
		fn(logger)
	}
}

func (m multiLogger) Debug(format string, args ...any) {
	m.each(func(l Logger) { l.Debug(format, args...) })
}

func (m multiLogger) Info(format string, args ...any) {
	m.each(func(l Logger) { l.Info(format, args...) })
}

func (m multiLogger) Warn(format string, args ...any) {
	m.each(func(l Logger) { l.Warn(format, args...) })
}

func (m multiLogger) Error(format string, args ...any) {
	m.each(func(l Logger) { l.Error(format, args...) })
}
