package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	id "solvecheck/internal/utils/id"
)

// Log attribute keys shared by every record that belongs to a run.
const (
	LogKeyRunID     = "run_id"
	LogKeyAgent     = "agent"
	LogKeyLogID     = "log_id"
	LogKeyComponent = "component"
)

// Logger emits structured records. A nil *Logger discards everything.
type Logger struct {
	logger *slog.Logger
}

// LogConfig selects level, encoding and destination.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
	Output io.Writer
}

// ParseLogLevel maps a level name to slog; unknown names fall back to info.
func ParseLogLevel(level string) slog.Level {
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

// NewLogger builds a logger writing to config.Output, or stderr so stdout
// stays reserved for run reports.
func NewLogger(config LogConfig) *Logger {
	output := config.Output
	if output == nil {
		output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLogLevel(config.Level)}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(config.Format), "json") {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return &Logger{logger: slog.New(handler)}
}

// ForRun tags records with the run id, agent and log id carried by ctx.
func (l *Logger) ForRun(ctx context.Context) *Logger {
	if l == nil {
		return nil
	}
	ids := id.IDsFromContext(ctx)
	var attrs []any
	if ids.RunID != "" {
		attrs = append(attrs, LogKeyRunID, ids.RunID)
	}
	if ids.Agent != "" {
		attrs = append(attrs, LogKeyAgent, ids.Agent)
	}
	if ids.LogID != "" {
		attrs = append(attrs, LogKeyLogID, ids.LogID)
	}
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{logger: l.logger.With(args...)}
}

// Enabled reports whether records at level would be written.
func (l *Logger) Enabled(level slog.Level) bool {
	return l != nil && l.logger.Enabled(context.Background(), level)
}

func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

func (l *Logger) log(level slog.Level, msg string, args []any) {
	if l == nil {
		return
	}
	l.logger.Log(context.Background(), level, msg, args...)
}

// MaskSecret keeps enough of a credential to tell keys apart in logs.
func MaskSecret(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	if len(secret) <= 12 {
		return "***"
	}
	return secret[:6] + "..." + secret[len(secret)-4:]
}
