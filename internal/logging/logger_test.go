package logging

import (
	"bytes"
	"context"
	"testing"

	"solvecheck/internal/observability"
	id "solvecheck/internal/utils/id"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Debug(format string, args ...any) { r.lines = append(r.lines, "debug") }
func (r *recordingLogger) Info(format string, args ...any)  { r.lines = append(r.lines, "info") }
func (r *recordingLogger) Warn(format string, args ...any)  { r.lines = append(r.lines, "warn") }
func (r *recordingLogger) Error(format string, args ...any) { r.lines = append(r.lines, "error") }

func TestOrNopHandlesTypedNilPointers(t *testing.T) {
	var typed *recordingLogger
	var logger Logger = typed
	if !IsNil(logger) {
		t.Fatalf("expected typed nil pointer to be detected")
	}
	safe := OrNop(logger)
	if IsNil(safe) {
		t.Fatalf("expected OrNop to return a usable logger")
	}
	safe.Info("hello %s", "world") // should not panic
}

func TestFromObservabilityFormatsMessages(t *testing.T) {
	buf := &bytes.Buffer{}
	base := observability.NewLogger(observability.LogConfig{
		Level:  "info",
		Format: "text",
		Output: buf,
	})

	logger := FromObservabilityWithComponent(base, "test")
	logger.Info("hello %s", "world")

	if want := "hello world"; !bytes.Contains(buf.Bytes(), []byte(want)) {
		t.Fatalf("expected %q in output, got %q", want, buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("component=test")) {
		t.Fatalf("expected component attribute, got %q", buf.String())
	}
}

func TestNewComponentLoggerUsesDefault(t *testing.T) {
	buf := &bytes.Buffer{}
	SetDefault(observability.NewLogger(observability.LogConfig{Level: "debug", Output: buf}))
	defer SetDefault(nil)

	NewComponentLogger("pipeline").Debug("stage %d", 1)
	if !bytes.Contains(buf.Bytes(), []byte("stage 1")) {
		t.Fatalf("expected default logger to receive output, got %q", buf.String())
	}
}

func TestMultiFlattensAndSkipsNil(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	var typedNil *recordingLogger

	logger := Multi(a, typedNil, Multi(b))
	logger.Warn("x")

	if len(a.lines) != 1 || len(b.lines) != 1 {
		t.Fatalf("expected both loggers to receive one line, got %v and %v", a.lines, b.lines)
	}
	if _, ok := Multi(nil, typedNil).(nopLogger); !ok {
		t.Fatalf("expected Nop when no usable loggers remain")
	}
}

func TestForContextTagsRunIdentifiers(t *testing.T) {
	buf := &bytes.Buffer{}
	base := observability.NewLogger(observability.LogConfig{Level: "info", Output: buf})
	plain := &recordingLogger{}

	ctx := id.WithAgent(id.WithRunID(context.Background(), "run-7"), "verifier")
	logger := ForContext(ctx, Multi(FromObservabilityWithComponent(base, "pipeline"), plain))
	logger.Info("verdict %s", "ready")

	for _, want := range []string{"verdict ready", "run_id=run-7", "agent=verifier", "component=pipeline"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Fatalf("expected %q in output, got %q", want, buf.String())
		}
	}
	if len(plain.lines) != 1 {
		t.Fatalf("expected plain logger to be passed through, got %v", plain.lines)
	}
	if _, ok := ForContext(ctx, nil).(nopLogger); !ok {
		t.Fatalf("expected Nop for a nil logger")
	}
}

func TestStructuredLoggerSkipsDisabledLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := FromObservabilityWithComponent(observability.NewLogger(observability.LogConfig{Level: "error", Output: buf}), "")
	logger.Warn("quiet %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected no output below error level, got %q", buf.String())
	}
}
