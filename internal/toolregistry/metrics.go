package toolregistry

import (
	"context"
	"time"

	"solvecheck/internal/agent/ports"
	"solvecheck/internal/logging"
)

// ToolRecorder receives tool execution measurements.
type ToolRecorder interface {
	RecordToolExecution(ctx context.Context, tool, status string, duration time.Duration)
}

// Tool execution outcomes reported to the recorder.
const (
	ToolStatusSuccess  = "success"
	ToolStatusRejected = "rejected"
	ToolStatusError    = "error"
)

type metricsExecutor struct {
	delegate ports.ToolExecutor
	recorder ToolRecorder
	logger   logging.Logger
}

// NewMetricsExecutor wraps delegate so each call reports its outcome and latency.
func NewMetricsExecutor(delegate ports.ToolExecutor, recorder ToolRecorder) ports.ToolExecutor {
	if delegate == nil || recorder == nil {
		return delegate
	}
	return &metricsExecutor{
		delegate: delegate,
		recorder: recorder,
		logger:   logging.NewComponentLogger("ToolMetrics"),
	}
}

func (m *metricsExecutor) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	start := time.Now()
	result, err := m.delegate.Execute(ctx, call)
	duration := time.Since(start)

	status := ToolStatusSuccess
	switch {
	case err != nil:
		status = ToolStatusError
	case result.Failed():
		status = ToolStatusRejected
	}
	name := m.delegate.Definition().Name
	m.recorder.RecordToolExecution(ctx, name, status, duration)
	m.logger.Debug("tool %s finished: status=%s duration=%s", name, status, duration)
	return result, err
}

func (m *metricsExecutor) Definition() ports.ToolDefinition {
	return m.delegate.Definition()
}

func (m *metricsExecutor) Metadata() ports.ToolMetadata {
	return m.delegate.Metadata()
}
