package mocks

import (
	"context"

	"solvecheck/internal/agent/ports"
)

type MockEngine struct {
	NameValue string
	RunFunc   func(ctx context.Context, task ports.Task) (string, error)
	Tasks     []ports.Task
}

func (m *MockEngine) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "mock_agent"
}

func (m *MockEngine) Run(ctx context.Context, task ports.Task) (string, error) {
	m.Tasks = append(m.Tasks, task)
	if m.RunFunc != nil {
		return m.RunFunc(ctx, task)
	}
	return "", nil
}
