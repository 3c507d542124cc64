package mocks

import (
	"context"

	"solvecheck/internal/agent/ports"
)

// MockToolExecutor records every call and answers with ExecuteFunc, or a
// fixed "mock" result when it is unset.
type MockToolExecutor struct {
	NameValue   string
	Pure        bool
	ExecuteFunc func(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error)

	Calls []ports.ToolCall
}

func (m *MockToolExecutor) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	m.Calls = append(m.Calls, call)
	if m.ExecuteFunc == nil {
		return &ports.ToolResult{CallID: call.ID, Content: "mock"}, nil
	}
	return m.ExecuteFunc(ctx, call)
}

func (m *MockToolExecutor) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        m.toolName(),
		Description: "scripted test tool",
		Parameters:  ports.ParameterSchema{Type: "object", Properties: map[string]ports.Property{}},
	}
}

func (m *MockToolExecutor) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{Name: m.toolName(), Category: "test", Pure: m.Pure}
}

func (m *MockToolExecutor) toolName() string {
	if m.NameValue == "" {
		return "mock_tool"
	}
	return m.NameValue
}
