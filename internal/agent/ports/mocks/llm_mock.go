package mocks

import (
	"context"
	"sync"

	"solvecheck/internal/agent/ports"
)

type MockLLMClient struct {
	CompleteFunc func(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error)
	ModelFunc    func() string
}

func (m *MockLLMClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &ports.CompletionResponse{
		Content:    "Mock response",
		StopReason: "stop",
		Usage:      ports.TokenUsage{TotalTokens: 100},
	}, nil
}

func (m *MockLLMClient) Model() string {
	if m.ModelFunc != nil {
		return m.ModelFunc()
	}
	return "mock-model"
}

// ScriptedLLMClient replays responses in order and records every request.
// Once the script is exhausted the last response is repeated.
type ScriptedLLMClient struct {
	mu        sync.Mutex
	Responses []*ports.CompletionResponse
	Err       error
	Requests  []ports.CompletionRequest
}

func (s *ScriptedLLMClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = append(s.Requests, req)
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Responses) == 0 {
		return &ports.CompletionResponse{StopReason: "stop"}, nil
	}
	idx := len(s.Requests) - 1
	if idx >= len(s.Responses) {
		idx = len(s.Responses) - 1
	}
	return s.Responses[idx], nil
}

func (s *ScriptedLLMClient) Model() string {
	return "scripted-model"
}
