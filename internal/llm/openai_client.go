package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"solvecheck/internal/agent/ports"
	apperrors "solvecheck/internal/errors"
	"solvecheck/internal/httpclient"
	"solvecheck/internal/logging"
	"solvecheck/internal/observability"
	id "solvecheck/internal/utils/id"
)

// Request outcomes reported to the Recorder.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// openaiClient speaks the OpenAI-compatible chat completions API.
type openaiClient struct {
	model            string
	apiKey           string
	endpoint         string
	headers          map[string]string
	maxResponseBytes int64
	http             *http.Client
	recorder         Recorder
	logger           logging.Logger
}

// NewOpenAIClient returns a client sending every request to model.
func NewOpenAIClient(model string, config Config) (ports.LLMClient, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("model is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := httpclient.DefaultTimeout
	if config.Timeout > 0 {
		timeout = time.Duration(config.Timeout) * time.Second
	}
	logger := logging.NewComponentLogger("openai")
	return &openaiClient{
		model:            model,
		apiKey:           config.APIKey,
		endpoint:         baseURL + "/chat/completions",
		headers:          config.Headers,
		maxResponseBytes: config.MaxResponseBytes,
		http:             httpclient.New(timeout, logger),
		recorder:         config.Recorder,
		logger:           logger,
	}, nil
}

func (c *openaiClient) Model() string {
	return c.model
}

func (c *openaiClient) Complete(ctx context.Context, req ports.CompletionRequest) (result *ports.CompletionResponse, err error) {
	started := time.Now()
	defer func() {
		var usage ports.TokenUsage
		status := statusError
		if err == nil && result != nil {
			status, usage = statusSuccess, result.Usage
		}
		if c.recorder != nil {
			c.recorder.RecordLLMRequest(ctx, c.model, status, time.Since(started), usage.PromptTokens, usage.CompletionTokens)
		}
	}()

	requestID := requestIDFrom(req.Metadata)
	logger := logging.ForContext(ctx, c.logger)
	prefix := fmt.Sprintf("[req:%s] ", requestID)

	body, err := json.Marshal(newChatRequest(c.model, req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	logger.Debug("%sPOST %s model=%s key=%s messages=%d tools=%d",
		prefix, c.endpoint, c.model, observability.MaskSecret(c.apiKey), len(req.Messages), len(req.Tools))
	logger.Debug("%srequest body: %s", prefix, body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		logger.Debug("%srequest failed: %v", prefix, err)
		return nil, wrapRequestError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := httpclient.ReadAllWithLimit(resp.Body, c.maxResponseBytes)
	if err != nil {
		if httpclient.IsResponseTooLarge(err) {
			return nil, apperrors.NewPermanentError(err, "LLM response exceeded the configured size limit.")
		}
		return nil, fmt.Errorf("read response: %w", err)
	}
	logger.Debug("%sstatus %d, body: %s", prefix, resp.StatusCode, respBody)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, mapHTTPError(resp.StatusCode, respBody, resp.Header)
	}

	var decoded chatResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if e := decoded.Error; e != nil && e.Message != "" {
		msg := e.Message
		if e.Type != "" {
			msg = e.Type + ": " + msg
		}
		return nil, mapHTTPError(resp.StatusCode, []byte(msg), resp.Header)
	}
	if len(decoded.Choices) == 0 {
		return nil, apperrors.NewTransientError(errors.New("no choices in response"), "LLM returned an empty response. Please retry.")
	}

	choice := decoded.Choices[0]
	result = &ports.CompletionResponse{
		Content:    choice.Message.Content,
		StopReason: choice.FinishReason,
		Usage:      decoded.Usage,
		Metadata:   map[string]any{"request_id": requestID},
	}
	for _, call := range choice.Message.ToolCalls {
		toolCall := ports.ToolCall{ID: call.ID, Name: call.Function.Name}
		args, err := parseToolArguments(call.Function.Arguments)
		if err != nil {
			logger.Warn("%stool call %s (%s) has unreadable arguments: %v", prefix, call.ID, call.Function.Name, err)
			toolCall.ArgumentsError = err
		} else {
			toolCall.Arguments = args
		}
		result.ToolCalls = append(result.ToolCalls, toolCall)
	}

	logger.Debug("%sfinish=%s content=%d chars tool_calls=%d tokens=%d+%d",
		prefix, result.StopReason, len(result.Content), len(result.ToolCalls),
		result.Usage.PromptTokens, result.Usage.CompletionTokens)
	return result, nil
}

// requestIDFrom reuses the id the caller put in metadata, or mints one.
func requestIDFrom(metadata map[string]any) string {
	switch v := metadata["request_id"].(type) {
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	case fmt.Stringer:
		if trimmed := strings.TrimSpace(v.String()); trimmed != "" {
			return trimmed
		}
	}
	return id.NewRequestID()
}
