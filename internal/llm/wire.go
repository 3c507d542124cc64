package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"solvecheck/internal/agent/ports"
)

// Wire types of the OpenAI chat completions API.

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
	Tools       []chatTool    `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type chatToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function chatFunctionCall `json:"function"`
}

type chatFunctionCall struct {
	Name string `json:"name"`
	// Arguments is a JSON document encoded as a string.
	Arguments string `json:"arguments"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function chatFunction `json:"function"`
}

type chatFunction struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Parameters  ports.ParameterSchema `json:"parameters"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage ports.TokenUsage `json:"usage"`
	Error *struct {
		Type    string          `json:"type"`
		Message string          `json:"message"`
		Code    json.RawMessage `json:"code"`
	} `json:"error"`
}

var toolNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

func validToolName(name string) bool {
	return toolNamePattern.MatchString(strings.TrimSpace(name))
}

// newChatRequest translates req. Temperature is always sent so a configured
// zero is not replaced by the provider default.
func newChatRequest(model string, req ports.CompletionRequest) chatRequest {
	wire := chatRequest{
		Model:       model,
		Messages:    make([]chatMessage, 0, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
		Stop:        req.StopSequences,
	}
	for _, msg := range req.Messages {
		entry := chatMessage{Role: msg.Role, Content: msg.Content}
		switch msg.Role {
		case ports.RoleAssistant:
			entry.ToolCalls = encodeToolCalls(msg.ToolCalls)
		case ports.RoleTool:
			entry.ToolCallID = msg.ToolCallID
		}
		wire.Messages = append(wire.Messages, entry)
	}
	for _, def := range req.Tools {
		if !validToolName(def.Name) {
			continue
		}
		wire.Tools = append(wire.Tools, chatTool{
			Type:     "function",
			Function: chatFunction{Name: def.Name, Description: def.Description, Parameters: def.Parameters},
		})
	}
	if len(wire.Tools) > 0 {
		wire.ToolChoice = "auto"
	}
	return wire
}

func encodeToolCalls(calls []ports.ToolCall) []chatToolCall {
	var out []chatToolCall
	for _, call := range calls {
		if !validToolName(call.Name) {
			continue
		}
		args := "{}"
		if len(call.Arguments) > 0 {
			if data, err := json.Marshal(call.Arguments); err == nil {
				args = string(data)
			}
		}
		out = append(out, chatToolCall{
			ID:       call.ID,
			Type:     "function",
			Function: chatFunctionCall{Name: call.Name, Arguments: args},
		})
	}
	return out
}

// parseToolArguments decodes the string-encoded arguments of a tool call,
// running truncated or single-quoted payloads through jsonrepair first.
func parseToolArguments(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if json.Unmarshal([]byte(raw), &args) == nil {
		return args, nil
	}
	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return nil, fmt.Errorf("repair tool arguments: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &args); err != nil {
		return nil, fmt.Errorf("decode repaired tool arguments: %w", err)
	}
	return args, nil
}
