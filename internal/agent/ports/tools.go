package ports

import (
	"context"
	"encoding/json"
)

// ToolExecutor runs one kind of tool call.
type ToolExecutor interface {
	// Execute runs call. Input the tool rejects is reported through
	// ToolResult.Error; the returned error means the executor itself broke.
	Execute(ctx context.Context, call ToolCall) (*ToolResult, error)
	// Definition is the schema advertised to the model.
	Definition() ToolDefinition
	Metadata() ToolMetadata
}

// ToolRegistry resolves tools by name.
type ToolRegistry interface {
	Register(tool ToolExecutor) error
	Get(name string) (ToolExecutor, error)
	// List returns the definitions of every registered tool.
	List() []ToolDefinition
	Unregister(name string) error
}

// ToolCall is a model's request to run a tool.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	// ArgumentsError is set when the arguments could not be decoded. The
	// call is still dispatched so the failure reaches the model.
	ArgumentsError error `json:"-"`
}

// ToolResult is what a tool call produced. A non-nil Error means the tool
// rejected its input; the text of Error is fed back to the model.
type ToolResult struct {
	CallID   string         `json:"call_id"`
	Content  string         `json:"content"`
	Error    error          `json:"-"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Failed reports whether the tool rejected the call.
func (r *ToolResult) Failed() bool {
	return r != nil && r.Error != nil
}

// MarshalJSON renders Error as its message.
func (r ToolResult) MarshalJSON() ([]byte, error) {
	type plain ToolResult
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(r)}
	if r.Error != nil {
		out.Error = r.Error.Error()
	}
	return json.Marshal(out)
}

// ToolDefinition describes a tool to the model.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  ParameterSchema `json:"parameters"`
}

// ToolMetadata describes a tool to the registry and its decorators.
type ToolMetadata struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	// Dangerous tools have side effects and are never cached.
	Dangerous bool `json:"dangerous"`
	// Pure tools return the same result for the same arguments.
	Pure bool `json:"pure"`
}

// ParameterSchema is the JSON Schema object of a tool's arguments.
type ParameterSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property is one argument in a ParameterSchema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Enum        []any  `json:"enum,omitempty"`
}
