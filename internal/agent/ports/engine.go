package ports

import "context"

// Task is an immutable natural-language prompt submitted to an agent.
type Task string

// String returns the prompt text.
func (t Task) String() string {
	return string(t)
}

// Engine is a reasoning process that turns a task into free-text output,
// possibly calling tools along the way. Implementations own their memory;
// two engines never share conversational state.
type Engine interface {
	// Name identifies the agent for logs and errors.
	Name() string

	// Run blocks until the agent produces its final answer or fails.
	Run(ctx context.Context, task Task) (string, error)
}
