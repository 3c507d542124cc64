package errors

import (
	"errors"
	"fmt"
)

// ToolExecutionError reports that a tool rejected its input. It is folded
// back into the reasoning loop as a failed tool call instead of aborting it.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	if e.Tool == "" {
		return fmt.Sprintf("tool execution failed: %v", e.Err)
	}
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// NewToolExecutionError wraps the diagnostic produced by a tool.
func NewToolExecutionError(tool string, err error) *ToolExecutionError {
	return &ToolExecutionError{Tool: tool, Err: err}
}

// IsToolExecution reports whether err is (or wraps) a ToolExecutionError.
func IsToolExecution(err error) bool {
	var toolErr *ToolExecutionError
	return errors.As(err, &toolErr)
}

// EngineInvocationError reports that an agent invocation itself failed
// (transport, auth, quota). It is fatal for the run.
type EngineInvocationError struct {
	Stage string
	Agent string
	Err   error
}

func (e *EngineInvocationError) Error() string {
	return fmt.Sprintf("%s invocation failed during %s: %v", e.Agent, e.Stage, e.Err)
}

func (e *EngineInvocationError) Unwrap() error {
	return e.Err
}

// NewEngineInvocationError wraps a reasoning engine failure for the given stage.
func NewEngineInvocationError(stage, agent string, err error) *EngineInvocationError {
	return &EngineInvocationError{Stage: stage, Agent: agent, Err: err}
}

// IsEngineInvocation reports whether err is (or wraps) an EngineInvocationError.
func IsEngineInvocation(err error) bool {
	var engineErr *EngineInvocationError
	return errors.As(err, &engineErr)
}
