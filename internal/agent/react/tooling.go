package react

import (
	"context"
	"fmt"
	"strings"

	"solvecheck/internal/agent/ports"
	apperrors "solvecheck/internal/errors"
	"solvecheck/internal/logging"
	"solvecheck/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// executeTools runs calls sequentially. Every call yields a result; unknown
// tools and executor failures become failed results fed back to the model.
func (e *Engine) executeTools(ctx context.Context, calls []ports.ToolCall, iteration int) []ports.ToolResult {
	results := make([]ports.ToolResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, e.executeTool(ctx, call, iteration))
	}
	return results
}

func (e *Engine) executeTool(ctx context.Context, call ports.ToolCall, iteration int) ports.ToolResult {
	ctx, span := e.tracer.StartSpan(ctx, observability.SpanToolExecute,
		attribute.String(observability.AttrToolName, call.Name),
		attribute.Int(observability.AttrIteration, iteration),
	)

	result := e.invoke(ctx, call)
	if result.CallID == "" {
		result.CallID = call.ID
	}
	observability.EndSpan(span, result.Error)

	logger := logging.ForContext(ctx, e.logger)
	if result.Error != nil {
		logger.Warn("tool %s failed: %v", call.Name, result.Error)
	} else {
		logger.Debug("tool %s succeeded: %s", call.Name, result.Content)
	}
	return result
}

func (e *Engine) invoke(ctx context.Context, call ports.ToolCall) ports.ToolResult {
	if call.ArgumentsError != nil {
		return failedResult(call, fmt.Errorf("invalid arguments for %s: %w", call.Name, call.ArgumentsError))
	}
	if e.tools == nil {
		return failedResult(call, fmt.Errorf("tool not available: %s", call.Name))
	}
	tool, err := e.tools.Get(call.Name)
	if err != nil {
		return failedResult(call, err)
	}
	result, err := tool.Execute(ctx, call)
	if err != nil {
		return failedResult(call, err)
	}
	if result == nil {
		return failedResult(call, fmt.Errorf("tool %s returned no result", call.Name))
	}
	return *result
}

func failedResult(call ports.ToolCall, err error) ports.ToolResult {
	if !apperrors.IsToolExecution(err) {
		err = apperrors.NewToolExecutionError(call.Name, err)
	}
	return ports.ToolResult{CallID: call.ID, Content: err.Error(), Error: err}
}

// buildToolMessages converts tool results into messages sent back to the LLM.
func buildToolMessages(results []ports.ToolResult) []ports.Message {
	messages := make([]ports.Message, 0, len(results))
	for _, result := range results {
		var content string
		if result.Error != nil {
			content = fmt.Sprintf("Error: %v", result.Error)
		} else if trimmed := strings.TrimSpace(result.Content); trimmed != "" {
			content = trimmed
		} else {
			content = fmt.Sprintf("Tool %s completed successfully.", result.CallID)
		}
		messages = append(messages, ports.Message{
			Role:       ports.RoleTool,
			Content:    content,
			ToolCallID: result.CallID,
		})
	}
	return messages
}
