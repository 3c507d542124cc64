package react

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"solvecheck/internal/agent/ports"
	"solvecheck/internal/logging"
	"solvecheck/internal/observability"
	id "solvecheck/internal/utils/id"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultMaxIterations bounds the think/act cycles of a single run.
const DefaultMaxIterations = 8

// ErrMaxIterations is returned when the agent keeps calling tools without
// producing a final answer.
var ErrMaxIterations = errors.New("max iterations reached without a final answer")

// Config captures the dependencies of an Engine.
type Config struct {
	// Name identifies the agent in logs, spans and errors.
	Name         string
	SystemPrompt string
	LLM          ports.LLMClient
	// Tools may be nil for agents that only reason.
	Tools         ports.ToolRegistry
	MaxIterations int
	// MemoryWindow sizes the sliding window created for every run.
	MemoryWindow int
	Temperature  float64
	MaxTokens    int
	Tracer       *observability.TracerProvider
	Logger       logging.Logger
}

// Engine runs the Think-Act-Observe loop for one agent. Each Run starts with
// fresh memory, so an Engine may serve concurrent runs.
type Engine struct {
	name          string
	systemPrompt  string
	llm           ports.LLMClient
	tools         ports.ToolRegistry
	maxIterations int
	memoryWindow  int
	temperature   float64
	maxTokens     int
	tracer        *observability.TracerProvider
	logger        logging.Logger
}

// NewEngine validates config and builds an Engine.
func NewEngine(config Config) (*Engine, error) {
	if config.LLM == nil {
		return nil, errors.New("react engine requires an LLM client")
	}
	name := strings.TrimSpace(config.Name)
	if name == "" {
		name = "agent"
	}
	maxIterations := config.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	logger := config.Logger
	if logging.IsNil(logger) {
		logger = logging.NewComponentLogger("react/" + name)
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = observability.NoopTracer()
	}
	return &Engine{
		name:          name,
		systemPrompt:  config.SystemPrompt,
		llm:           config.LLM,
		tools:         config.Tools,
		maxIterations: maxIterations,
		memoryWindow:  config.MemoryWindow,
		temperature:   config.Temperature,
		maxTokens:     config.MaxTokens,
		tracer:        tracer,
		logger:        logger,
	}, nil
}

// Name returns the agent name.
func (e *Engine) Name() string {
	return e.name
}

// Run answers task, calling tools as the model requests them.
func (e *Engine) Run(ctx context.Context, task ports.Task) (answer string, err error) {
	ctx = id.WithAgent(ctx, e.name)
	ctx, span := e.tracer.StartSpan(ctx, observability.SpanReactLoop, attribute.String(observability.AttrAgent, e.name))
	defer func() { observability.EndSpan(span, err) }()
	logger := logging.ForContext(ctx, e.logger)

	memory := SlidingWindowMemory(e.memoryWindow)
	memory.Add(ports.Message{Role: ports.RoleUser, Content: task.String()})

	var definitions []ports.ToolDefinition
	if e.tools != nil {
		definitions = e.tools.List()
	}

	logger.Info("starting run: %d tool(s) available", len(definitions))

	for iteration := 1; iteration <= e.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		logger.Debug("=== Iteration %d/%d ===", iteration, e.maxIterations)

		resp, err := e.think(ctx, memory, definitions, iteration)
		if err != nil {
			return "", fmt.Errorf("think step failed: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			logger.Info("final answer after %d iteration(s)", iteration)
			memory.Add(ports.Message{Role: ports.RoleAssistant, Content: resp.Content})
			return resp.Content, nil
		}

		calls := e.assignCallIDs(resp.ToolCalls)
		memory.Add(ports.Message{Role: ports.RoleAssistant, Content: resp.Content, ToolCalls: calls})

		results := e.executeTools(ctx, calls, iteration)
		memory.Add(buildToolMessages(results)...)
	}

	logger.Warn("max iterations (%d) reached", e.maxIterations)
	return "", ErrMaxIterations
}

func (e *Engine) think(ctx context.Context, memory Memory, tools []ports.ToolDefinition, iteration int) (*ports.CompletionResponse, error) {
	ctx, span := e.tracer.StartSpan(ctx, observability.SpanLLMGenerate,
		attribute.String(observability.AttrModel, e.llm.Model()),
		attribute.Int(observability.AttrIteration, iteration),
	)

	messages := make([]ports.Message, 0, memory.Len()+1)
	if e.systemPrompt != "" {
		messages = append(messages, ports.Message{Role: ports.RoleSystem, Content: e.systemPrompt})
	}
	messages = append(messages, memory.Messages()...)

	resp, err := e.llm.Complete(ctx, ports.CompletionRequest{
		Messages:    messages,
		Tools:       tools,
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
		Metadata:    map[string]any{"request_id": id.NewRequestID()},
	})
	if err == nil && resp == nil {
		err = errors.New("LLM returned no response")
	}
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	logging.ForContext(ctx, e.logger).Debug("LLM response: content_length=%d, tool_calls=%d", len(resp.Content), len(resp.ToolCalls))
	return resp, nil
}

func (e *Engine) assignCallIDs(calls []ports.ToolCall) []ports.ToolCall {
	out := make([]ports.ToolCall, len(calls))
	for i, call := range calls {
		if strings.TrimSpace(call.ID) == "" {
			call.ID = id.NewCallID()
		}
		out[i] = call
	}
	return out
}
