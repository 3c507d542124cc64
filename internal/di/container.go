package di

import (
	"context"

	"solvecheck/internal/agent/ports"
	"solvecheck/internal/config"
	"solvecheck/internal/observability"
	"solvecheck/internal/pipeline"
	"solvecheck/internal/toolregistry"
)

// Agent names used in logs, spans and errors.
const (
	WorkerAgentName   = "worker"
	VerifierAgentName = "verifier"
)

// Container holds the assembled application.
type Container struct {
	Config        config.Config
	Pipeline      *pipeline.Pipeline
	Worker        ports.Engine
	Verifier      ports.Engine
	Tools         *toolregistry.Registry
	LLM           ports.LLMClient
	Observability *observability.Observability

	ownsObservability bool
}

// Option customises BuildContainer.
type Option func(*containerBuilder)

// WithLLMClient replaces the OpenAI client, mainly for tests.
func WithLLMClient(client ports.LLMClient) Option {
	return func(b *containerBuilder) {
		b.llm = client
	}
}

// WithObservability reuses an existing observability bundle. The container
// will not shut it down.
func WithObservability(obs *observability.Observability) Option {
	return func(b *containerBuilder) {
		b.obs = obs
	}
}

// WithHooks installs pipeline stage hooks.
func WithHooks(hooks pipeline.Hooks) Option {
	return func(b *containerBuilder) {
		b.hooks = hooks
	}
}

// BuildContainer wires the worker and verifier agents into a pipeline.
func BuildContainer(cfg config.Config, opts ...Option) (*Container, error) {
	builder := newContainerBuilder(cfg)
	for _, opt := range opts {
		if opt != nil {
			opt(builder)
		}
	}
	return builder.Build()
}

// Cleanup flushes traces and stops metric exporters the container created.
func (c *Container) Cleanup(ctx context.Context) error {
	if c == nil || !c.ownsObservability {
		return nil
	}
	return c.Observability.Shutdown(ctx)
}
