package di

import (
	"fmt"

	"solvecheck/internal/agent/ports"
	"solvecheck/internal/agent/react"
	"solvecheck/internal/config"
	"solvecheck/internal/llm"
	"solvecheck/internal/logging"
	"solvecheck/internal/observability"
	"solvecheck/internal/pipeline"
	"solvecheck/internal/prompts"
	"solvecheck/internal/toolregistry"
)

type containerBuilder struct {
	config config.Config
	logger logging.Logger
	llm    ports.LLMClient
	obs    *observability.Observability
	hooks  pipeline.Hooks
}

func newContainerBuilder(cfg config.Config) *containerBuilder {
	return &containerBuilder{
		config: cfg,
		logger: logging.NewComponentLogger("DI"),
	}
}

func (b *containerBuilder) Build() (*Container, error) {
	b.logger.Debug("Building container with model=%s base_url=%s", b.config.LLM.Model, b.config.LLM.BaseURL)

	ownsObs := false
	if b.obs == nil {
		obs, err := observability.New(b.config.Observability)
		if err != nil {
			return nil, fmt.Errorf("init observability: %w", err)
		}
		b.obs = obs
		ownsObs = true
	}

	client, err := b.buildLLMClient()
	if err != nil {
		return nil, err
	}

	tools, err := b.buildToolRegistry()
	if err != nil {
		return nil, err
	}

	worker, err := b.buildWorker(client, tools)
	if err != nil {
		return nil, err
	}
	verifier, err := b.buildVerifier(client)
	if err != nil {
		return nil, err
	}

	var recorder pipeline.Recorder
	if b.obs.Metrics != nil {
		recorder = b.obs.Metrics
	}
	p, err := pipeline.New(pipeline.Config{
		Worker:   worker,
		Verifier: verifier,
		Logger:   b.componentLogger("Pipeline"),
		Metrics:  recorder,
		Tracer:   b.obs.Tracer,
		Hooks:    b.hooks,
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info("Container built successfully")
	return &Container{
		Config:            b.config,
		Pipeline:          p,
		Worker:            worker,
		Verifier:          verifier,
		Tools:             tools,
		LLM:               client,
		Observability:     b.obs,
		ownsObservability: ownsObs,
	}, nil
}

func (b *containerBuilder) buildLLMClient() (ports.LLMClient, error) {
	if b.llm != nil {
		return b.llm, nil
	}
	cfg := llm.Config{
		APIKey:  b.config.LLM.APIKey,
		BaseURL: b.config.LLM.BaseURL,
		Timeout: b.config.LLM.Timeout,
	}
	if b.obs.Metrics != nil {
		cfg.Recorder = b.obs.Metrics
	}
	client, err := llm.NewOpenAIClient(b.config.LLM.Model, cfg)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return client, nil
}

func (b *containerBuilder) buildToolRegistry() (*toolregistry.Registry, error) {
	var cfg toolregistry.Config
	if b.config.Tools.CacheEnabled {
		cfg.Cache = &toolregistry.CacheConfig{
			MaxSize: b.config.Tools.CacheSize,
			TTL:     b.config.Tools.CacheTTL,
		}
	}
	if b.obs.Metrics != nil {
		cfg.Recorder = b.obs.Metrics
	}
	tools, err := toolregistry.NewBuiltinRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("build tool registry: %w", err)
	}
	return tools, nil
}

func (b *containerBuilder) buildWorker(client ports.LLMClient, tools ports.ToolRegistry) (ports.Engine, error) {
	systemPrompt, err := prompts.WorkerSystemPrompt()
	if err != nil {
		return nil, err
	}
	engine, err := react.NewEngine(b.engineConfig(WorkerAgentName, systemPrompt, client, tools))
	if err != nil {
		return nil, err
	}
	return engine, nil
}

// buildVerifier creates the verifying agent. It has no tools so it must
// reason about the answer rather than recompute it mechanically.
func (b *containerBuilder) buildVerifier(client ports.LLMClient) (ports.Engine, error) {
	systemPrompt, err := prompts.VerifierSystemPrompt()
	if err != nil {
		return nil, err
	}
	engine, err := react.NewEngine(b.engineConfig(VerifierAgentName, systemPrompt, client, nil))
	if err != nil {
		return nil, err
	}
	return engine, nil
}

func (b *containerBuilder) engineConfig(name, systemPrompt string, client ports.LLMClient, tools ports.ToolRegistry) react.Config {
	return react.Config{
		Name:          name,
		SystemPrompt:  systemPrompt,
		LLM:           client,
		Tools:         tools,
		MaxIterations: b.config.Agent.MaxIterations,
		MemoryWindow:  b.config.Agent.MemoryWindow,
		Temperature:   b.config.LLM.Temperature,
		MaxTokens:     b.config.LLM.MaxTokens,
		Tracer:        b.obs.Tracer,
		Logger:        b.componentLogger("react/" + name),
	}
}

func (b *containerBuilder) componentLogger(component string) logging.Logger {
	if b.obs != nil && b.obs.Logger != nil {
		return logging.FromObservabilityWithComponent(b.obs.Logger, component)
	}
	return logging.NewComponentLogger(component)
}
