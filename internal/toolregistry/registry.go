package toolregistry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"solvecheck/internal/agent/ports"
	"solvecheck/internal/tools/builtin"
)

// Registry implements ports.ToolRegistry over an in-memory map.
type Registry struct {
	tools map[string]ports.ToolExecutor
	mu    sync.RWMutex
}

// Config selects the decorators applied to builtin tools.
type Config struct {
	// Cache enables the LRU result cache for pure tools.
	Cache *CacheConfig
	// Recorder receives per-call metrics. Nil disables instrumentation.
	Recorder ToolRecorder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]ports.ToolExecutor)}
}

// NewBuiltinRegistry returns a registry holding the calculate tool wrapped
// with the decorators requested in config.
func NewBuiltinRegistry(config Config) (*Registry, error) {
	r := NewRegistry()
	if err := r.Register(Wrap(builtin.NewCalculate(), config)); err != nil {
		return nil, err
	}
	return r, nil
}

// Wrap applies the configured decorators to tool. Metrics sit outermost so
// cache hits are counted as executions.
func Wrap(tool ports.ToolExecutor, config Config) ports.ToolExecutor {
	wrapped := tool
	if config.Cache != nil {
		wrapped = NewCacheExecutor(wrapped, *config.Cache)
	}
	if config.Recorder != nil {
		wrapped = NewMetricsExecutor(wrapped, config.Recorder)
	}
	return wrapped
}

func (r *Registry) Register(tool ports.ToolExecutor) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	name := strings.TrimSpace(tool.Definition().Name)
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already exists: %s", name)
	}
	r.tools[name] = tool
	return nil
}

func (r *Registry) Get(name string) (ports.ToolExecutor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if tool, ok := r.tools[name]; ok {
		return tool, nil
	}
	return nil, fmt.Errorf("tool not found: %s", name)
}

// List returns definitions sorted by name so prompts stay deterministic.
func (r *Registry) List() []ports.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]ports.ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return fmt.Errorf("tool not found: %s", name)
	}
	delete(r.tools, name)
	return nil
}

var _ ports.ToolRegistry = (*Registry)(nil)
