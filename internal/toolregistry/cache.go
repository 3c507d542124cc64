package toolregistry

import (
	"context"
	"encoding/json"
	"maps"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"solvecheck/internal/agent/ports"
)

// CacheConfig bounds the result cache placed in front of pure tools.
type CacheConfig struct {
	MaxSize int
	TTL     time.Duration
	// ExcludeTools are never cached even when they declare themselves pure.
	ExcludeTools []string
}

// DefaultCacheConfig returns the limits used when configuration leaves them unset.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{MaxSize: 256, TTL: 5 * time.Minute}
}

type cachedResult struct {
	content  string
	metadata map[string]any
	expires  time.Time
}

// cacheExecutor memoises successful results of a pure tool by its
// normalised arguments. Concurrent identical calls share one execution.
type cacheExecutor struct {
	ports.ToolExecutor

	entries  *lru.Cache[string, cachedResult]
	inflight singleflight.Group
	ttl      time.Duration
	excluded map[string]struct{}
	now      func() time.Time
}

// NewCacheExecutor wraps delegate with an LRU result cache. Zero limits take
// the DefaultCacheConfig values.
func NewCacheExecutor(delegate ports.ToolExecutor, config CacheConfig) ports.ToolExecutor {
	return newCacheExecutor(delegate, config, time.Now)
}

func newCacheExecutor(delegate ports.ToolExecutor, config CacheConfig, now func() time.Time) ports.ToolExecutor {
	if delegate == nil {
		return nil
	}
	defaults := DefaultCacheConfig()
	if config.MaxSize <= 0 {
		config.MaxSize = defaults.MaxSize
	}
	if config.TTL <= 0 {
		config.TTL = defaults.TTL
	}
	entries, err := lru.New[string, cachedResult](config.MaxSize)
	if err != nil {
		return delegate
	}
	excluded := make(map[string]struct{}, len(config.ExcludeTools))
	for _, name := range config.ExcludeTools {
		excluded[strings.TrimSpace(name)] = struct{}{}
	}
	return &cacheExecutor{
		ToolExecutor: delegate,
		entries:      entries,
		ttl:          config.TTL,
		excluded:     excluded,
		now:          now,
	}
}

func (c *cacheExecutor) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	key, ok := c.key(call)
	if !ok {
		return c.ToolExecutor.Execute(ctx, call)
	}
	if hit, found := c.lookup(key); found {
		return hit.toResult(call.ID), nil
	}

	var (
		live     *ports.ToolResult
		executed bool
	)
	shared, err, _ := c.inflight.Do(key, func() (any, error) {
		result, err := c.ToolExecutor.Execute(ctx, call)
		live, executed = result, true
		if err != nil || result == nil || result.Failed() {
			return nil, err
		}
		entry := cachedResult{
			content:  result.Content,
			metadata: maps.Clone(result.Metadata),
			expires:  c.now().Add(c.ttl),
		}
		c.entries.Add(key, entry)
		return entry, nil
	})
	if executed {
		return live, err
	}
	if entry, ok := shared.(cachedResult); ok && err == nil {
		return entry.toResult(call.ID), nil
	}
	// A concurrent caller's execution failed; run this call on its own.
	return c.ToolExecutor.Execute(ctx, call)
}

func (c *cacheExecutor) lookup(key string) (cachedResult, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return cachedResult{}, false
	}
	if !c.now().Before(entry.expires) {
		c.entries.Remove(key)
		return cachedResult{}, false
	}
	return entry, true
}

// key derives the cache key, or reports false when the call must bypass the cache.
func (c *cacheExecutor) key(call ports.ToolCall) (string, bool) {
	meta := c.Metadata()
	if !meta.Pure || meta.Dangerous {
		return "", false
	}
	name := strings.TrimSpace(call.Name)
	if name == "" {
		name = strings.TrimSpace(meta.Name)
	}
	if _, skip := c.excluded[name]; skip {
		return "", false
	}
	// encoding/json sorts map keys, so equal argument sets encode identically.
	args, err := json.Marshal(trimStrings(call.Arguments))
	if err != nil {
		return "", false
	}
	return name + ":" + string(args), true
}

// Len reports the number of cached entries.
func (c *cacheExecutor) Len() int {
	return c.entries.Len()
}

func (e cachedResult) toResult(callID string) *ports.ToolResult {
	return &ports.ToolResult{CallID: callID, Content: e.content, Metadata: maps.Clone(e.metadata)}
}

// trimStrings strips surrounding whitespace from string arguments so
// "1+1" and " 1+1 " share an entry.
func trimStrings(args map[string]any) map[string]any {
	if len(args) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		switch val := v.(type) {
		case string:
			out[k] = strings.TrimSpace(val)
		case map[string]any:
			out[k] = trimStrings(val)
		default:
			out[k] = val
		}
	}
	return out
}

var _ ports.ToolExecutor = (*cacheExecutor)(nil)
