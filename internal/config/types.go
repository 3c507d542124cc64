package config

import (
	"time"

	"solvecheck/internal/observability"
)

// ValueSource describes where the loaded configuration came from.
type ValueSource string

const (
	SourceDefault  ValueSource = "default"
	SourceFile     ValueSource = "file"
	SourceEnv      ValueSource = "environment"
	SourceOverride ValueSource = "override"
)

const (
	DefaultLLMProvider      = "openai"
	DefaultLLMModel         = "gpt-4o"
	DefaultLLMBaseURL       = "https://api.openai.com/v1"
	DefaultLLMTimeout       = 60
	DefaultTemperature      = 0.0
	DefaultMaxTokens        = 1024
	DefaultMaxIterations    = 8
	DefaultMemoryWindow     = 10
	DefaultToolCacheSize    = 128
	DefaultToolCacheTTL     = 10 * time.Minute
	DefaultServerAddr       = ":8080"
	DefaultBatchConcurrency = 4
	DefaultConfigName       = "solvecheck"
	DefaultEnvPrefix        = "SOLVECHECK"
)

// DefaultQuestion is answered when no question is supplied.
const DefaultQuestion = "A stock price increases by 40% on Monday, then decreases by 40% on Tuesday. " +
	"If it started at $100, what is the final price?"

// Config captures every user-configurable setting of the solvecheck binaries.
type Config struct {
	LLM           LLMConfig            `mapstructure:"llm" yaml:"llm"`
	Agent         AgentConfig          `mapstructure:"agent" yaml:"agent"`
	Tools         ToolsConfig          `mapstructure:"tools" yaml:"tools"`
	Server        ServerConfig         `mapstructure:"server" yaml:"server"`
	Batch         BatchConfig          `mapstructure:"batch" yaml:"batch"`
	IDs           IDsConfig            `mapstructure:"ids" yaml:"ids"`
	Observability observability.Config `mapstructure:"observability" yaml:"observability"`
}

// LLMConfig selects and tunes the chat-completions endpoint.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	Model       string  `mapstructure:"model" yaml:"model"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	Timeout     int     `mapstructure:"timeout" yaml:"timeout"` // seconds
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// AgentConfig bounds each agent run.
type AgentConfig struct {
	MaxIterations int `mapstructure:"max_iterations" yaml:"max_iterations"`
	MemoryWindow  int `mapstructure:"memory_window" yaml:"memory_window"`
}

// ToolsConfig controls the result cache in front of pure tools.
type ToolsConfig struct {
	CacheEnabled bool          `mapstructure:"cache_enabled" yaml:"cache_enabled"`
	CacheSize    int           `mapstructure:"cache_size" yaml:"cache_size"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// IDsConfig selects how run, request and call identifiers are generated.
type IDsConfig struct {
	Strategy string `mapstructure:"strategy" yaml:"strategy"` // ksuid, uuidv7
}

// Metadata reports how a Config was assembled.
type Metadata struct {
	ConfigFile string
	sources    map[string]ValueSource
}

// Source returns where the value for key was last set. Keys use the dotted
// form, for example "llm.model".
func (m Metadata) Source(key string) ValueSource {
	if src, ok := m.sources[key]; ok {
		return src
	}
	return SourceDefault
}
