package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"solvecheck/internal/observability"
	id "solvecheck/internal/utils/id"
)

// ErrMissingAPIKey is returned by Validate when no credential is configured.
var ErrMissingAPIKey = errors.New("llm api key is not set (export OPENAI_API_KEY or SOLVECHECK_LLM_API_KEY)")

// Overrides carries explicit values, typically from CLI flags. Nil fields
// leave the loaded value untouched.
type Overrides struct {
	Model            *string
	BaseURL          *string
	APIKey           *string
	Temperature      *float64
	MaxIterations    *int
	LogLevel         *string
	ServerAddr       *string
	BatchConcurrency *int
}

type loadOptions struct {
	configFile  string
	searchPaths []string
	overrides   Overrides
}

// Option customises Load.
type Option func(*loadOptions)

// WithConfigFile reads the given file instead of searching for solvecheck.yaml.
// A missing explicit file is an error.
func WithConfigFile(path string) Option {
	return func(o *loadOptions) {
		o.configFile = strings.TrimSpace(path)
	}
}

// WithSearchPaths replaces the directories searched for solvecheck.yaml.
func WithSearchPaths(paths ...string) Option {
	return func(o *loadOptions) {
		o.searchPaths = append([]string(nil), paths...)
	}
}

func WithOverrides(overrides Overrides) Option {
	return func(o *loadOptions) {
		o.overrides = overrides
	}
}

// Load assembles the configuration from defaults, an optional YAML file, the
// environment and explicit overrides, in that order of precedence.
func Load(opts ...Option) (Config, Metadata, error) {
	options := loadOptions{searchPaths: []string{".", "$HOME"}}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	v := viper.New()
	setDefaults(v)
	meta := Metadata{sources: make(map[string]ValueSource)}

	if err := applyFile(v, options, &meta); err != nil {
		return Config{}, Metadata{}, err
	}
	if err := applyEnv(v, &meta); err != nil {
		return Config{}, Metadata{}, err
	}
	applyOverrides(v, options.overrides, &meta)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, Metadata{}, fmt.Errorf("decode config: %w", err)
	}
	normalize(&cfg)
	return cfg, meta, nil
}

// Default returns the configuration Load yields with no file, environment or overrides.
func Default() Config {
	obs := observability.DefaultConfig()
	return Config{
		LLM: LLMConfig{
			Provider:    DefaultLLMProvider,
			Model:       DefaultLLMModel,
			BaseURL:     DefaultLLMBaseURL,
			Timeout:     DefaultLLMTimeout,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Agent: AgentConfig{
			MaxIterations: DefaultMaxIterations,
			MemoryWindow:  DefaultMemoryWindow,
		},
		Tools: ToolsConfig{
			CacheEnabled: true,
			CacheSize:    DefaultToolCacheSize,
			CacheTTL:     DefaultToolCacheTTL,
		},
		Server: ServerConfig{
			Addr:           DefaultServerAddr,
			AllowedOrigins: []string{"*"},
		},
		Batch:         BatchConfig{Concurrency: DefaultBatchConcurrency},
		IDs:           IDsConfig{Strategy: string(id.StrategyKSUID)},
		Observability: obs,
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)

	v.SetDefault("agent.max_iterations", d.Agent.MaxIterations)
	v.SetDefault("agent.memory_window", d.Agent.MemoryWindow)

	v.SetDefault("tools.cache_enabled", d.Tools.CacheEnabled)
	v.SetDefault("tools.cache_size", d.Tools.CacheSize)
	v.SetDefault("tools.cache_ttl", d.Tools.CacheTTL)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("batch.concurrency", d.Batch.Concurrency)
	v.SetDefault("ids.strategy", d.IDs.Strategy)

	obs := d.Observability
	v.SetDefault("observability.logging.level", obs.Logging.Level)
	v.SetDefault("observability.logging.format", obs.Logging.Format)
	v.SetDefault("observability.metrics.enabled", obs.Metrics.Enabled)
	v.SetDefault("observability.metrics.prometheus_port", obs.Metrics.PrometheusPort)
	v.SetDefault("observability.tracing.enabled", obs.Tracing.Enabled)
	v.SetDefault("observability.tracing.exporter", obs.Tracing.Exporter)
	v.SetDefault("observability.tracing.otlp_endpoint", obs.Tracing.OTLPEndpoint)
	v.SetDefault("observability.tracing.zipkin_endpoint", obs.Tracing.ZipkinEndpoint)
	v.SetDefault("observability.tracing.sample_rate", obs.Tracing.SampleRate)
	v.SetDefault("observability.tracing.service_name", obs.Tracing.ServiceName)
	v.SetDefault("observability.tracing.service_version", obs.Tracing.ServiceVersion)
}

func applyFile(v *viper.Viper, options loadOptions, meta *Metadata) error {
	if options.configFile != "" {
		v.SetConfigFile(options.configFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		for _, path := range options.searchPaths {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if options.configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	meta.ConfigFile = v.ConfigFileUsed()
	for _, key := range v.AllKeys() {
		if v.InConfig(key) {
			meta.sources[key] = SourceFile
		}
	}
	return nil
}

func applyEnv(v *viper.Viper, meta *Metadata) error {
	v.SetEnvPrefix(DefaultEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	aliases := DefaultEnvAliases()
	for _, key := range v.AllKeys() {
		names := append([]string{envName(key)}, aliases[key]...)
		if len(names) > 1 {
			if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
				return fmt.Errorf("bind env for %s: %w", key, err)
			}
		}
		for _, name := range names {
			if strings.TrimSpace(os.Getenv(name)) != "" {
				meta.sources[key] = SourceEnv
				break
			}
		}
	}
	return nil
}

func envName(key string) string {
	return DefaultEnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func applyOverrides(v *viper.Viper, overrides Overrides, meta *Metadata) {
	set := func(key string, value any) {
		v.Set(key, value)
		meta.sources[key] = SourceOverride
	}
	if overrides.Model != nil {
		set("llm.model", *overrides.Model)
	}
	if overrides.BaseURL != nil {
		set("llm.base_url", *overrides.BaseURL)
	}
	if overrides.APIKey != nil {
		set("llm.api_key", *overrides.APIKey)
	}
	if overrides.Temperature != nil {
		set("llm.temperature", *overrides.Temperature)
	}
	if overrides.MaxIterations != nil {
		set("agent.max_iterations", *overrides.MaxIterations)
	}
	if overrides.LogLevel != nil {
		set("observability.logging.level", *overrides.LogLevel)
	}
	if overrides.ServerAddr != nil {
		set("server.addr", *overrides.ServerAddr)
	}
	if overrides.BatchConcurrency != nil {
		set("batch.concurrency", *overrides.BatchConcurrency)
	}
}

func normalize(cfg *Config) {
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.LLM.Model = strings.TrimSpace(cfg.LLM.Model)
	cfg.LLM.APIKey = strings.TrimSpace(cfg.LLM.APIKey)
	cfg.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.LLM.BaseURL), "/")
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultLLMBaseURL
	}
	origins := cfg.Server.AllowedOrigins[:0]
	for _, origin := range cfg.Server.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	cfg.Server.AllowedOrigins = origins
}

// Validate reports settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.LLM.APIKey == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if c.LLM.Provider != DefaultLLMProvider {
		errs = append(errs, fmt.Errorf("unsupported llm provider %q", c.LLM.Provider))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm model is empty"))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("llm timeout must be positive, got %d", c.LLM.Timeout))
	}
	if c.Agent.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("agent max_iterations must be positive, got %d", c.Agent.MaxIterations))
	}
	if c.Agent.MemoryWindow <= 0 {
		errs = append(errs, fmt.Errorf("agent memory_window must be positive, got %d", c.Agent.MemoryWindow))
	}
	if c.Batch.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("batch concurrency must be positive, got %d", c.Batch.Concurrency))
	}
	if _, err := id.ParseStrategy(c.IDs.Strategy); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
