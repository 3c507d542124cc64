package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Config gathers the logging, metrics and tracing settings.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// LoggingConfig selects log level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // json, text
}

// DefaultConfig logs warnings as text, serves metrics in-process and leaves
// tracing off.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:        true,
			PrometheusPort: 0,
		},
		Tracing: TracingConfig{
			Enabled:        false,
			Exporter:       "otlp",
			OTLPEndpoint:   "localhost:4318",
			SampleRate:     1.0,
			ServiceName:    "solvecheck",
			ServiceVersion: "0.1.0",
		},
	}
}

// Observability bundles the logger, metrics and tracer built from one Config.
type Observability struct {
	Logger  *Logger
	Metrics *MetricsCollector
	Tracer  *TracerProvider
}

// Option customises New.
type Option func(*options)

type options struct {
	logOutput io.Writer
}

// WithLogOutput sends log records to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// New builds every component config enables. A failure part way releases
// whatever was already started.
func New(config Config, opts ...Option) (*Observability, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	obs := &Observability{
		Logger: NewLogger(LogConfig{Level: config.Logging.Level, Format: config.Logging.Format, Output: o.logOutput}),
	}

	metrics, err := NewMetricsCollector(config.Metrics)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	obs.Metrics = metrics

	tracer, err := NewTracerProvider(config.Tracing)
	if err != nil {
		_ = obs.Shutdown(context.Background())
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	obs.Tracer = tracer
	return obs, nil
}

// Shutdown flushes traces and stops the metrics endpoint.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	return errors.Join(o.Tracer.Shutdown(ctx), o.Metrics.Shutdown(ctx))
}
