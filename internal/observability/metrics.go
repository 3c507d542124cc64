package observability

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsCollector manages all metrics for solvecheck
type MetricsCollector struct {
	meter    metric.Meter
	registry *promclient.Registry
	provider *sdkmetric.MeterProvider

	// Pipeline metrics
	pipelineRuns  metric.Int64Counter
	stageDuration metric.Float64Histogram
	coercions     metric.Int64Counter
	extractions   metric.Int64Counter

	// LLM metrics
	llmRequests     metric.Int64Counter
	llmTokensInput  metric.Int64Counter
	llmTokensOutput metric.Int64Counter
	llmLatency      metric.Float64Histogram

	// Tool metrics
	toolExecutions metric.Int64Counter
	toolDuration   metric.Float64Histogram

	// Server for Prometheus scraping
	prometheusServer *http.Server
}

// MetricsConfig configures the metrics collector
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled" yaml:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port" yaml:"prometheus_port"`
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(config MetricsConfig) (*MetricsCollector, error) {
	if !config.Enabled {
		return &MetricsCollector{}, nil
	}

	// A private registry keeps repeated collectors (tests, batch runs) from
	// colliding on the global Prometheus registerer.
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	meter := provider.Meter("solvecheck")

	collector := &MetricsCollector{meter: meter, registry: registry, provider: provider}

	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
		unit   string
	}{
		{&collector.pipelineRuns, "solvecheck.pipeline.runs.total", "Total number of pipeline runs", "{run}"},
		{&collector.coercions, "solvecheck.coercion.total", "Worker answer coercions by outcome", "{coercion}"},
		{&collector.extractions, "solvecheck.extraction.total", "Verdict extractions by outcome", "{extraction}"},
		{&collector.llmRequests, "solvecheck.llm.requests.total", "Total number of LLM requests", "{request}"},
		{&collector.llmTokensInput, "solvecheck.llm.tokens.input", "Total input tokens sent to LLM", "{token}"},
		{&collector.llmTokensOutput, "solvecheck.llm.tokens.output", "Total output tokens from LLM", "{token}"},
		{&collector.toolExecutions, "solvecheck.tool.executions.total", "Total number of tool executions", "{execution}"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
		*c.target = counter
	}

	histograms := []struct {
		target *metric.Float64Histogram
		name   string
		desc   string
	}{
		{&collector.stageDuration, "solvecheck.pipeline.stage.duration", "Pipeline stage duration in seconds"},
		{&collector.llmLatency, "solvecheck.llm.latency", "LLM request latency in seconds"},
		{&collector.toolDuration, "solvecheck.tool.duration", "Tool execution duration in seconds"},
	}
	for _, h := range histograms {
		histogram, err := meter.Float64Histogram(h.name, metric.WithDescription(h.desc), metric.WithUnit("s"))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s histogram: %w", h.name, err)
		}
		*h.target = histogram
	}

	if config.PrometheusPort > 0 {
		if err := collector.StartPrometheusServer(config.PrometheusPort); err != nil {
			return nil, fmt.Errorf("failed to start prometheus server: %w", err)
		}
	}

	return collector, nil
}

// Handler exposes the collected metrics in the Prometheus text format.
func (m *MetricsCollector) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartPrometheusServer starts the Prometheus metrics server
func (m *MetricsCollector) StartPrometheusServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	m.prometheusServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("Prometheus metrics server listening on :%d", port)
		if err := m.prometheusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Prometheus server error: %v", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the metrics collector
func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	if m.prometheusServer != nil {
		if err := m.prometheusServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	if m.provider != nil {
		return m.provider.Shutdown(ctx)
	}
	return nil
}

// RecordPipelineRun records the outcome of one solve → verify run
func (m *MetricsCollector) RecordPipelineRun(ctx context.Context, status string) {
	if m == nil || m.pipelineRuns == nil {
		return
	}
	m.pipelineRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordStage records how long one pipeline stage took
func (m *MetricsCollector) RecordStage(ctx context.Context, stage string, duration time.Duration) {
	if m == nil || m.stageDuration == nil {
		return
	}
	m.stageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordCoercion records whether the worker output parsed or fell back
func (m *MetricsCollector) RecordCoercion(ctx context.Context, outcome string) {
	if m == nil || m.coercions == nil {
		return
	}
	m.coercions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordExtraction records whether the verifier output normalized or fell back
func (m *MetricsCollector) RecordExtraction(ctx context.Context, outcome string) {
	if m == nil || m.extractions == nil {
		return
	}
	m.extractions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordLLMRequest records an LLM request
func (m *MetricsCollector) RecordLLMRequest(ctx context.Context, model string, status string, latency time.Duration, inputTokens, outputTokens int) {
	if m == nil || m.llmRequests == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("status", status),
	)
	m.llmRequests.Add(ctx, 1, attrs)
	m.llmLatency.Record(ctx, latency.Seconds(), attrs)

	modelAttr := metric.WithAttributes(attribute.String("model", model))
	if inputTokens > 0 {
		m.llmTokensInput.Add(ctx, int64(inputTokens), modelAttr)
	}
	if outputTokens > 0 {
		m.llmTokensOutput.Add(ctx, int64(outputTokens), modelAttr)
	}
}

// RecordToolExecution records a tool execution
func (m *MetricsCollector) RecordToolExecution(ctx context.Context, toolName string, status string, duration time.Duration) {
	if m == nil || m.toolExecutions == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("tool_name", toolName),
		attribute.String("status", status),
	)
	m.toolExecutions.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}
