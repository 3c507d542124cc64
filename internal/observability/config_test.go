package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "warn", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
	assert.True(t, config.Metrics.Enabled)
	assert.Equal(t, 0, config.Metrics.PrometheusPort)
	assert.False(t, config.Tracing.Enabled)
	assert.Equal(t, "otlp", config.Tracing.Exporter)
	assert.Equal(t, 1.0, config.Tracing.SampleRate)
	assert.Equal(t, "solvecheck", config.Tracing.ServiceName)
}

func TestNewBuildsAllComponents(t *testing.T) {
	obs, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, obs.Logger)
	require.NotNil(t, obs.Metrics)
	require.NotNil(t, obs.Tracer)

	assert.NoError(t, obs.Shutdown(context.Background()))
}

func TestNewHonoursLogOutputAndReportsTracingErrors(t *testing.T) {
	var buf bytes.Buffer
	config := DefaultConfig()
	obs, err := New(config, WithLogOutput(&buf))
	require.NoError(t, err)
	obs.Logger.Warn("routed")
	assert.Contains(t, buf.String(), "routed")
	require.NoError(t, obs.Shutdown(context.Background()))

	config.Tracing = TracingConfig{Enabled: true, Exporter: "carrier-pigeon"}
	_, err = New(config)
	assert.ErrorContains(t, err, "init tracing")
}

func TestNilObservabilityShutdown(t *testing.T) {
	var obs *Observability
	assert.NoError(t, obs.Shutdown(context.Background()))
}
