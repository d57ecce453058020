package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.applyDefaults()
	assert.Equal(t, "sofa-bound", cfg.ServiceName)
	assert.Equal(t, "unknown", cfg.ServiceVersion)
	assert.Equal(t, "grpc", cfg.Protocol)

	cfg = Config{ServiceName: "custom", Protocol: "http"}
	cfg.applyDefaults()
	assert.Equal(t, "custom", cfg.ServiceName)
	assert.Equal(t, "http", cfg.Protocol)
}

func TestBuildResource(t *testing.T) {
	cfg := Config{ServiceName: "sofa-bound", ServiceVersion: "1.2.3"}
	res, err := buildResource(context.Background(), cfg)
	require.NoError(t, err)

	found := map[string]string{}
	for _, kv := range res.Attributes() {
		found[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "sofa-bound", found["service.name"])
	assert.Equal(t, "1.2.3", found["service.version"])
}

func TestCreateSampler(t *testing.T) {
	always := sdktrace.AlwaysSample().Description()

	assert.Equal(t, always, createSampler(Config{}).Description())
	assert.Equal(t, always, createSampler(Config{SampleRatio: 1}).Description())
	assert.NotEqual(t, always, createSampler(Config{SampleRatio: 0.25}).Description())
}
