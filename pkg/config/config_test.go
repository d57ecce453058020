package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Greater(t, cfg.Solver.Workers, 0)
	assert.Equal(t, 10000, cfg.Solver.BatchIterations)
	assert.Equal(t, 1000, cfg.Solver.ProgressInterval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "grpc", cfg.Telemetry.Protocol)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Solver.BatchIterations, cfg.Solver.BatchIterations)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sofa-bound.yaml")
	content := `
solver:
  workers: 3
  batch_iterations: 500
log:
  level: debug
telemetry:
  enabled: true
  endpoint: localhost:4317
  protocol: grpc
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Solver.Workers)
	assert.Equal(t, 500, cfg.Solver.BatchIterations)
	assert.Equal(t, Default().Solver.ProgressInterval, cfg.Solver.ProgressInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("solver:\n  workers: -1\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Solver.BatchIterations = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Telemetry.Protocol = "carrier-pigeon"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Telemetry.Protocol = "http"
	assert.NoError(t, cfg.Validate())
}
