package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/meshgo/hierarchy"
	"github.com/hupe1980/meshgo/mesh"
	"github.com/hupe1980/meshgo/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meshbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30, cfg.Hierarchy.Ratio)
	assert.Equal(t, 5, cfg.Hierarchy.MaxLevels)
	assert.Equal(t, "fast", cfg.Hierarchy.Policy)
	assert.Equal(t, "lz4", cfg.Snapshot.Compression)
	assert.Equal(t, "binary", cfg.Snapshot.Mode)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
points: 500
distribution: sphere
log_format: json
hierarchy:
  ratio: 4
  policy: compact
snapshot:
  uri: mem://
  compression: zstd
  mode: text
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 500, cfg.Points)
	assert.Equal(t, "sphere", cfg.Distribution)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 4, cfg.Hierarchy.Ratio)
	// Unset keys keep their defaults.
	assert.Equal(t, 5, cfg.Hierarchy.MaxLevels)
	assert.Equal(t, 10000, cfg.Queries)

	var ho hierarchy.Options
	cfg.hierarchyOptions(9)(&ho)
	assert.Equal(t, hierarchy.CompactLocation, ho.Policy)
	assert.Equal(t, int64(9), *ho.RandomSeed)

	so := snapshot.ApplyOptions(cfg.snapshotOptions())
	assert.Equal(t, snapshot.CompressionZSTD, so.Compression)
	assert.Equal(t, mesh.Text, so.Mode)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "points: [1, 2"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		fn   func(c *Config)
	}{
		{"negative points", func(c *Config) { c.Points = -1 }},
		{"policy", func(c *Config) { c.Hierarchy.Policy = "slow" }},
		{"mode", func(c *Config) { c.Snapshot.Mode = "xml" }},
		{"compression", func(c *Config) { c.Snapshot.Compression = "brotli" }},
		{"distribution", func(c *Config) { c.Distribution = "gaussian" }},
		{"trials", func(c *Config) { c.Shape.Trials = 0 }},
		{"log format", func(c *Config) { c.LogFormat = "logfmt" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.fn(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := writeConfig(t, `
points: 50
queries: 20
seed: 3
hierarchy:
  ratio: 2
shape:
  trials: 2
  workers: 2
`)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"shape", "--config", path, "--points", "80", "--log-level", "error", "--log-format", "json"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "trials: 2")
	// Level 0 holds every point of the flag value, not the file value.
	assert.Contains(t, out.String(), "80.0")
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"text", "JSON", ""} {
		logger := newLogger(format, "warn")
		require.NotNil(t, logger)
		assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
		assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
	}
	_, isJSON := newLogger("json", "info").Handler().(*slog.JSONHandler)
	assert.True(t, isJSON)
	_, isText := newLogger("text", "info").Handler().(*slog.TextHandler)
	assert.True(t, isText)
}
