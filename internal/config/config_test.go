// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coauthor-graph/pkg/types"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultLocation, cfg.Source.Location)
	assert.Equal(t, 30*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 5, cfg.Source.MaxRetries)
	assert.Equal(t, 2, cfg.Search.MinQueryLength)
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Equal(t, ":8090", cfg.Server.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.Server.ReloadDebounce)
	assert.Equal(t, "force", cfg.View.Layout)

	assert.Equal(t, "#4CAF50", cfg.View.NodeColors[types.NodeResearcher])
	assert.Equal(t, "#2196F3", cfg.View.NodeColors[types.NodePublication])
	assert.Equal(t, "#FF9800", cfg.View.NodeColors[types.NodePublisher])
	assert.Equal(t, 8, cfg.View.NodeRadius[types.NodeResearcher])
	assert.Equal(t, "#9C27B0", cfg.View.EdgeColors[types.EdgePublisher])
}

func TestInit_ReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coauthor-graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  location: https://example.org/graph.graphml
  max_retries: 2
search:
  max_results: 4
view:
  layout: circle
  node_colors:
    Researcher: "#000000"
log:
  level: debug
`), 0o644))

	t.Setenv("COAUTHOR_GRAPH_SERVER_ADDR", ":9999")
	t.Setenv("COAUTHOR_GRAPH_SOURCE_TIMEOUT", "3s")

	v := viper.New()
	used, err := Init(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://example.org/graph.graphml", cfg.Source.Location)
	assert.Equal(t, 2, cfg.Source.MaxRetries)
	assert.Equal(t, 3*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 4, cfg.Search.MaxResults)
	assert.Equal(t, 2, cfg.Search.MinQueryLength)
	assert.Equal(t, "circle", cfg.View.Layout)
	assert.Equal(t, "#000000", cfg.View.NodeColors[types.NodeResearcher])
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInit_MissingExplicitFile(t *testing.T) {
	v := viper.New()
	_, err := Init(v, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"view.layout": "spiral",
		"log.level":   "loud",
		"log.format":  "xml",
		"server.addr": "",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			v := viper.New()
			for k, d := range defaults {
				v.SetDefault(k, d)
			}
			v.Set(key, val)

			_, err := Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("COAUTHOR_GRAPH_TEST_DOTENV=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("COAUTHOR_GRAPH_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("COAUTHOR_GRAPH_TEST_DOTENV"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(types.LogConfig{Level: "warn", Format: "json"}, &buf)
	log.Info("hidden")
	log.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
