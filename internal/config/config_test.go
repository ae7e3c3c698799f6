package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no config.yaml is
// picked up.
func chdirTemp(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Extract.Workers)
	assert.Equal(t, 5, cfg.Extract.TimeoutSecs)
	assert.Equal(t, 50, cfg.Extract.ChunkSize)
	assert.Equal(t, "https://ovh.slgnt.eu/optiext/", cfg.Extract.IframePrefix)
	assert.Equal(t, "data/template_mapping.json", cfg.Extract.TemplateMap)
	assert.Equal(t, "formaudit.db", cfg.Store.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("FORMAUDIT_EXTRACT_WORKERS", "3")
	t.Setenv("FORMAUDIT_STORE_PATH", "/tmp/other.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Extract.Workers)
	assert.Equal(t, "/tmp/other.db", cfg.Store.Path)
}

func TestLoad_ConfigFile(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, os.WriteFile("config.yaml", []byte("extract:\n  workers: 7\nlog:\n  level: debug\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Extract.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 50, cfg.Extract.ChunkSize)
}

func TestWriteDefault(t *testing.T) {
	chdirTemp(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, WriteDefault(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "workers: 10")

	// Refuses to overwrite.
	assert.Error(t, WriteDefault(path))
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
