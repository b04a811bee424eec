package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigInputFlag(t *testing.T) {
	provider, err := loadConfig("", "data/readings.csv", false)
	require.NoError(t, err)

	cfg, err := provider.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "data/readings.csv", cfg.Input.Path)
	require.True(t, cfg.Storage.CSV.Enabled)
	require.Equal(t, "data/readings_cleaned.csv", cfg.Storage.CSV.Path)
	require.Nil(t, cfg.Controllers.RESTServer)
}

func TestLoadConfigFileWithOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input:
  path: from-file.csv
pipeline:
  granularity: 1ms
report:
  format: json
`), 0o644))

	provider, err := loadConfig(path, "", false)
	require.NoError(t, err)
	cfg, _ := provider.LoadConfig()
	require.Equal(t, "from-file.csv", cfg.Input.Path)
	require.Nil(t, cfg.Storage.CSV)
	require.Equal(t, "json", cfg.Report.Format)

	provider, err = loadConfig(path, "other.csv", false)
	require.NoError(t, err)
	cfg, _ = provider.LoadConfig()
	require.Equal(t, "other.csv", cfg.Input.Path)
}

func TestLoadConfigServe(t *testing.T) {
	provider, err := loadConfig("", "", true)
	require.NoError(t, err)
	cfg, _ := provider.LoadConfig()
	require.Equal(t, 8080, cfg.Controllers.RESTServer.Port)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := loadConfig("", "", false)
	require.Error(t, err)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), "", false)
	require.Error(t, err)
}
