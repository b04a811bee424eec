package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrissnell/heartseries/internal/series"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
input:
  type: csv
  path: /data/heart_rate_readings.csv
  value-field: heart_rate
pipeline:
  granularity: 500ms
  duplicate-timestamps: reject
storage:
  csv:
    enabled: true
  sqlite:
    path: /data/readings.db
export:
  fhir:
    path: /data/heart_rate_readings_fhir.json
    patient:
      id: p-1
      family: Doe
      given: John
      gender: male
      birth-date: "1980-01-01"
report:
  format: json
  chart-path: /data/chart.png
controllers:
  rest:
    port: 9090
`

func TestYAMLProviderLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	p := NewYAMLProvider(path)
	cfg, err := p.LoadConfig()
	require.NoError(t, err)
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	require.Equal(t, "/data/heart_rate_readings.csv", cfg.Input.Path)
	require.Equal(t, "/data/heart_rate_readings_cleaned.csv", cfg.Storage.CSV.Path)
	require.Equal(t, "cleaned_readings", cfg.Storage.SQLite.Table)
	require.Nil(t, cfg.Storage.TimescaleDB)
	require.Equal(t, "json", cfg.Export.FHIR.Format)
	require.Equal(t, "1980-01-01", cfg.Export.FHIR.Patient.BirthDate)
	require.Equal(t, "0.0.0.0", cfg.Controllers.RESTServer.ListenAddr)
	require.Equal(t, 9090, cfg.Controllers.RESTServer.Port)
	require.Equal(t, "/data/chart.png", cfg.Report.ChartPath)

	opts, err := cfg.Options()
	require.NoError(t, err)
	require.Equal(t, 500*time.Millisecond, opts.Granularity)
	require.Equal(t, series.DuplicateTimestampsReject, opts.DuplicateTimestamps)
	require.Equal(t, []string{"heart_rate"}, opts.ValueFields)

	storage, err := p.GetStorageConfig()
	require.NoError(t, err)
	require.True(t, storage.CSV.Enabled)
	require.True(t, p.IsReadOnly())
}

func TestYAMLProviderRejectsUnknownKeys(t *testing.T) {
	_, err := ParseYAML([]byte("input:\n  pth: typo.csv\n"))
	require.Error(t, err)
}

func TestYAMLProviderMissingFile(t *testing.T) {
	_, err := NewYAMLProvider(filepath.Join(t.TempDir(), "nope.yaml")).LoadConfig()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ConfigData)
		wantErr bool
	}{
		{"defaults are valid", func(c *ConfigData) {}, false},
		{"unknown input type", func(c *ConfigData) { c.Input.Type = "parquet" }, true},
		{"bad granularity", func(c *ConfigData) { c.Pipeline.Granularity = "soon" }, true},
		{"negative granularity", func(c *ConfigData) { c.Pipeline.Granularity = "-1s" }, true},
		{"unknown policy", func(c *ConfigData) { c.Pipeline.DuplicateTimestamps = "merge" }, true},
		{"sqlite without path", func(c *ConfigData) { c.Storage.SQLite = &SQLiteData{} }, true},
		{"timescaledb without dsn", func(c *ConfigData) { c.Storage.TimescaleDB = &TimescaleDBData{} }, true},
		{"fhir without path", func(c *ConfigData) { c.Export.FHIR = &FHIRData{Format: "json"} }, true},
		{"fhir bad format", func(c *ConfigData) { c.Export.FHIR = &FHIRData{Path: "x", Format: "xml"} }, true},
		{"report bad format", func(c *ConfigData) { c.Report.Format = "html" }, true},
		{"report msgpack", func(c *ConfigData) { c.Report.Format = "msgpack" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &ConfigData{}
			c.ApplyDefaults()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCleanedPath(t *testing.T) {
	require.Equal(t, "a/readings_cleaned.csv", CleanedPath("a/readings.csv"))
	require.Equal(t, "READINGS_cleaned.CSV", CleanedPath("READINGS.CSV"))
	require.Equal(t, "dump.txt_cleaned.csv", CleanedPath("dump.txt"))
	require.Equal(t, "cleaned.csv", CleanedPath(""))
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(&ConfigData{Input: InputData{Path: "x.csv"}})
	cfg, err := p.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "x.csv", cfg.Input.Path)
	exp, err := p.GetExportConfig()
	require.NoError(t, err)
	require.Nil(t, exp.FHIR)
	require.NoError(t, p.Close())
}
