package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/chrissnell/heartseries/internal/series"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetStorageConfig() (*StorageData, error)
	GetExportConfig() (*ExportData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Input       InputData       `json:"input"`
	Pipeline    PipelineData    `json:"pipeline"`
	Storage     StorageData     `json:"storage,omitempty"`
	Export      ExportData      `json:"export,omitempty"`
	Report      ReportData      `json:"report,omitempty"`
	Controllers ControllersData `json:"controllers,omitempty"`
}

// InputData describes where raw rows come from
type InputData struct {
	Type           string `json:"type,omitempty"`
	Path           string `json:"path,omitempty"`
	Table          string `json:"table,omitempty"`
	TimestampField string `json:"timestamp_field,omitempty"`
	ValueField     string `json:"value_field,omitempty"`
}

// PipelineData holds the segmentation policy knobs
type PipelineData struct {
	Granularity         string `json:"granularity,omitempty"`
	DuplicateTimestamps string `json:"duplicate_timestamps,omitempty"`
}

// StorageData holds the configuration for the cleaned-series sinks.
// More than one can be enabled at once.
type StorageData struct {
	CSV         *CSVData         `json:"csv,omitempty"`
	SQLite      *SQLiteData      `json:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
}

type CSVData struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

type SQLiteData struct {
	Path  string `json:"path"`
	Table string `json:"table,omitempty"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
	Table            string `json:"table,omitempty"`
}

// ExportData holds the configuration for interchange exports
type ExportData struct {
	FHIR *FHIRData `json:"fhir,omitempty"`
}

type FHIRData struct {
	Path    string      `json:"path"`
	Format  string      `json:"format,omitempty"`
	Patient PatientData `json:"patient"`
}

type PatientData struct {
	ID        string `json:"id,omitempty"`
	Family    string `json:"family,omitempty"`
	Given     string `json:"given,omitempty"`
	Gender    string `json:"gender,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
}

// ReportData controls the diagnostic report
type ReportData struct {
	Format    string `json:"format,omitempty"`
	Path      string `json:"path,omitempty"`
	ChartPath string `json:"chart_path,omitempty"`
}

type ControllersData struct {
	RESTServer *RESTServerData `json:"rest,omitempty"`
}

type RESTServerData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port,omitempty"`
}

const (
	InputTypeCSV    = "csv"
	InputTypeSQLite = "sqlite"
)

// ApplyDefaults fills in every unset value that has a sensible default
func (c *ConfigData) ApplyDefaults() {
	if c.Input.Type == "" {
		c.Input.Type = InputTypeCSV
	}
	if c.Input.Type == InputTypeSQLite && c.Input.Table == "" {
		c.Input.Table = "heart_rate_readings"
	}
	if c.Input.TimestampField == "" {
		c.Input.TimestampField = "timestamp"
	}
	if c.Pipeline.Granularity == "" {
		c.Pipeline.Granularity = "1s"
	}
	if c.Pipeline.DuplicateTimestamps == "" {
		c.Pipeline.DuplicateTimestamps = string(series.DuplicateTimestampsKeep)
	}
	if c.Storage.CSV != nil && c.Storage.CSV.Enabled && c.Storage.CSV.Path == "" {
		c.Storage.CSV.Path = CleanedPath(c.Input.Path)
	}
	if c.Storage.SQLite != nil && c.Storage.SQLite.Table == "" {
		c.Storage.SQLite.Table = "cleaned_readings"
	}
	if c.Storage.TimescaleDB != nil && c.Storage.TimescaleDB.Table == "" {
		c.Storage.TimescaleDB.Table = "cleaned_readings"
	}
	if c.Export.FHIR != nil {
		if c.Export.FHIR.Format == "" {
			c.Export.FHIR.Format = "json"
		}
		if c.Export.FHIR.Patient.ID == "" {
			c.Export.FHIR.Patient.ID = "example-patient"
		}
	}
	if c.Report.Format == "" {
		c.Report.Format = "text"
	}
	if c.Controllers.RESTServer != nil {
		if c.Controllers.RESTServer.ListenAddr == "" {
			c.Controllers.RESTServer.ListenAddr = "0.0.0.0"
		}
		if c.Controllers.RESTServer.Port == 0 {
			c.Controllers.RESTServer.Port = 8080
		}
	}
}

// Validate checks enumerated values and required fields
func (c *ConfigData) Validate() error {
	switch c.Input.Type {
	case InputTypeCSV, InputTypeSQLite:
	default:
		return fmt.Errorf("unsupported input type: %s. Use 'csv' or 'sqlite'", c.Input.Type)
	}
	if _, err := c.Options(); err != nil {
		return err
	}
	if c.Storage.SQLite != nil && c.Storage.SQLite.Path == "" {
		return fmt.Errorf("storage.sqlite.path is required")
	}
	if c.Storage.TimescaleDB != nil && c.Storage.TimescaleDB.ConnectionString == "" {
		return fmt.Errorf("storage.timescaledb.connection-string is required")
	}
	if c.Export.FHIR != nil {
		if c.Export.FHIR.Path == "" {
			return fmt.Errorf("export.fhir.path is required")
		}
		if err := validFormat(c.Export.FHIR.Format, "json", "msgpack"); err != nil {
			return fmt.Errorf("export.fhir.format: %w", err)
		}
	}
	if err := validFormat(c.Report.Format, "text", "json", "msgpack"); err != nil {
		return fmt.Errorf("report.format: %w", err)
	}
	return nil
}

// Options converts the input and pipeline sections into pipeline options
func (c *ConfigData) Options() (series.Options, error) {
	opts := series.DefaultOptions()
	if c.Input.TimestampField != "" {
		opts.TimestampField = c.Input.TimestampField
	}
	if c.Input.ValueField != "" {
		opts.ValueFields = []string{c.Input.ValueField}
	}
	if c.Pipeline.Granularity != "" {
		g, err := time.ParseDuration(c.Pipeline.Granularity)
		if err != nil {
			return opts, fmt.Errorf("pipeline.granularity: %w", err)
		}
		if g <= 0 {
			return opts, fmt.Errorf("pipeline.granularity must be positive, got %s", g)
		}
		opts.Granularity = g
	}
	policy, err := series.ParseDuplicateTimestampPolicy(c.Pipeline.DuplicateTimestamps)
	if err != nil {
		return opts, fmt.Errorf("pipeline.duplicate-timestamps: %w", err)
	}
	opts.DuplicateTimestamps = policy
	return opts, nil
}

// CleanedPath derives the default cleaned-output path for an input file:
// readings.csv becomes readings_cleaned.csv
func CleanedPath(input string) string {
	if input == "" {
		return "cleaned.csv"
	}
	ext := filepath.Ext(input)
	if strings.EqualFold(ext, ".csv") {
		return strings.TrimSuffix(input, ext) + "_cleaned" + ext
	}
	return input + "_cleaned.csv"
}

func validFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
