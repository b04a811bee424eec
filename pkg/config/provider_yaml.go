package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}

	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseYAML(cfgFile)
	if err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

// ParseYAML decodes a YAML document into ConfigData. Defaults are not
// applied here; callers decide when overrides are complete.
func ParseYAML(data []byte) (*ConfigData, error) {
	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Input       InputYAML       `yaml:"input"`
		Pipeline    PipelineYAML    `yaml:"pipeline,omitempty"`
		Storage     StorageYAML     `yaml:"storage,omitempty"`
		Export      ExportYAML      `yaml:"export,omitempty"`
		Report      ReportYAML      `yaml:"report,omitempty"`
		Controllers ControllersYAML `yaml:"controllers,omitempty"`
	}

	if err := yaml.UnmarshalStrict(data, &yamlConfig); err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Input: InputData{
			Type:           yamlConfig.Input.Type,
			Path:           yamlConfig.Input.Path,
			Table:          yamlConfig.Input.Table,
			TimestampField: yamlConfig.Input.TimestampField,
			ValueField:     yamlConfig.Input.ValueField,
		},
		Pipeline: PipelineData{
			Granularity:         yamlConfig.Pipeline.Granularity,
			DuplicateTimestamps: yamlConfig.Pipeline.DuplicateTimestamps,
		},
		Report: ReportData{
			Format:    yamlConfig.Report.Format,
			Path:      yamlConfig.Report.Path,
			ChartPath: yamlConfig.Report.ChartPath,
		},
	}

	// Convert storage
	if yamlConfig.Storage.CSV != nil {
		config.Storage.CSV = &CSVData{
			Enabled: yamlConfig.Storage.CSV.Enabled,
			Path:    yamlConfig.Storage.CSV.Path,
		}
	}
	if yamlConfig.Storage.SQLite != nil {
		config.Storage.SQLite = &SQLiteData{
			Path:  yamlConfig.Storage.SQLite.Path,
			Table: yamlConfig.Storage.SQLite.Table,
		}
	}
	if yamlConfig.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.Storage.TimescaleDB.ConnectionString,
			Table:            yamlConfig.Storage.TimescaleDB.Table,
		}
	}

	// Convert export
	if f := yamlConfig.Export.FHIR; f != nil {
		config.Export.FHIR = &FHIRData{
			Path:   f.Path,
			Format: f.Format,
			Patient: PatientData{
				ID:        f.Patient.ID,
				Family:    f.Patient.Family,
				Given:     f.Patient.Given,
				Gender:    f.Patient.Gender,
				BirthDate: f.Patient.BirthDate,
			},
		}
	}

	// Convert controllers
	if r := yamlConfig.Controllers.RESTServer; r != nil {
		config.Controllers.RESTServer = &RESTServerData{
			ListenAddr: r.ListenAddr,
			Port:       r.Port,
		}
	}

	return config, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Storage, nil
}

// GetExportConfig returns export configuration
func (y *YAMLProvider) GetExportConfig() (*ExportData, error) {
	config, err := y.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Export, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags
type InputYAML struct {
	Type           string `yaml:"type,omitempty"`
	Path           string `yaml:"path,omitempty"`
	Table          string `yaml:"table,omitempty"`
	TimestampField string `yaml:"timestamp-field,omitempty"`
	ValueField     string `yaml:"value-field,omitempty"`
}

type PipelineYAML struct {
	Granularity         string `yaml:"granularity,omitempty"`
	DuplicateTimestamps string `yaml:"duplicate-timestamps,omitempty"`
}

type StorageYAML struct {
	CSV         *CSVYAML         `yaml:"csv,omitempty"`
	SQLite      *SQLiteYAML      `yaml:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBYAML `yaml:"timescaledb,omitempty"`
}

type CSVYAML struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

type SQLiteYAML struct {
	Path  string `yaml:"path"`
	Table string `yaml:"table,omitempty"`
}

type TimescaleDBYAML struct {
	ConnectionString string `yaml:"connection-string"`
	Table            string `yaml:"table,omitempty"`
}

type ExportYAML struct {
	FHIR *FHIRYAML `yaml:"fhir,omitempty"`
}

type FHIRYAML struct {
	Path    string      `yaml:"path"`
	Format  string      `yaml:"format,omitempty"`
	Patient PatientYAML `yaml:"patient,omitempty"`
}

type PatientYAML struct {
	ID        string `yaml:"id,omitempty"`
	Family    string `yaml:"family,omitempty"`
	Given     string `yaml:"given,omitempty"`
	Gender    string `yaml:"gender,omitempty"`
	BirthDate string `yaml:"birth-date,omitempty"`
}

type ReportYAML struct {
	Format    string `yaml:"format,omitempty"`
	Path      string `yaml:"path,omitempty"`
	ChartPath string `yaml:"chart-path,omitempty"`
}

type ControllersYAML struct {
	RESTServer *RESTServerYAML `yaml:"rest,omitempty"`
}

type RESTServerYAML struct {
	ListenAddr string `yaml:"listen-addr,omitempty"`
	Port       int    `yaml:"port,omitempty"`
}
