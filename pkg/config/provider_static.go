package config

// StaticProvider serves an in-memory configuration. It backs runs that are
// driven entirely by command-line flags.
type StaticProvider struct {
	config *ConfigData
}

// NewStaticProvider wraps an already-built configuration
func NewStaticProvider(config *ConfigData) *StaticProvider {
	if config == nil {
		config = &ConfigData{}
	}
	return &StaticProvider{config: config}
}

// LoadConfig returns the wrapped configuration
func (s *StaticProvider) LoadConfig() (*ConfigData, error) {
	return s.config, nil
}

// GetStorageConfig returns storage configuration
func (s *StaticProvider) GetStorageConfig() (*StorageData, error) {
	return &s.config.Storage, nil
}

// GetExportConfig returns export configuration
func (s *StaticProvider) GetExportConfig() (*ExportData, error) {
	return &s.config.Export, nil
}

// IsReadOnly returns true; the configuration cannot be persisted
func (s *StaticProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op
func (s *StaticProvider) Close() error {
	return nil
}
