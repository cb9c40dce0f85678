package config

// StorageConfig defines where diff outputs and history live
type StorageConfig struct {
	OutputDir     string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	OutputPrefix  string `json:"output_prefix,omitempty" yaml:"output_prefix,omitempty" validate:"required,excludes=/"`
	RetainOutputs int    `json:"retain_outputs" yaml:"retain_outputs" validate:"min=0"`
	HistoryDBPath string `json:"history_db_path,omitempty" yaml:"history_db_path,omitempty"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		OutputDir:     DefaultStorageOutputDir,
		OutputPrefix:  DefaultStorageOutputPrefix,
		RetainOutputs: DefaultStorageRetainOutputs,
		HistoryDBPath: DefaultStorageHistoryDBPath,
	}
}
