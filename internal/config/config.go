package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/odiffkit/internal/common"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// GlobalConfig is the root of the odiffkit configuration file
type GlobalConfig struct {
	BridgeConfig       BridgeConfig       `json:"bridge_config,omitempty" yaml:"bridge_config,omitempty"`
	DiffConfig         DiffConfig         `json:"diff_config,omitempty" yaml:"diff_config,omitempty"`
	LogConfig          LogConfig          `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	NotificationConfig NotificationConfig `json:"notification_config,omitempty" yaml:"notification_config,omitempty"`
	ResolverConfig     ResolverConfig     `json:"resolver_config,omitempty" yaml:"resolver_config,omitempty"`
	StorageConfig      StorageConfig      `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		BridgeConfig:       NewDefaultBridgeConfig(),
		DiffConfig:         NewDefaultDiffConfig(),
		LogConfig:          NewDefaultLogConfig(),
		NotificationConfig: NewDefaultNotificationConfig(),
		ResolverConfig:     NewDefaultResolverConfig(),
		StorageConfig:      NewDefaultStorageConfig(),
	}
}

// OutputDirectory returns the configured output directory, falling back to
// <user cache dir>/odiffkit, then to the system temp directory.
func (gc *GlobalConfig) OutputDirectory() string {
	if gc.StorageConfig.OutputDir != "" {
		return gc.StorageConfig.OutputDir
	}
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, "odiffkit")
	}
	return filepath.Join(os.TempDir(), "odiffkit")
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is used if the file extension is .yaml or .yml.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		if providedPath != "" {
			return nil, common.NewValidationError("config_file", providedPath, "config file does not exist")
		}
		logger.Debug().Msg("No config file found, using defaults")
		return cfg, nil
	}

	fileManager := common.NewFileManager(logger)
	data, err := fileManager.ReadFile(filePath, common.FileReadOptions{MaxSize: maxConfigFileSize})
	if err != nil {
		return nil, common.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	logger.Debug().Str("path", filePath).Msg("Loaded config file")
	return cfg, nil
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return common.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

// SaveGlobalConfig writes cfg to filePath, as YAML or JSON depending on the extension
func SaveGlobalConfig(cfg *GlobalConfig, filePath string, logger zerolog.Logger) error {
	if cfg == nil {
		return common.NewValidationError("config", cfg, "config cannot be nil")
	}
	if filePath == "" {
		filePath = "config.yaml"
	}

	var data []byte
	var err error

	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return common.NewError("failed to marshal config to YAML: %w", err)
		}
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return common.NewError("failed to marshal config to JSON: %w", err)
		}
	}

	fileManager := common.NewFileManager(logger)
	if err := fileManager.WriteFile(filePath, data, common.DefaultFileWriteOptions()); err != nil {
		return common.WrapError(err, "failed to write config file")
	}

	logger.Info().
		Str("path", filePath).
		Str("format", ext).
		Msg("Successfully saved config file")

	return nil
}
