package logger

import (
	"strings"

	"github.com/aleister1102/odiffkit/internal/config"
	"github.com/rs/zerolog"
)

// ConfigConverter maps the log_config section onto a LoggerConfig. Unknown
// levels fall back to info and unknown formats to console; ValidateConfig
// rejects both before a logger is built from a loaded file.
type ConfigConverter struct{}

// NewConfigConverter creates a new config converter
func NewConfigConverter() *ConfigConverter {
	return &ConfigConverter{}
}

// ConvertConfig converts application config to logger config
func (cc *ConfigConverter) ConvertConfig(cfg config.LogConfig) LoggerConfig {
	lc := DefaultLoggerConfig()
	lc.Level = parseLevel(cfg.LogLevel)
	lc.Format = parseFormat(cfg.LogFormat)
	lc.EnableFile = cfg.LogFile != ""
	lc.FilePath = cfg.LogFile
	if cfg.MaxLogSizeMB > 0 {
		lc.MaxSizeMB = cfg.MaxLogSizeMB
	}
	if cfg.MaxLogBackups > 0 {
		lc.MaxBackups = cfg.MaxLogBackups
	}
	return lc
}

func parseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func parseFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatConsole
	}
}
