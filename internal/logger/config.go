package logger

import (
	"github.com/aleister1102/odiffkit/internal/config"
	"github.com/rs/zerolog"
)

// LoggerConfig is the resolved form of config.LogConfig.
type LoggerConfig struct {
	Level         zerolog.Level
	Format        LogFormat
	EnableConsole bool
	EnableFile    bool
	FilePath      string
	MaxSizeMB     int
	MaxBackups    int
	// SessionID places the rotated file under sessions/<id>/ next to FilePath.
	// The mobile binding sets one per session.
	SessionID string
}

// LogFormat selects how records are encoded.
type LogFormat int

const (
	FormatJSON LogFormat = iota
	FormatConsole
	FormatText
)

func (lf LogFormat) String() string {
	switch lf {
	case FormatJSON:
		return "json"
	case FormatConsole:
		return "console"
	case FormatText:
		return "text"
	default:
		return "console"
	}
}

// DefaultLoggerConfig logs at info level to the console only.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:         zerolog.InfoLevel,
		Format:        FormatConsole,
		EnableConsole: true,
		MaxSizeMB:     config.DefaultMaxLogSizeMB,
		MaxBackups:    config.DefaultMaxLogBackups,
	}
}
