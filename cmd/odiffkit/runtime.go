package main

import (
	"fmt"

	"github.com/aleister1102/odiffkit/internal/config"
	"github.com/aleister1102/odiffkit/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// loadRuntime loads and validates the configuration named by the persistent
// flags and builds the root logger writing to the command's stderr.
func loadRuntime(cmd *cobra.Command) (*config.GlobalConfig, zerolog.Logger, error) {
	cfg, err := config.LoadGlobalConfig(configPath, zerolog.Nop())
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.LogConfig.LogLevel = logLevel
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("validating config: %w", err)
	}

	l, err := logger.NewLoggerBuilder().
		WithConfig(cfg.LogConfig).
		WithConsoleOutput(cmd.ErrOrStderr()).
		Build()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("creating logger: %w", err)
	}
	return cfg, *l.GetZerolog(), nil
}
