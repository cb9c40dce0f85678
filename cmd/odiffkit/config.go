package main

import (
	"fmt"
	"os"

	"github.com/aleister1102/odiffkit/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage odiffkit configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write a configuration file with the default settings",
	Long: `Write the default configuration to a file. The format follows the extension
(.yaml/.yml or .json). Without an argument, config.yaml is created in the
current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a configuration file",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	outputFile := "config.yaml"
	if len(args) > 0 {
		outputFile = args[0]
	}

	if _, err := os.Stat(outputFile); err == nil {
		return fmt.Errorf("configuration file %s already exists", outputFile)
	}

	if err := config.SaveGlobalConfig(config.NewDefaultGlobalConfig(), outputFile, zerolog.Nop()); err != nil {
		return fmt.Errorf("writing %s: %w", outputFile, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", outputFile)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig(args[0], zerolog.Nop())
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("%s is invalid: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", args[0])
	return nil
}
