package main

import (
	"fmt"

	"github.com/aleister1102/odiffkit/internal/differ"
	"github.com/spf13/cobra"
)

var cleanFlags struct {
	keep      int
	outputDir string
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old difference images from the output directory",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().IntVar(&cleanFlags.keep, "keep", 0, "Number of newest images to keep (default: storage_config.retain_outputs)")
	cleanCmd.Flags().StringVarP(&cleanFlags.outputDir, "output-dir", "o", "", "Directory to clean (overrides storage_config.output_dir)")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.StorageConfig.OutputDir = cleanFlags.outputDir
	}

	keep := cfg.StorageConfig.RetainOutputs
	if cmd.Flags().Changed("keep") {
		keep = cleanFlags.keep
	}
	if keep <= 0 {
		return fmt.Errorf("--keep must be positive, got %d", keep)
	}

	dir := cfg.OutputDirectory()
	removed, err := differ.NewJanitor(cfg.StorageConfig.OutputPrefix, keep, log).Prune(dir, "")
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d difference image(s) from %s\n", removed, dir)
	return err
}
