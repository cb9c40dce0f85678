package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "odiffkit",
	Short: "Compare two images with odiff",
	Long: `odiffkit resolves a before and an after image, runs the odiff routine on
them and reports the resulting difference image.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the YAML/JSON configuration file (default: search ODIFFKIT_CONFIG_PATH, cwd, executable dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log_config.log_level")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
