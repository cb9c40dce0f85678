package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aleister1102/odiffkit/internal/config"
	"github.com/aleister1102/odiffkit/internal/controller"
	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/aleister1102/odiffkit/internal/monitor"
	"github.com/aleister1102/odiffkit/internal/orchestrator"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <before> <after>",
	Short: "Recompute the difference image whenever an input changes",
	Long: `Run a diff, then watch both input files and the configuration file. Edits
to an input rerun the diff; edits to diff_config apply to the next run.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	addDiffFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", monitor.DefaultDebounce, "Quiet period before a change triggers a diff")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	applyDiffFlags(cmd, cfg)

	ctx := cmd.Context()
	session, err := orchestrator.NewSession(cfg, orchestrator.SessionOptions{Console: cmd.ErrOrStderr()}, log)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	defer session.Close()

	// content:// references are watched through the file they resolve to.
	inputs := make([]string, 0, len(args))
	for _, arg := range args {
		path, err := session.Resolver.Resolve(ctx, models.ImageRef(arg))
		if err != nil {
			return fmt.Errorf("resolving %s: %w", arg, err)
		}
		inputs = append(inputs, path)
	}

	if path := config.GetConfigPath(configPath); path != "" {
		manager, err := config.NewConfigManager(path, config.ConfigManagerOptions{
			Logger:           log,
			HotReloadEnabled: true,
			ReloadDelay:      config.DefaultConfigReloadDelay,
		})
		if err != nil {
			return fmt.Errorf("watching config: %w", err)
		}
		defer manager.Close()

		if !manager.IsHotReloadEnabled() {
			log.Warn().Str("path", manager.GetConfigPath()).Msg("Config changes will not be picked up")
		}
		manager.OnReload(func(c *config.GlobalConfig) {
			// Flags given on the command line keep precedence over the file.
			applyDiffFlags(cmd, c)
			session.Controller.SetDiffOptions(c.DiffConfig.Options())
			log.Info().Str("path", manager.GetConfigPath()).Msg("Diff options reloaded")
			runOnce(ctx, session, cmd.OutOrStdout(), log)
		})
		manager.StartHotReload(ctx)
	}

	mon, err := monitor.NewInputMonitor(inputs, watchDebounce, log)
	if err != nil {
		return fmt.Errorf("watching inputs: %w", err)
	}
	defer mon.Close()

	session.Controller.SelectBefore(models.ImageRef(args[0]))
	session.Controller.SelectAfter(models.ImageRef(args[1]))
	runOnce(ctx, session, cmd.OutOrStdout(), log)

	return mon.Run(ctx, func(path string) {
		log.Debug().Str("path", path).Msg("Input changed")
		runOnce(ctx, session, cmd.OutOrStdout(), log)
	})
}

// runOnce requests a diff and prints the summary. Failures were already
// reported by the notifier chain; a request overlapping another is skipped.
func runOnce(ctx context.Context, session *orchestrator.Session, out io.Writer, log zerolog.Logger) {
	outcome, err := session.Controller.RequestDiff(ctx)
	if err != nil {
		if errors.Is(err, controller.ErrDiffInFlight) {
			log.Debug().Msg("Skipping change, diff still running")
		}
		return
	}
	rendering, err := session.Presenter.Render(outcome.State.DiffPath)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to render difference image")
	}
	fmt.Fprintln(out, rendering.Describe())
}
