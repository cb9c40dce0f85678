package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/aleister1102/odiffkit/internal/config"
	"github.com/aleister1102/odiffkit/internal/controller"
	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/aleister1102/odiffkit/internal/orchestrator"
	"github.com/aleister1102/odiffkit/internal/picker"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var diffFlags struct {
	threshold    float64
	antialiasing bool
	diffMask     bool
	failOnLayout bool
	outputDir    string
}

var diffCmd = &cobra.Command{
	Use:   "diff [before] [after]",
	Short: "Compute the difference image of two images",
	Long: `Resolve both references (file paths, file:// or content:// URIs), run odiff
and print a summary of the difference image. A reference left out is read
from standard input; an empty line cancels the pick.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runDiff,
}

func init() {
	addDiffFlags(diffCmd)
	rootCmd.AddCommand(diffCmd)
}

// addDiffFlags registers the option overrides shared by diff and watch.
func addDiffFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&diffFlags.threshold, "threshold", models.DefaultThreshold, "Colour difference threshold passed to odiff")
	f.BoolVar(&diffFlags.antialiasing, "antialiasing", false, "Ignore antialiased pixels")
	f.BoolVar(&diffFlags.diffMask, "diff-mask", false, "Write only the changed pixels")
	f.BoolVar(&diffFlags.failOnLayout, "fail-on-layout", false, "Fail when the images have different dimensions")
	f.StringVarP(&diffFlags.outputDir, "output-dir", "o", "", "Directory for difference images (overrides storage_config.output_dir)")
}

// applyDiffFlags overrides configuration values with the flags the user set.
func applyDiffFlags(cmd *cobra.Command, cfg *config.GlobalConfig) {
	f := cmd.Flags()
	if f.Changed("threshold") {
		cfg.DiffConfig.Threshold = diffFlags.threshold
	}
	if f.Changed("antialiasing") {
		cfg.DiffConfig.Antialiasing = diffFlags.antialiasing
	}
	if f.Changed("diff-mask") {
		cfg.DiffConfig.OutputDiffMask = diffFlags.diffMask
	}
	if f.Changed("fail-on-layout") {
		cfg.DiffConfig.FailOnLayoutChange = diffFlags.failOnLayout
	}
	if f.Changed("output-dir") {
		cfg.StorageConfig.OutputDir = diffFlags.outputDir
	}
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	applyDiffFlags(cmd, cfg)

	session, err := orchestrator.NewSession(cfg, orchestrator.SessionOptions{Console: cmd.ErrOrStderr()}, log)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	defer session.Close()

	if err := pickInputs(cmd.Context(), session.Controller, args, cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
		return err
	}

	outcome, err := session.Controller.RequestDiff(cmd.Context())
	if err != nil {
		return err
	}

	rendering, err := session.Presenter.Render(outcome.State.DiffPath)
	if err != nil {
		log.Warn().Err(err).Str("path", outcome.State.DiffPath).Msg("Failed to render difference image")
	}
	fmt.Fprintln(cmd.OutOrStdout(), rendering.Describe())
	if r := outcome.Result; r != nil && r.DiffCount > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Different pixels: %s (%.2f%%)\n", humanize.Comma(int64(r.DiffCount)), r.DiffPercentage)
	}
	return nil
}

// pickInputs selects the before and after images. Positional arguments are
// taken as given; the missing ones are prompted for on in.
func pickInputs(ctx context.Context, ctrl *controller.Controller, args []string, in io.Reader, prompt io.Writer) error {
	// Both prompts share one buffered reader so the first does not swallow the second line.
	stdin := bufio.NewReader(in)
	pickerFor := func(i int, label string) picker.Picker {
		if i < len(args) {
			return picker.NewStatic(models.ImageRef(args[i]))
		}
		return picker.NewPrompt(label, stdin, prompt)
	}

	if _, err := ctrl.PickBefore(ctx, pickerFor(0, "Before image")); err != nil {
		return fmt.Errorf("picking before image: %w", err)
	}
	if _, err := ctrl.PickAfter(ctx, pickerFor(1, "After image")); err != nil {
		return fmt.Errorf("picking after image: %w", err)
	}
	return nil
}
