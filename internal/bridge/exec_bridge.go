package bridge

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/rs/zerolog"
)

// Exit statuses of the odiff command line tool.
const (
	exitMatch      = 0
	exitLayoutDiff = 21
	exitPixelDiff  = 22
)

// codeLaunchFailed is returned when the odiff binary could not be started.
const codeLaunchFailed int32 = -1

var differentPixelsRegex = regexp.MustCompile(`Different pixels:\s*(\d+)\s*\(([\d.]+)%\)`)

// ExecBridge runs the odiff command line tool.
type ExecBridge struct {
	binary string
	logger zerolog.Logger
}

// NewExecBridge creates an ExecBridge for the odiff binary at binary (looked up in PATH when bare).
func NewExecBridge(binary string, logger zerolog.Logger) *ExecBridge {
	if binary == "" {
		binary = "odiff"
	}
	return &ExecBridge{
		binary: binary,
		logger: logger.With().Str("component", "ExecBridge").Logger(),
	}
}

func (b *ExecBridge) Diff(basePath, compPath, outputPath string, options models.DiffOptions) int32 {
	_, code := b.DiffWithResults(basePath, compPath, outputPath, options)
	return code
}

// DiffWithResults runs odiff and maps match, layout diff and pixel diff exits to 0.
// Any other exit status is returned as the code.
func (b *ExecBridge) DiffWithResults(basePath, compPath, outputPath string, options models.DiffOptions) (models.DiffResult, int32) {
	args := buildArgs(basePath, compPath, outputPath, options)
	cmd := exec.Command(b.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	b.logger.Debug().Str("binary", b.binary).Strs("args", args).Msg("Running odiff")
	err := cmd.Run()

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			b.logger.Error().Err(err).Str("binary", b.binary).Msg("Failed to start odiff")
			return models.DiffResult{}, codeLaunchFailed
		}
		exitCode = exitErr.ExitCode()
	}

	switch exitCode {
	case exitMatch:
		return models.DiffResult{ResultType: models.ResultTypePixel, DiffOutputPath: ""}, 0
	case exitLayoutDiff:
		return models.DiffResult{ResultType: models.ResultTypeLayout, DiffOutputPath: outputPath}, 0
	case exitPixelDiff:
		result := parsePixelOutput(stdout.String())
		result.DiffOutputPath = outputPath
		return result, 0
	default:
		b.logger.Warn().
			Int("exit_code", exitCode).
			Str("stderr", strings.TrimSpace(stderr.String())).
			Msg("odiff exited with failure status")
		return models.DiffResult{}, int32(exitCode)
	}
}

func buildArgs(basePath, compPath, outputPath string, options models.DiffOptions) []string {
	args := []string{
		basePath, compPath, outputPath,
		"--threshold=" + strconv.FormatFloat(options.Threshold, 'f', -1, 64),
	}
	if options.Antialiasing {
		args = append(args, "--antialiasing")
	}
	if options.OutputDiffMask {
		args = append(args, "--diff-mask")
	}
	if options.FailOnLayoutChange {
		args = append(args, "--fail-on-layout")
	}
	if options.DiffOverlayFactor > 0 {
		args = append(args, "--diff-overlay="+strconv.FormatFloat(float64(options.DiffOverlayFactor), 'f', -1, 32))
	}
	if options.DiffLines {
		args = append(args, "--output-diff-lines")
	}
	if options.EnableAsm {
		args = append(args, "--enable-asm")
	}
	if len(options.IgnoreRegions) > 0 {
		regions := make([]string, 0, len(options.IgnoreRegions))
		for _, r := range options.IgnoreRegions {
			regions = append(regions, fmt.Sprintf("%d:%d-%d:%d", r.X1, r.Y1, r.X2, r.Y2))
		}
		args = append(args, "--ignore="+strings.Join(regions, ","))
	}
	return args
}

func parsePixelOutput(out string) models.DiffResult {
	result := models.DiffResult{ResultType: models.ResultTypePixel}
	m := differentPixelsRegex.FindStringSubmatch(out)
	if m == nil {
		return result
	}
	if n, err := strconv.ParseInt(m[1], 10, 32); err == nil {
		result.DiffCount = int32(n)
	}
	if p, err := strconv.ParseFloat(m[2], 64); err == nil {
		result.DiffPercentage = p
	}
	return result
}
