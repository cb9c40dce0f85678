// Package differ invokes the native diff routine on two resolved files and
// produces a difference image at a fresh output path.
package differ

import (
	"context"
	"time"

	"github.com/aleister1102/odiffkit/internal/bridge"
	"github.com/aleister1102/odiffkit/internal/common"
	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/rs/zerolog"
)

// HistoryRecorder persists invocation records. datastore.HistoryStore implements it.
type HistoryRecorder interface {
	RecordInvocation(ctx context.Context, inv models.DiffInvocation) (int64, error)
}

// DiffComputer is the service surface the controller depends on.
type DiffComputer interface {
	ComputeDiff(beforePath, afterPath, outputDir string, options models.DiffOptions) (string, error)
}

// DetailedDiffComputer also reports the diff metrics. Service implements it.
type DetailedDiffComputer interface {
	DiffComputer
	ComputeDiffDetailed(beforePath, afterPath, outputDir string, options models.DiffOptions) (models.DiffResult, error)
}

// Service wraps a NativeDiffBridge. Calls are synchronous and never retried.
type Service struct {
	bridge      bridge.NativeDiffBridge
	paths       PathGenerator
	history     HistoryRecorder
	metrics     *Metrics
	janitor     *Janitor
	fileManager *common.FileManager
	logger      zerolog.Logger
}

// ComputeDiff diffs beforePath against afterPath and returns the path of the
// difference image written in outputDir. A non-zero native status yields a
// *DiffError carrying the code.
func (s *Service) ComputeDiff(beforePath, afterPath, outputDir string, options models.DiffOptions) (string, error) {
	result, err := s.ComputeDiffDetailed(beforePath, afterPath, outputDir, options)
	if err != nil {
		return "", err
	}
	return result.DiffOutputPath, nil
}

// ComputeDiffDetailed is ComputeDiff returning metrics when the bridge can report them.
func (s *Service) ComputeDiffDetailed(beforePath, afterPath, outputDir string, options models.DiffOptions) (models.DiffResult, error) {
	if err := validateInputs(beforePath, afterPath, outputDir); err != nil {
		return models.DiffResult{}, err
	}
	if err := s.fileManager.EnsureDirectory(outputDir, 0755); err != nil {
		return models.DiffResult{}, common.WrapError(err, "failed to prepare output directory")
	}

	outputPath, err := s.paths.Generate(outputDir)
	if err != nil {
		return models.DiffResult{}, err
	}

	var (
		result     models.DiffResult
		code       int32
		hasResults bool
	)
	start := time.Now()
	if rb, ok := s.bridge.(bridge.ResultBridge); ok {
		result, code = rb.DiffWithResults(beforePath, afterPath, outputPath, options)
		hasResults = true
	} else {
		code = s.bridge.Diff(beforePath, afterPath, outputPath, options)
	}
	elapsed := time.Since(start)
	outputExists := s.fileManager.IsRegularFile(outputPath)

	s.record(models.DiffInvocation{
		BeforePath:   beforePath,
		AfterPath:    afterPath,
		OutputPath:   outputPath,
		ResultCode:   code,
		OutputExists: outputExists,
		Duration:     elapsed,
	}, result, hasResults)

	logEvent := s.logger.Debug()
	if code != 0 {
		logEvent = s.logger.Warn()
	}
	logEvent.
		Str("before", beforePath).
		Str("after", afterPath).
		Str("output", outputPath).
		Int32("code", code).
		Str("code_name", bridge.Code(code).String()).
		Dur("duration", elapsed).
		Msg("Native diff returned")

	switch {
	case code != 0:
		s.metrics.observe(outcomeFailure, elapsed)
		return models.DiffResult{}, &DiffError{Code: code, BeforePath: beforePath, AfterPath: afterPath}
	case !outputExists:
		s.metrics.observe(outcomeNoOutput, elapsed)
		return models.DiffResult{}, &MissingOutputError{OutputPath: outputPath}
	}
	s.metrics.observe(outcomeSuccess, elapsed)

	result.DiffOutputPath = outputPath
	if !hasResults {
		result.ResultType = models.ResultTypePixel
	}

	if s.janitor != nil {
		if _, err := s.janitor.Prune(outputDir, outputPath); err != nil {
			s.logger.Warn().Err(err).Str("dir", outputDir).Msg("Failed to prune old diff outputs")
		}
	}
	return result, nil
}

func (s *Service) record(inv models.DiffInvocation, result models.DiffResult, hasResults bool) {
	if s.history == nil {
		return
	}
	if hasResults && inv.ResultCode == 0 {
		r := result
		r.DiffOutputPath = inv.OutputPath
		inv.Result = &r
	}
	if _, err := s.history.RecordInvocation(context.Background(), inv); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record diff invocation")
	}
}

func validateInputs(beforePath, afterPath, outputDir string) error {
	if beforePath == "" {
		return common.NewValidationError("before_path", beforePath, "before path cannot be empty")
	}
	if afterPath == "" {
		return common.NewValidationError("after_path", afterPath, "after path cannot be empty")
	}
	if outputDir == "" {
		return common.NewValidationError("output_dir", outputDir, "output directory cannot be empty")
	}
	return nil
}
