package differ

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aleister1102/odiffkit/internal/common"
	"github.com/aleister1102/odiffkit/internal/config"
	"github.com/aleister1102/odiffkit/internal/datastore"
	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, b *fakeBridge) *Service {
	t.Helper()
	svc, err := NewService(b, zerolog.Nop())
	require.NoError(t, err)
	return svc
}

func TestBuild_RequiresBridge(t *testing.T) {
	_, err := NewServiceBuilder(zerolog.Nop()).Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestComputeDiff_Success(t *testing.T) {
	dir := t.TempDir()
	b := &fakeBridge{}
	svc := newTestService(t, b)

	opts := models.DefaultDiffOptions()
	path, err := svc.ComputeDiff("/in/before.png", "/in/after.png", dir, opts)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), config.DefaultStorageOutputPrefix))
	assert.True(t, strings.HasSuffix(path, ".png"))
	assert.FileExists(t, path)

	require.Equal(t, 1, b.callCount())
	call := b.calls[0]
	assert.Equal(t, "/in/before.png", call.Base)
	assert.Equal(t, "/in/after.png", call.Comp)
	assert.Equal(t, path, call.Out)
	assert.Equal(t, opts, call.Options)
}

func TestComputeDiff_CreatesOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	svc := newTestService(t, &fakeBridge{})

	path, err := svc.ComputeDiff("/a.png", "/b.png", dir, models.DefaultDiffOptions())
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestComputeDiff_FailureCodeReportedVerbatimWithoutRetry(t *testing.T) {
	for _, code := range []int32{1, 2, 3, 4, 5, 42, -9} {
		b := &fakeBridge{code: code}
		svc := newTestService(t, b)

		path, err := svc.ComputeDiff("/a.png", "/b.png", t.TempDir(), models.DefaultDiffOptions())
		require.Error(t, err)
		assert.Empty(t, path)

		var diffErr *DiffError
		require.True(t, errors.As(err, &diffErr))
		assert.Equal(t, code, diffErr.Code)
		assert.Contains(t, err.Error(), "diff failed with code")
		assert.Equal(t, 1, b.callCount(), "no retries for code %d", code)
	}
}

func TestComputeDiff_MissingOutput(t *testing.T) {
	b := &fakeBridge{skipWriting: true}
	svc := newTestService(t, b)

	_, err := svc.ComputeDiff("/a.png", "/b.png", t.TempDir(), models.DefaultDiffOptions())
	var missing *MissingOutputError
	require.True(t, errors.As(err, &missing))
	assert.NoFileExists(t, missing.OutputPath)
}

func TestComputeDiff_ValidatesInputs(t *testing.T) {
	b := &fakeBridge{}
	svc := newTestService(t, b)
	dir := t.TempDir()

	_, err := svc.ComputeDiff("", "/b.png", dir, models.DefaultDiffOptions())
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = svc.ComputeDiff("/a.png", "", dir, models.DefaultDiffOptions())
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = svc.ComputeDiff("/a.png", "/b.png", "", models.DefaultDiffOptions())
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Equal(t, 0, b.callCount())
}

func TestComputeDiff_DistinctOutputsAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	svc := newTestService(t, &fakeBridge{})

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		path, err := svc.ComputeDiff("/a.png", "/b.png", dir, models.DefaultDiffOptions())
		require.NoError(t, err)
		assert.False(t, seen[path], "output path reused: %s", path)
		seen[path] = true
	}
	for path := range seen {
		assert.FileExists(t, path)
	}
}

func TestComputeDiffDetailed_UsesResultBridge(t *testing.T) {
	rb := &fakeResultBridge{result: models.DiffResult{
		ResultType:     models.ResultTypePixel,
		DiffCount:      9,
		DiffPercentage: 1.5,
		DiffLineCount:  2,
		DiffLines:      []uint32{3, 4},
	}}
	svc, err := NewService(rb, zerolog.Nop())
	require.NoError(t, err)

	result, err := svc.ComputeDiffDetailed("/a.png", "/b.png", t.TempDir(), models.DefaultDiffOptions())
	require.NoError(t, err)
	assert.Equal(t, int32(9), result.DiffCount)
	assert.Equal(t, []uint32{3, 4}, result.DiffLines)
	assert.True(t, result.HasOutput())
	assert.FileExists(t, result.DiffOutputPath)
}

func TestComputeDiff_RecordsHistory(t *testing.T) {
	rec := &fakeRecorder{}
	b := &fakeBridge{}
	svc, err := NewServiceBuilder(zerolog.Nop()).WithBridge(b).WithHistory(rec).Build()
	require.NoError(t, err)
	dir := t.TempDir()

	okPath, err := svc.ComputeDiff("/a.png", "/b.png", dir, models.DefaultDiffOptions())
	require.NoError(t, err)

	b.code = 3
	_, err = svc.ComputeDiff("/a.png", "/c.png", dir, models.DefaultDiffOptions())
	require.Error(t, err)

	require.Len(t, rec.records, 2)
	assert.Equal(t, okPath, rec.records[0].OutputPath)
	assert.True(t, rec.records[0].OutputExists)
	assert.Equal(t, int32(0), rec.records[0].ResultCode)
	assert.Nil(t, rec.records[0].Result)
	assert.Equal(t, int32(3), rec.records[1].ResultCode)
	assert.False(t, rec.records[1].OutputExists)
}

func TestComputeDiff_RecordsHistoryInSQLite(t *testing.T) {
	dir := t.TempDir()
	store, err := datastore.NewHistoryStore(filepath.Join(dir, "history.db"), zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	rb := &fakeResultBridge{result: models.DiffResult{ResultType: models.ResultTypeLayout}}
	svc, err := NewServiceBuilder(zerolog.Nop()).WithBridge(rb).WithHistory(store).Build()
	require.NoError(t, err)

	path, err := svc.ComputeDiff("/a.png", "/b.png", filepath.Join(dir, "out"), models.DefaultDiffOptions())
	require.NoError(t, err)

	entries, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, path, entries[0].OutputPath)
	require.NotNil(t, entries[0].Result)
	assert.Equal(t, models.ResultTypeLayout, entries[0].Result.ResultType)
}

func TestComputeDiff_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	b := &fakeBridge{}
	svc, err := NewServiceBuilder(zerolog.Nop()).WithBridge(b).WithMetrics(metrics).Build()
	require.NoError(t, err)
	dir := t.TempDir()

	_, err = svc.ComputeDiff("/a.png", "/b.png", dir, models.DefaultDiffOptions())
	require.NoError(t, err)
	b.code = 1
	_, _ = svc.ComputeDiff("/a.png", "/b.png", dir, models.DefaultDiffOptions())
	b.code = 0
	b.skipWriting = true
	_, _ = svc.ComputeDiff("/a.png", "/b.png", dir, models.DefaultDiffOptions())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.invocations.WithLabelValues(outcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.invocations.WithLabelValues(outcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.invocations.WithLabelValues(outcomeNoOutput)))

	again, err := NewMetrics(reg)
	require.NoError(t, err)
	assert.Same(t, metrics.invocations, again.invocations)
}

func TestComputeDiff_PrunesWithStorageConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewDefaultStorageConfig()
	cfg.RetainOutputs = 2

	svc, err := NewServiceBuilder(zerolog.Nop()).
		WithBridge(&fakeBridge{}).
		WithStorageConfig(cfg).
		Build()
	require.NoError(t, err)

	var last string
	for i := 0; i < 4; i++ {
		last, err = svc.ComputeDiff("/a.png", "/b.png", dir, models.DefaultDiffOptions())
		require.NoError(t, err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, cfg.OutputPrefix+"*.png"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	assert.FileExists(t, last)
}
