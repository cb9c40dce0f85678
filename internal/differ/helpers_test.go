package differ

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"
	"testing"

	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/stretchr/testify/require"
)

type bridgeCall struct {
	Base, Comp, Out string
	Options         models.DiffOptions
}

// fakeBridge emulates the native routine: on code 0 it writes a PNG to the output path.
type fakeBridge struct {
	mu          sync.Mutex
	code        int32
	skipWriting bool
	calls       []bridgeCall
}

func (f *fakeBridge) Diff(base, comp, out string, options models.DiffOptions) int32 {
	f.mu.Lock()
	f.calls = append(f.calls, bridgeCall{Base: base, Comp: comp, Out: out, Options: options})
	code, skip := f.code, f.skipWriting
	f.mu.Unlock()

	if code == 0 && !skip {
		_ = writePNG(out)
	}
	return code
}

func (f *fakeBridge) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeResultBridge struct {
	fakeBridge
	result models.DiffResult
}

func (f *fakeResultBridge) DiffWithResults(base, comp, out string, options models.DiffOptions) (models.DiffResult, int32) {
	code := f.Diff(base, comp, out, options)
	if code != 0 {
		return models.DiffResult{}, code
	}
	return f.result, 0
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []models.DiffInvocation
}

func (f *fakeRecorder) RecordInvocation(_ context.Context, inv models.DiffInvocation) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, inv)
	return int64(len(f.records)), nil
}

func writePNG(path string) error {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return png.Encode(f, img)
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}
