package controller

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aleister1102/odiffkit/internal/bridge"
	"github.com/aleister1102/odiffkit/internal/differ"
	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/aleister1102/odiffkit/internal/notifier"
	"github.com/aleister1102/odiffkit/internal/resolver"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// stubNative emulates odiff_diff: it writes a PNG to the output path when it returns 0.
type stubNative struct {
	mu      sync.Mutex
	code    int32
	noWrite bool
	calls   int
	outputs []string
	// gate, when set, blocks every call until it is closed.
	gate chan struct{}
}

func (s *stubNative) Diff(_, _, out string, _ models.DiffOptions) int32 {
	s.mu.Lock()
	s.calls++
	s.outputs = append(s.outputs, out)
	code, noWrite, gate := s.code, s.noWrite, s.gate
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if code == 0 && !noWrite {
		f, err := os.Create(out)
		if err == nil {
			_ = png.Encode(f, image.NewGray(image.Rect(0, 0, 2, 2)))
			_ = f.Close()
		}
	}
	return code
}

func (s *stubNative) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var _ bridge.NativeDiffBridge = (*stubNative)(nil)

// countingDiffer records calls to ComputeDiff.
type countingDiffer struct {
	mu    sync.Mutex
	calls int
}

func (d *countingDiffer) ComputeDiff(_, _, _ string, _ models.DiffOptions) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return "", nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notifier.Message
}

func (r *recordingNotifier) Notify(_ context.Context, msg notifier.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recordingNotifier) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, m.Text)
	}
	return out
}

type fixture struct {
	ctrl     *Controller
	native   *stubNative
	notes    *recordingNotifier
	outDir   string
	before   models.ImageRef
	after    models.ImageRef
	inputDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	inputDir := t.TempDir()
	before := filepath.Join(inputDir, "a.png")
	after := filepath.Join(inputDir, "b.png")
	require.NoError(t, os.WriteFile(before, []byte("a"), 0644))
	require.NoError(t, os.WriteFile(after, []byte("b"), 0644))

	native := &stubNative{}
	svc, err := differ.NewService(native, zerolog.Nop())
	require.NoError(t, err)

	notes := &recordingNotifier{}
	outDir := t.TempDir()
	ctrl, err := NewControllerBuilder(zerolog.Nop()).
		WithResolver(resolver.New(nil, zerolog.Nop())).
		WithDiffer(svc).
		WithOutputDir(outDir).
		WithNotifier(notes).
		Build()
	require.NoError(t, err)

	return &fixture{
		ctrl:     ctrl,
		native:   native,
		notes:    notes,
		outDir:   outDir,
		before:   models.ImageRef(before),
		after:    models.ImageRef(after),
		inputDir: inputDir,
	}
}

type diffFunc func(before, after, outputDir string, opts models.DiffOptions) (string, error)

func (f diffFunc) ComputeDiff(before, after, outputDir string, opts models.DiffOptions) (string, error) {
	return f(before, after, outputDir, opts)
}

func touchFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}
