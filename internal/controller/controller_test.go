package controller

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/odiffkit/internal/common"
	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/aleister1102/odiffkit/internal/notifier"
	"github.com/aleister1102/odiffkit/internal/picker"
	"github.com/aleister1102/odiffkit/internal/platform"
	"github.com/aleister1102/odiffkit/internal/resolver"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Validation(t *testing.T) {
	_, err := NewControllerBuilder(zerolog.Nop()).Build()
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = NewControllerBuilder(zerolog.Nop()).
		WithResolver(resolver.New(nil, zerolog.Nop())).
		WithDiffer(&countingDiffer{}).
		Build()
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestInitialState(t *testing.T) {
	f := newFixture(t)
	s := f.ctrl.State()
	assert.Equal(t, ViewSelecting, s.View)
	assert.True(t, s.Before.IsEmpty())
	assert.True(t, s.After.IsEmpty())
	assert.Empty(t, s.DiffPath)
}

func TestSelections_LastWriteWins(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		var wantBefore, wantAfter models.ImageRef = f.ctrl.State().Before, f.ctrl.State().After
		steps := rng.Intn(10) + 1
		for i := 0; i < steps; i++ {
			ref := models.ImageRef(filepath.Join("/img", string(rune('a'+rng.Intn(26)))+".png"))
			if rng.Intn(2) == 0 {
				f.ctrl.SelectBefore(ref)
				wantBefore = ref
			} else {
				f.ctrl.SelectAfter(ref)
				wantAfter = ref
			}
		}
		s := f.ctrl.State()
		require.Equal(t, wantBefore, s.Before)
		require.Equal(t, wantAfter, s.After)
		require.Equal(t, ViewSelecting, s.View)
	}
}

func TestRequestDiff_Success(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SelectBefore(f.before)
	f.ctrl.SelectAfter(f.after)

	o, err := f.ctrl.RequestDiff(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePresented, o.Kind)

	s := f.ctrl.State()
	assert.Equal(t, ViewPresenting, s.View)
	require.NotEmpty(t, s.DiffPath)
	assert.Equal(t, f.native.outputs[0], s.DiffPath)
	assert.Equal(t, f.outDir, filepath.Dir(s.DiffPath))
	assert.FileExists(t, s.DiffPath)
	assert.Equal(t, s, o.State)
	assert.Equal(t, []string{notifier.TextDiffReady}, f.notes.texts())
}

func TestRequestDiff_MissingSelectionNeverInvokesService(t *testing.T) {
	cases := []struct {
		name          string
		before, after models.ImageRef
	}{
		{"neither", "", ""},
		{"only before", "/tmp/a.png", ""},
		{"only after", "", "/tmp/b.png"},
		{"blank before", "  ", "/tmp/b.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := &countingDiffer{}
			notes := &recordingNotifier{}
			ctrl, err := NewControllerBuilder(zerolog.Nop()).
				WithResolver(resolver.New(nil, zerolog.Nop())).
				WithDiffer(d).
				WithOutputDir(t.TempDir()).
				WithNotifier(notes).
				Build()
			require.NoError(t, err)

			ctrl.SelectBefore(tc.before)
			ctrl.SelectAfter(tc.after)
			beforeState := ctrl.State()

			o, err := ctrl.RequestDiff(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingSelection)
			var guard *GuardError
			require.True(t, errors.As(err, &guard))
			assert.Equal(t, tc.before.IsEmpty(), guard.MissingBefore)
			assert.Equal(t, tc.after.IsEmpty(), guard.MissingAfter)

			assert.Equal(t, OutcomeMissingSelection, o.Kind)
			assert.Equal(t, beforeState, ctrl.State())
			assert.Equal(t, ViewSelecting, ctrl.State().View)
			assert.Zero(t, d.calls)
			assert.Equal(t, []string{"Please select both images"}, notes.texts())
		})
	}
}

func TestRequestDiff_ResolutionFailed(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SelectBefore(f.before)
	f.ctrl.SelectAfter(models.ImageRef(filepath.Join(f.inputDir, "gone.png")))
	beforeState := f.ctrl.State()

	o, err := f.ctrl.RequestDiff(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, OutcomeResolutionFailed, o.Kind)
	assert.Equal(t, beforeState, f.ctrl.State())
	assert.Zero(t, f.native.callCount())
	assert.Equal(t, []string{"Unable to get file paths"}, f.notes.texts())
}

func TestRequestDiff_ContentReferenceWithoutIndex(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SelectBefore("content://media/external/images/media/1")
	f.ctrl.SelectAfter(f.after)

	o, err := f.ctrl.RequestDiff(context.Background())
	require.Error(t, err)
	assert.Equal(t, OutcomeResolutionFailed, o.Kind)
	assert.Zero(t, f.native.callCount())
}

func TestRequestDiff_NonZeroCodeSurfacedUnchanged(t *testing.T) {
	for _, code := range []int32{1, 2, 3, 4, 5, 21, 255, -1} {
		f := newFixture(t)
		f.native.code = code
		f.ctrl.SelectBefore(f.before)
		f.ctrl.SelectAfter(f.after)
		beforeState := f.ctrl.State()

		o, err := f.ctrl.RequestDiff(context.Background())
		require.Error(t, err)
		assert.Equal(t, OutcomeDiffFailed, o.Kind)
		assert.Equal(t, code, o.Code)
		assert.Equal(t, beforeState, f.ctrl.State())
		assert.Equal(t, ViewSelecting, f.ctrl.State().View)
		assert.Equal(t, 1, f.native.callCount())
		assert.Equal(t, []string{notifier.DiffFailed(code).Text}, f.notes.texts())
	}
}

func TestScenario_NativeReturnsTwo(t *testing.T) {
	f := newFixture(t)
	f.native.code = 2
	f.ctrl.SelectBefore(f.before)
	f.ctrl.SelectAfter(f.after)

	o, err := f.ctrl.RequestDiff(context.Background())
	require.Error(t, err)
	assert.Equal(t, OutcomeDiffFailed, o.Kind)
	assert.Equal(t, int32(2), o.Code)
	assert.Equal(t, ViewSelecting, f.ctrl.State().View)
	assert.Equal(t, []string{"Diff failed with code 2"}, f.notes.texts())
}

func TestRequestDiff_IdenticalImagesPresentGeneratedPath(t *testing.T) {
	f := newFixture(t)
	f.native.noWrite = true
	f.ctrl.SelectBefore(f.before)
	f.ctrl.SelectAfter(f.after)

	o, err := f.ctrl.RequestDiff(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePresented, o.Kind)
	assert.Nil(t, o.Result)

	s := f.ctrl.State()
	assert.Equal(t, ViewPresenting, s.View)
	require.Len(t, f.native.outputs, 1)
	assert.Equal(t, f.native.outputs[0], s.DiffPath)
	assert.Equal(t, f.outDir, filepath.Dir(s.DiffPath))
	assert.NoFileExists(t, s.DiffPath)
	assert.Equal(t, []string{notifier.TextNoDifference}, f.notes.texts())
}

func TestRequestDiff_ReportsResultFromDetailedDiffer(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SelectBefore(f.before)
	f.ctrl.SelectAfter(f.after)

	o, err := f.ctrl.RequestDiff(context.Background())
	require.NoError(t, err)
	require.NotNil(t, o.Result)
	assert.Equal(t, o.State.DiffPath, o.Result.DiffOutputPath)
	assert.Equal(t, models.ResultTypePixel, o.Result.ResultType)
}

func TestRequestDiff_ConsecutiveSuccessesUseDistinctPaths(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SelectBefore(f.before)
	f.ctrl.SelectAfter(f.after)

	first, err := f.ctrl.RequestDiff(context.Background())
	require.NoError(t, err)
	second, err := f.ctrl.RequestDiff(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.State.DiffPath, second.State.DiffPath)
	assert.FileExists(t, first.State.DiffPath)
	assert.FileExists(t, second.State.DiffPath)
	assert.Equal(t, second.State.DiffPath, f.ctrl.State().DiffPath)
}

func TestRequestDiff_PresentingKeepsSelectionsAndStaysPresenting(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SelectBefore(f.before)
	f.ctrl.SelectAfter(f.after)
	_, err := f.ctrl.RequestDiff(context.Background())
	require.NoError(t, err)

	f.ctrl.SelectAfter("/elsewhere.png")
	s := f.ctrl.State()
	assert.Equal(t, ViewPresenting, s.View)
	assert.Equal(t, models.ImageRef("/elsewhere.png"), s.After)

	f.native.code = 3
	f.ctrl.SelectAfter(f.after)
	_, err = f.ctrl.RequestDiff(context.Background())
	require.Error(t, err)
	assert.Equal(t, ViewPresenting, f.ctrl.State().View)
}

func TestRequestDiff_UsesFreshDefaultOptions(t *testing.T) {
	var got []models.DiffOptions
	var mu sync.Mutex
	d := diffFunc(func(_, _, _ string, opts models.DiffOptions) (string, error) {
		mu.Lock()
		got = append(got, opts)
		mu.Unlock()
		opts.IgnoreRegions = append(opts.IgnoreRegions, models.IgnoreRegion{X2: 1})
		return "", errors.New("stop")
	})

	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	touchFile(t, a)
	ctrl, err := NewControllerBuilder(zerolog.Nop()).
		WithResolver(resolver.New(nil, zerolog.Nop())).
		WithDiffer(d).
		WithPlatform(platform.NewStatic(dir, nil)).
		Build()
	require.NoError(t, err)
	ctrl.SelectBefore(models.ImageRef(a))
	ctrl.SelectAfter(models.ImageRef(a))

	for i := 0; i < 2; i++ {
		o, err := ctrl.RequestDiff(context.Background())
		require.Error(t, err)
		assert.Equal(t, OutcomeInvocationError, o.Kind)
	}
	require.Len(t, got, 2)
	assert.Equal(t, models.DefaultDiffOptions(), got[0])
	assert.Equal(t, models.DefaultDiffOptions(), got[1])
}

func TestSetDiffOptions_AppliesToLaterRequests(t *testing.T) {
	var got []models.DiffOptions
	d := diffFunc(func(_, _, _ string, opts models.DiffOptions) (string, error) {
		got = append(got, opts)
		return "", errors.New("stop")
	})

	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	touchFile(t, a)
	ctrl, err := NewControllerBuilder(zerolog.Nop()).
		WithResolver(resolver.New(nil, zerolog.Nop())).
		WithDiffer(d).
		WithOutputDir(dir).
		Build()
	require.NoError(t, err)
	ctrl.SelectBefore(models.ImageRef(a))
	ctrl.SelectAfter(models.ImageRef(a))

	regions := []models.IgnoreRegion{{X2: 5, Y2: 5}}
	ctrl.SetDiffOptions(models.DiffOptions{Threshold: 0.3, Antialiasing: true, IgnoreRegions: regions})
	regions[0].X2 = 99

	_, err = ctrl.RequestDiff(context.Background())
	require.Error(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.3, got[0].Threshold, 1e-9)
	assert.True(t, got[0].Antialiasing)
	assert.Equal(t, []models.IgnoreRegion{{X2: 5, Y2: 5}}, got[0].IgnoreRegions)
}

func TestRequestDiffAsync_DeliversExactlyOneOutcome(t *testing.T) {
	f := newFixture(t)
	f.ctrl.SelectBefore(f.before)
	f.ctrl.SelectAfter(f.after)

	ch := f.ctrl.RequestDiffAsync(context.Background())
	o, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, OutcomePresented, o.Kind)
	_, ok = <-ch
	assert.False(t, ok, "channel must be closed after one outcome")
}

func TestRequestDiffAsync_GuardAnsweredImmediately(t *testing.T) {
	f := newFixture(t)
	o := <-f.ctrl.RequestDiffAsync(context.Background())
	assert.Equal(t, OutcomeMissingSelection, o.Kind)
	assert.Zero(t, f.native.callCount())
}

func TestSecondRequestWhileInFlightIsRejected(t *testing.T) {
	f := newFixture(t)
	f.native.gate = make(chan struct{})
	f.ctrl.SelectBefore(f.before)
	f.ctrl.SelectAfter(f.after)

	ch := f.ctrl.RequestDiffAsync(context.Background())
	require.Eventually(t, func() bool { return f.native.callCount() == 1 }, 2*time.Second, 5*time.Millisecond)

	o, err := f.ctrl.RequestDiff(context.Background())
	assert.ErrorIs(t, err, ErrDiffInFlight)
	assert.ErrorIs(t, err, common.ErrBusy)
	assert.Equal(t, OutcomeRejected, o.Kind)

	rejected := <-f.ctrl.RequestDiffAsync(context.Background())
	assert.Equal(t, OutcomeRejected, rejected.Kind)

	close(f.native.gate)
	done := <-ch
	assert.Equal(t, OutcomePresented, done.Kind)
	assert.Equal(t, 1, f.native.callCount())

	_, err = f.ctrl.RequestDiff(context.Background())
	assert.NoError(t, err)
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)
	var (
		mu   sync.Mutex
		seen []State
	)
	unsubscribe := f.ctrl.Subscribe(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	f.ctrl.SelectBefore(f.before)
	f.ctrl.SelectAfter(f.after)
	_, err := f.ctrl.RequestDiff(context.Background())
	require.NoError(t, err)

	mu.Lock()
	require.Len(t, seen, 3)
	assert.Equal(t, f.before, seen[0].Before)
	assert.Equal(t, f.after, seen[1].After)
	assert.Equal(t, ViewPresenting, seen[2].View)
	mu.Unlock()

	unsubscribe()
	unsubscribe()
	f.ctrl.SelectBefore("/x.png")
	mu.Lock()
	assert.Len(t, seen, 3)
	mu.Unlock()
}

func TestSubscribe_DeliveryFollowsStateOrder(t *testing.T) {
	f := newFixture(t)
	var (
		mu   sync.Mutex
		last State
		n    int
	)
	f.ctrl.Subscribe(func(s State) {
		mu.Lock()
		last = s
		n++
		mu.Unlock()
	})

	const rounds = 200
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			f.ctrl.SelectBefore(models.ImageRef(filepath.Join(f.inputDir, "before", string(rune('a'+i%26)))))
		}(i)
		go func(i int) {
			defer wg.Done()
			f.ctrl.SelectAfter(models.ImageRef(filepath.Join(f.inputDir, "after", string(rune('a'+i%26)))))
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2*rounds, n)
	assert.Equal(t, f.ctrl.State(), last)
}

func TestPick(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.ctrl.PickBefore(ctx, picker.NewStatic(f.before))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.ctrl.PickAfter(ctx, picker.NewStatic())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, f.ctrl.State().After.IsEmpty())

	_, err = f.ctrl.PickAfter(ctx, picker.Func(func(context.Context) (models.ImageRef, bool, error) {
		return "", false, errors.New("picker crashed")
	}))
	assert.Error(t, err)

	ok, err = f.ctrl.PickAfter(ctx, picker.NewStatic(f.after))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, f.before, f.ctrl.State().Before)
	assert.Equal(t, f.after, f.ctrl.State().After)
}
