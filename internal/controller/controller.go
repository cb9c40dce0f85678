// Package controller holds the selection and navigation state of a diff
// session and drives resolution and diff invocation for it.
package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/aleister1102/odiffkit/internal/differ"
	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/aleister1102/odiffkit/internal/notifier"
	"github.com/aleister1102/odiffkit/internal/picker"
	"github.com/aleister1102/odiffkit/internal/platform"
	"github.com/aleister1102/odiffkit/internal/resolver"
	"github.com/rs/zerolog"
)

// Controller is the state machine Selecting(before, after) -> Presenting(diffPath).
// At most one diff request runs at a time.
type Controller struct {
	resolver  resolver.ImageResolver
	differ    differ.DiffComputer
	platform  platform.Context
	outputDir string
	notifier  notifier.Notifier
	options   models.DiffOptions
	logger    zerolog.Logger

	// deliverMu orders subscriber delivery: snapshots reach subscribers in the
	// order the state changed.
	deliverMu   sync.Mutex
	mu          sync.Mutex
	state       State
	inFlight    bool
	nextSubID   uint64
	subscribers map[uint64]func(State)
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive every new state. fn runs on the goroutine
// that changed the state, after the controller lock is released. Calls are
// serialized in the order the state changed.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
		})
	}
}

// SelectBefore records ref as the before image, replacing any earlier choice.
func (c *Controller) SelectBefore(ref models.ImageRef) {
	c.update(func(s *State) { s.Before = ref })
}

// SelectAfter records ref as the after image, replacing any earlier choice.
func (c *Controller) SelectAfter(ref models.ImageRef) {
	c.update(func(s *State) { s.After = ref })
}

// PickBefore asks p for the before image. A cancelled pick leaves the state unchanged.
func (c *Controller) PickBefore(ctx context.Context, p picker.Picker) (bool, error) {
	return c.pick(ctx, p, c.SelectBefore)
}

// PickAfter asks p for the after image. A cancelled pick leaves the state unchanged.
func (c *Controller) PickAfter(ctx context.Context, p picker.Picker) (bool, error) {
	return c.pick(ctx, p, c.SelectAfter)
}

func (c *Controller) pick(ctx context.Context, p picker.Picker, apply func(models.ImageRef)) (bool, error) {
	ref, ok, err := p.Pick(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		c.logger.Debug().Msg("Pick cancelled")
		return false, nil
	}
	apply(ref)
	return true, nil
}

// RequestDiff runs a diff request on the calling goroutine. The returned error
// is nil only for OutcomePresented; on any failure the state is unchanged.
func (c *Controller) RequestDiff(ctx context.Context) (Outcome, error) {
	before, after, err := c.begin()
	if err != nil {
		o := c.reject(ctx, err)
		return o, o.Err
	}
	o := c.run(ctx, before, after)
	c.finish()
	return o, o.Err
}

// RequestDiffAsync runs the request on a new goroutine. The returned channel
// delivers exactly one Outcome and is then closed. A request that cannot start
// is answered immediately.
func (c *Controller) RequestDiffAsync(ctx context.Context) <-chan Outcome {
	ch := make(chan Outcome, 1)

	before, after, err := c.begin()
	if err != nil {
		ch <- c.reject(ctx, err)
		close(ch)
		return ch
	}

	go func() {
		o := c.run(ctx, before, after)
		c.finish()
		ch <- o
		close(ch)
	}()
	return ch
}

// begin checks the guard and claims the in-flight slot.
func (c *Controller) begin() (models.ImageRef, models.ImageRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return "", "", ErrDiffInFlight
	}
	if !c.state.HasBothSelections() {
		return "", "", &GuardError{
			MissingBefore: c.state.Before.IsEmpty(),
			MissingAfter:  c.state.After.IsEmpty(),
		}
	}
	c.inFlight = true
	return c.state.Before, c.state.After, nil
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

func (c *Controller) reject(ctx context.Context, err error) Outcome {
	if errors.Is(err, ErrDiffInFlight) {
		c.logger.Warn().Msg("Diff requested while another request is in flight")
		return Outcome{Kind: OutcomeRejected, State: c.State(), Err: err}
	}
	c.logger.Debug().Err(err).Msg("Diff requested without both selections")
	c.notify(ctx, notifier.MissingSelection())
	return Outcome{Kind: OutcomeMissingSelection, State: c.State(), Err: err}
}

func (c *Controller) run(ctx context.Context, before, after models.ImageRef) Outcome {
	beforePath, err := c.resolver.Resolve(ctx, before)
	if err == nil {
		var afterPath string
		afterPath, err = c.resolver.Resolve(ctx, after)
		if err == nil {
			return c.invoke(ctx, beforePath, afterPath)
		}
	}

	c.logger.Warn().Err(err).Str("before", before.String()).Str("after", after.String()).Msg("Failed to resolve image references")
	c.notify(ctx, notifier.ResolutionFailed())
	return Outcome{Kind: OutcomeResolutionFailed, State: c.State(), Err: err}
}

func (c *Controller) invoke(ctx context.Context, beforePath, afterPath string) Outcome {
	result, detailed, err := c.compute(beforePath, afterPath)

	var (
		diffErr    *differ.DiffError
		missingErr *differ.MissingOutputError
	)
	switch {
	case err == nil:
		o := c.present(ctx, result.DiffOutputPath, notifier.DiffReady(result.DiffOutputPath))
		if detailed {
			o.Result = &result
		}
		return o
	case errors.As(err, &missingErr):
		// Identical inputs: the path is presented and the display falls back.
		c.logger.Info().Str("output", missingErr.OutputPath).Msg("Diff produced no output image")
		return c.present(ctx, missingErr.OutputPath, notifier.DiffReady(""))
	case errors.As(err, &diffErr):
		c.notify(ctx, notifier.DiffFailed(diffErr.Code))
		return Outcome{Kind: OutcomeDiffFailed, State: c.State(), Code: diffErr.Code, Err: err}
	default:
		c.logger.Error().Err(err).Msg("Diff invocation failed")
		c.notify(ctx, notifier.DiffError(err))
		return Outcome{Kind: OutcomeInvocationError, State: c.State(), Err: err}
	}
}

// compute calls the differ, asking for metrics when it can report them.
func (c *Controller) compute(beforePath, afterPath string) (models.DiffResult, bool, error) {
	dir, opts := c.resolveOutputDir(), c.freshOptions()
	if dc, ok := c.differ.(differ.DetailedDiffComputer); ok {
		result, err := dc.ComputeDiffDetailed(beforePath, afterPath, dir, opts)
		return result, true, err
	}
	path, err := c.differ.ComputeDiff(beforePath, afterPath, dir, opts)
	return models.DiffResult{DiffOutputPath: path}, false, err
}

func (c *Controller) present(ctx context.Context, path string, msg notifier.Message) Outcome {
	s := c.update(func(s *State) {
		s.View = ViewPresenting
		s.DiffPath = path
	})
	c.logger.Info().Str("diff_path", path).Msg("Presenting difference image")
	c.notify(ctx, msg)
	return Outcome{Kind: OutcomePresented, State: s}
}

func (c *Controller) resolveOutputDir() string {
	if c.outputDir != "" {
		return c.outputDir
	}
	return c.platform.CacheDir()
}

// SetDiffOptions replaces the options used by later requests. A request already
// in flight keeps the options it started with.
func (c *Controller) SetDiffOptions(opts models.DiffOptions) {
	opts.IgnoreRegions = append([]models.IgnoreRegion(nil), opts.IgnoreRegions...)
	c.mu.Lock()
	c.options = opts
	c.mu.Unlock()
}

// freshOptions copies the options template so no request shares slices with another.
func (c *Controller) freshOptions() models.DiffOptions {
	c.mu.Lock()
	defer c.mu.Unlock()
	opts := c.options
	opts.IgnoreRegions = append([]models.IgnoreRegion(nil), c.options.IgnoreRegions...)
	return opts
}

// update mutates the state under the lock and publishes the result.
// Subscribers must not change the state synchronously from their callback.
func (c *Controller) update(mutate func(*State)) State {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	mutate(&c.state)
	s := c.state
	subs := make([]func(State), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
	return s
}

func (c *Controller) notify(ctx context.Context, msg notifier.Message) {
	if err := c.notifier.Notify(ctx, msg); err != nil {
		c.logger.Warn().Err(err).Str("message", msg.Text).Msg("Failed to deliver notification")
	}
}
