// Package odiffmobile is the gomobile binding of the diff session.
//
// Every exported identifier uses types gomobile can bind: strings, numbers,
// booleans, pointers to exported structs and interfaces the host implements.
// The host owns the native odiff routine and hands it in as a DiffBridge.
package odiffmobile

import (
	"context"
	"io"
	"path/filepath"
	"sync"

	"github.com/aleister1102/odiffkit/internal/common"
	"github.com/aleister1102/odiffkit/internal/config"
	"github.com/aleister1102/odiffkit/internal/controller"
	"github.com/aleister1102/odiffkit/internal/logger"
	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/aleister1102/odiffkit/internal/notifier"
	"github.com/aleister1102/odiffkit/internal/orchestrator"
	"github.com/aleister1102/odiffkit/internal/platform"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DiffBridge is implemented by the host around odiff_diff.
type DiffBridge interface {
	Diff(basePath, compPath, outputPath string, options *Options) int32
}

// MediaIndex is implemented by the host around its media store. An empty
// path means the reference has no local file.
type MediaIndex interface {
	LookupPath(uri string) (string, error)
}

// Listener receives state changes, transient messages and request outcomes.
// Calls may arrive on any goroutine.
type Listener interface {
	OnStateChanged(view, before, after, diffPath string)
	OnMessage(kind, text string)
	OnDiffFinished(outcome string, code int32)
}

// Options mirrors the native options struct without the ignore-region handle.
type Options struct {
	Antialiasing       bool
	OutputDiffMask     bool
	DiffOverlayFactor  float32
	DiffLines          bool
	DiffPixel          bool
	Threshold          float64
	FailOnLayoutChange bool
	EnableAsm          bool
}

// NewOptions returns the defaults used for every request.
func NewOptions() *Options {
	return optionsFrom(models.DefaultDiffOptions())
}

func optionsFrom(o models.DiffOptions) *Options {
	return &Options{
		Antialiasing:       o.Antialiasing,
		OutputDiffMask:     o.OutputDiffMask,
		DiffOverlayFactor:  o.DiffOverlayFactor,
		DiffLines:          o.DiffLines,
		DiffPixel:          o.DiffPixel,
		Threshold:          o.Threshold,
		FailOnLayoutChange: o.FailOnLayoutChange,
		EnableAsm:          o.EnableAsm,
	}
}

type hostBridge struct {
	host DiffBridge
}

func (b hostBridge) Diff(basePath, compPath, outputPath string, options models.DiffOptions) int32 {
	return b.host.Diff(basePath, compPath, outputPath, optionsFrom(options))
}

type hostIndex struct {
	host MediaIndex
}

func (i hostIndex) LookupPath(_ context.Context, uri string) (string, bool, error) {
	path, err := i.host.LookupPath(uri)
	if err != nil {
		return "", false, err
	}
	return path, path != "", nil
}

// Session is one comparison screen. Create it with NewSession and release it with Close.
type Session struct {
	session     *orchestrator.Session
	listener    Listener
	unsubscribe func()
	logger      zerolog.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewSession builds a session writing difference images to cacheDir. index
// may be nil when the host only hands out file paths.
func NewSession(cacheDir string, bridge DiffBridge, index MediaIndex, listener Listener) (*Session, error) {
	if cacheDir == "" {
		return nil, common.NewValidationError("cache_dir", cacheDir, "cache directory cannot be empty")
	}
	if bridge == nil {
		return nil, common.NewValidationError("bridge", bridge, "diff bridge cannot be nil")
	}
	if listener == nil {
		return nil, common.NewValidationError("listener", listener, "listener cannot be nil")
	}

	log, err := newLogger(cacheDir)
	if err != nil {
		return nil, common.WrapError(err, "failed to create logger")
	}

	var mediaIndex platform.MediaIndex
	if index != nil {
		mediaIndex = hostIndex{host: index}
	}

	cfg := config.NewDefaultGlobalConfig()
	cfg.StorageConfig.OutputDir = cacheDir

	inner, err := orchestrator.NewSession(cfg, orchestrator.SessionOptions{
		Bridge:   hostBridge{host: bridge},
		Platform: platform.NewStatic(cacheDir, mediaIndex),
		Notifier: notifier.Func(func(_ context.Context, msg notifier.Message) error {
			listener.OnMessage(msg.Kind.String(), msg.Text)
			return nil
		}),
		ThumbnailSize: -1,
	}, log)
	if err != nil {
		return nil, err
	}

	s := &Session{
		session:  inner,
		listener: listener,
		logger:   log.With().Str("component", "MobileSession").Logger(),
	}
	s.unsubscribe = inner.Controller.Subscribe(s.publish)
	return s, nil
}

func newLogger(cacheDir string) (zerolog.Logger, error) {
	l, err := logger.NewLoggerBuilder().
		WithConfig(config.LogConfig{
			LogFile:       filepath.Join(cacheDir, "logs", "odiffkit.log"),
			LogFormat:     "json",
			LogLevel:      config.DefaultLogLevel,
			MaxLogBackups: 2,
			MaxLogSizeMB:  5,
		}).
		WithSessionID(uuid.NewString()).
		WithConsoleOutput(io.Discard).
		Build()
	if err != nil {
		return zerolog.Nop(), err
	}
	return *l.GetZerolog(), nil
}

func (s *Session) publish(st controller.State) {
	s.listener.OnStateChanged(st.View.String(), st.Before.String(), st.After.String(), st.DiffPath)
}

// SelectBefore records the reference of the original image.
func (s *Session) SelectBefore(ref string) {
	s.session.Controller.SelectBefore(models.ImageRef(ref))
}

// SelectAfter records the reference of the modified image.
func (s *Session) SelectAfter(ref string) {
	s.session.Controller.SelectAfter(models.ImageRef(ref))
}

// RequestDiff starts a diff off the calling thread. The result arrives through
// Listener.OnDiffFinished. Close waits for it.
func (s *Session) RequestDiff() {
	s.wg.Add(1)
	ch := s.session.Controller.RequestDiffAsync(context.Background())
	go func() {
		defer s.wg.Done()
		o := <-ch
		s.logger.Debug().Str("outcome", o.Kind.String()).Int32("code", o.Code).Msg("Diff request finished")
		s.listener.OnDiffFinished(o.Kind.String(), o.Code)
	}()
}

// View returns "selecting" or "presenting".
func (s *Session) View() string {
	return s.session.Controller.State().View.String()
}

// DiffPath returns the presented difference image, empty when none.
func (s *Session) DiffPath() string {
	return s.session.Controller.State().DiffPath
}

// Describe returns a one-line summary of the presented image or the fallback text.
func (s *Session) Describe() string {
	r, err := s.session.Presenter.Render(s.DiffPath())
	if err != nil {
		return err.Error()
	}
	return r.Describe()
}

// Close waits for outstanding requests and releases the session.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.wg.Wait()
		s.unsubscribe()
		err = s.session.Close()
	})
	return err
}
