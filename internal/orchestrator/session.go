// Package orchestrator assembles a diff session from configuration: bridge,
// resolver, diff service, notifier chain and controller.
package orchestrator

import (
	"io"

	"github.com/aleister1102/odiffkit/internal/bridge"
	"github.com/aleister1102/odiffkit/internal/common"
	"github.com/aleister1102/odiffkit/internal/config"
	"github.com/aleister1102/odiffkit/internal/controller"
	"github.com/aleister1102/odiffkit/internal/datastore"
	"github.com/aleister1102/odiffkit/internal/differ"
	"github.com/aleister1102/odiffkit/internal/display"
	"github.com/aleister1102/odiffkit/internal/notifier"
	"github.com/aleister1102/odiffkit/internal/platform"
	"github.com/aleister1102/odiffkit/internal/resolver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// SessionOptions overrides parts of the assembly. Zero values use the configuration.
type SessionOptions struct {
	// Bridge replaces the adapter selected by bridge_config.
	Bridge bridge.NativeDiffBridge
	// Notifier replaces the notifier chain built from notification_config.
	Notifier notifier.Notifier
	// Console receives console notifications (stderr when nil).
	Console io.Writer
	// Registerer enables diff metrics.
	Registerer prometheus.Registerer
	// ThumbnailSize is passed to the display presenter.
	ThumbnailSize int
	// Platform replaces the cache directory and SQLite media index from the configuration.
	Platform platform.Context
}

// Session owns every component of one diff session.
type Session struct {
	Controller *controller.Controller
	Resolver   *resolver.Resolver
	Service    *differ.Service
	Presenter  *display.Presenter
	Platform   platform.Context
	// MediaIndex and History are nil unless configured.
	MediaIndex *datastore.MediaIndex
	History    *datastore.HistoryStore

	logger zerolog.Logger
}

// NewSession builds a session from cfg. Close releases its databases.
func NewSession(cfg *config.GlobalConfig, opts SessionOptions, logger zerolog.Logger) (_ *Session, err error) {
	if cfg == nil {
		return nil, common.NewValidationError("config", cfg, "config cannot be nil")
	}

	s := &Session{logger: logger.With().Str("component", "Session").Logger()}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	nb := opts.Bridge
	if nb == nil {
		if nb, err = bridge.New(cfg.BridgeConfig, logger); err != nil {
			return nil, common.WrapError(err, "failed to create diff bridge")
		}
	}

	outputDir := cfg.OutputDirectory()
	if opts.Platform != nil {
		s.Platform = opts.Platform
		outputDir = opts.Platform.CacheDir()
	} else {
		var index platform.MediaIndex
		if path := cfg.ResolverConfig.MediaIndexPath; path != "" {
			if s.MediaIndex, err = datastore.NewMediaIndex(path, logger); err != nil {
				return nil, common.WrapError(err, "failed to open media index")
			}
			index = s.MediaIndex
		}
		s.Platform = platform.NewStatic(outputDir, index)
	}

	builder := differ.NewServiceBuilder(logger).
		WithBridge(nb).
		WithStorageConfig(cfg.StorageConfig)

	if path := cfg.StorageConfig.HistoryDBPath; path != "" {
		if s.History, err = datastore.NewHistoryStore(path, logger); err != nil {
			return nil, common.WrapError(err, "failed to open history store")
		}
		builder = builder.WithHistory(s.History)
	}

	if opts.Registerer != nil {
		metrics, mErr := differ.NewMetrics(opts.Registerer)
		if mErr != nil {
			return nil, common.WrapError(mErr, "failed to register diff metrics")
		}
		builder = builder.WithMetrics(metrics)
	}

	if s.Service, err = builder.Build(); err != nil {
		return nil, err
	}

	n := opts.Notifier
	if n == nil {
		if n, err = notifier.FromConfig(cfg.NotificationConfig, opts.Console, logger); err != nil {
			return nil, common.WrapError(err, "failed to create notifier")
		}
	}

	s.Resolver = resolver.New(s.Platform, logger)
	s.Controller, err = controller.NewControllerBuilder(logger).
		WithResolver(s.Resolver).
		WithDiffer(s.Service).
		WithPlatform(s.Platform).
		WithNotifier(n).
		WithDiffOptions(cfg.DiffConfig.Options()).
		Build()
	if err != nil {
		return nil, err
	}

	s.Presenter = display.NewPresenter(opts.ThumbnailSize, logger)

	s.logger.Debug().
		Str("output_dir", outputDir).
		Bool("media_index", s.MediaIndex != nil).
		Bool("history", s.History != nil).
		Msg("Session assembled")
	return s, nil
}

// Close releases the databases opened by the session.
func (s *Session) Close() error {
	var ec common.ErrorCollector
	if s.MediaIndex != nil {
		ec.AddWithContext(s.MediaIndex.Close(), "media index")
	}
	if s.History != nil {
		ec.AddWithContext(s.History.Close(), "history store")
	}
	return ec.Error()
}
