package controller

import (
	"github.com/aleister1102/odiffkit/internal/common"
	"github.com/aleister1102/odiffkit/internal/differ"
	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/aleister1102/odiffkit/internal/notifier"
	"github.com/aleister1102/odiffkit/internal/platform"
	"github.com/aleister1102/odiffkit/internal/resolver"
	"github.com/rs/zerolog"
)

// ControllerBuilder provides a fluent interface for creating Controller
type ControllerBuilder struct {
	resolver  resolver.ImageResolver
	differ    differ.DiffComputer
	platform  platform.Context
	outputDir string
	notifier  notifier.Notifier
	options   models.DiffOptions
	logger    zerolog.Logger
}

// NewControllerBuilder creates a new builder with default diff options
func NewControllerBuilder(logger zerolog.Logger) *ControllerBuilder {
	return &ControllerBuilder{
		options: models.DefaultDiffOptions(),
		logger:  logger.With().Str("component", "Controller").Logger(),
	}
}

// WithResolver sets the image reference resolver
func (b *ControllerBuilder) WithResolver(r resolver.ImageResolver) *ControllerBuilder {
	b.resolver = r
	return b
}

// WithDiffer sets the diff invocation service
func (b *ControllerBuilder) WithDiffer(d differ.DiffComputer) *ControllerBuilder {
	b.differ = d
	return b
}

// WithPlatform makes the platform cache directory the output directory
func (b *ControllerBuilder) WithPlatform(p platform.Context) *ControllerBuilder {
	b.platform = p
	return b
}

// WithOutputDir sets an explicit output directory, taking precedence over the platform cache
func (b *ControllerBuilder) WithOutputDir(dir string) *ControllerBuilder {
	b.outputDir = dir
	return b
}

// WithNotifier sets the transient notification surface
func (b *ControllerBuilder) WithNotifier(n notifier.Notifier) *ControllerBuilder {
	b.notifier = n
	return b
}

// WithDiffOptions sets the options template copied into every request
func (b *ControllerBuilder) WithDiffOptions(opts models.DiffOptions) *ControllerBuilder {
	b.options = opts
	return b
}

// Build creates a new Controller in the initial Selecting state
func (b *ControllerBuilder) Build() (*Controller, error) {
	if b.resolver == nil {
		return nil, common.NewValidationError("resolver", b.resolver, "resolver cannot be nil")
	}
	if b.differ == nil {
		return nil, common.NewValidationError("differ", b.differ, "diff service cannot be nil")
	}
	if b.outputDir == "" && b.platform == nil {
		return nil, common.NewValidationError("output_dir", b.outputDir, "either an output directory or a platform context is required")
	}

	n := b.notifier
	if n == nil {
		n = notifier.NewLogNotifier(b.logger)
	}

	return &Controller{
		resolver:    b.resolver,
		differ:      b.differ,
		platform:    b.platform,
		outputDir:   b.outputDir,
		notifier:    n,
		options:     b.options,
		logger:      b.logger,
		state:       State{View: ViewSelecting},
		subscribers: make(map[uint64]func(State)),
	}, nil
}
