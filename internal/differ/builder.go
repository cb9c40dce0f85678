package differ

import (
	"github.com/aleister1102/odiffkit/internal/bridge"
	"github.com/aleister1102/odiffkit/internal/common"
	"github.com/aleister1102/odiffkit/internal/config"
	"github.com/rs/zerolog"
)

// ServiceBuilder provides a fluent interface for creating Service
type ServiceBuilder struct {
	bridge  bridge.NativeDiffBridge
	paths   PathGenerator
	history HistoryRecorder
	metrics *Metrics
	janitor *Janitor
	logger  zerolog.Logger
}

// NewServiceBuilder creates a new builder
func NewServiceBuilder(logger zerolog.Logger) *ServiceBuilder {
	return &ServiceBuilder{
		logger: logger.With().Str("component", "DiffService").Logger(),
	}
}

// WithBridge sets the native diff bridge
func (b *ServiceBuilder) WithBridge(nb bridge.NativeDiffBridge) *ServiceBuilder {
	b.bridge = nb
	return b
}

// WithPathGenerator overrides the output path generator
func (b *ServiceBuilder) WithPathGenerator(g PathGenerator) *ServiceBuilder {
	b.paths = g
	return b
}

// WithHistory enables invocation history
func (b *ServiceBuilder) WithHistory(h HistoryRecorder) *ServiceBuilder {
	b.history = h
	return b
}

// WithMetrics enables prometheus metrics
func (b *ServiceBuilder) WithMetrics(m *Metrics) *ServiceBuilder {
	b.metrics = m
	return b
}

// WithJanitor enables pruning of old outputs after each success
func (b *ServiceBuilder) WithJanitor(j *Janitor) *ServiceBuilder {
	b.janitor = j
	return b
}

// WithStorageConfig sets the path generator and janitor from cfg
func (b *ServiceBuilder) WithStorageConfig(cfg config.StorageConfig) *ServiceBuilder {
	b.paths = NewUUIDPathGenerator(cfg.OutputPrefix)
	if cfg.RetainOutputs > 0 {
		b.janitor = NewJanitor(cfg.OutputPrefix, cfg.RetainOutputs, b.logger)
	}
	return b
}

// Build creates a new Service instance
func (b *ServiceBuilder) Build() (*Service, error) {
	if b.bridge == nil {
		return nil, common.NewValidationError("bridge", b.bridge, "native diff bridge cannot be nil")
	}

	paths := b.paths
	if paths == nil {
		paths = NewUUIDPathGenerator(config.DefaultStorageOutputPrefix)
	}

	return &Service{
		bridge:      b.bridge,
		paths:       paths,
		history:     b.history,
		metrics:     b.metrics,
		janitor:     b.janitor,
		fileManager: common.NewFileManager(b.logger),
		logger:      b.logger,
	}, nil
}

// NewService creates a Service with default storage settings
func NewService(nb bridge.NativeDiffBridge, logger zerolog.Logger) (*Service, error) {
	return NewServiceBuilder(logger).WithBridge(nb).Build()
}
