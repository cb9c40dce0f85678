package bridge

import (
	"fmt"

	"github.com/aleister1102/odiffkit/internal/common"
	"github.com/aleister1102/odiffkit/internal/config"
	"github.com/rs/zerolog"
)

// New builds the adapter selected by cfg.Kind.
func New(cfg config.BridgeConfig, logger zerolog.Logger) (NativeDiffBridge, error) {
	switch cfg.Kind {
	case "", config.BridgeKindExec:
		return NewExecBridge(cfg.OdiffPath, logger), nil
	case config.BridgeKindNative:
		return newNativeBridge(logger)
	default:
		return nil, common.NewConfigurationError("bridge_config", "kind", fmt.Sprintf("unknown bridge kind %q", cfg.Kind))
	}
}
