package config

// BridgeConfig selects the adapter used to reach the native diff routine
type BridgeConfig struct {
	Kind      string `json:"kind,omitempty" yaml:"kind,omitempty" validate:"bridgekind"`
	OdiffPath string `json:"odiff_path,omitempty" yaml:"odiff_path,omitempty"`
}

// NewDefaultBridgeConfig creates default bridge configuration
func NewDefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		Kind:      DefaultBridgeKind,
		OdiffPath: DefaultBridgeOdiffPath,
	}
}
