package config

// ResolverConfig defines how image references are turned into file paths
type ResolverConfig struct {
	MediaIndexPath string `json:"media_index_path,omitempty" yaml:"media_index_path,omitempty"`
}

// NewDefaultResolverConfig creates default resolver configuration
func NewDefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		MediaIndexPath: DefaultResolverMediaIndexPath,
	}
}
