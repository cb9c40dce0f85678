package config

import "time"

const (
	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Diff Defaults
	DefaultDiffThreshold = 0.1

	// Storage Defaults
	DefaultStorageOutputDir     = "" // empty: <user cache dir>/odiffkit
	DefaultStorageOutputPrefix  = "diff_output_"
	DefaultStorageRetainOutputs = 10
	DefaultStorageHistoryDBPath = "" // empty: history disabled

	// ThumbnailDirName is the subdirectory of the output directory holding
	// display thumbnails, one <output name>.png per difference image.
	ThumbnailDirName = "thumbs"

	// Resolver Defaults
	DefaultResolverMediaIndexPath = "" // empty: content:// references never resolve

	// Bridge Defaults
	BridgeKindExec         = "exec"
	BridgeKindNative       = "native"
	DefaultBridgeKind      = BridgeKindExec
	DefaultBridgeOdiffPath = "odiff"

	// Notification Defaults
	DefaultNotificationEnableColor     = true
	DefaultNotificationAttachDiffImage = true

	// Hot-reload Defaults
	DefaultConfigReloadDelay = 2 * time.Second

	// ConfigPathEnv overrides the config file location.
	ConfigPathEnv = "ODIFFKIT_CONFIG_PATH"

	maxConfigFileSize = 10 * 1024 * 1024
)
