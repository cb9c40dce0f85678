package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ReloadFunc is called with a copy of the configuration after each successful reload.
type ReloadFunc func(cfg *GlobalConfig)

// ConfigManager holds the active configuration and can reload it when the file changes
type ConfigManager struct {
	mu           sync.RWMutex
	config       *GlobalConfig
	configPath   string
	logger       zerolog.Logger
	watcher      *fsnotify.Watcher
	stopChan     chan struct{}
	stopOnce     sync.Once
	lastModified time.Time
	onReload     []ReloadFunc

	hotReloadEnabled bool
	reloadDelay      time.Duration
}

// ConfigManagerOptions holds options for creating a ConfigManager
type ConfigManagerOptions struct {
	Logger           zerolog.Logger
	HotReloadEnabled bool
	ReloadDelay      time.Duration
}

// DefaultConfigManagerOptions returns default options for ConfigManager
func DefaultConfigManagerOptions() ConfigManagerOptions {
	return ConfigManagerOptions{
		Logger:      zerolog.Nop(),
		ReloadDelay: DefaultConfigReloadDelay,
	}
}

// NewConfigManager loads the configuration at configPath (resolved with GetConfigPath)
func NewConfigManager(configPath string, opts ConfigManagerOptions) (*ConfigManager, error) {
	cm := &ConfigManager{
		configPath:       GetConfigPath(configPath),
		logger:           opts.Logger.With().Str("component", "ConfigManager").Logger(),
		stopChan:         make(chan struct{}),
		hotReloadEnabled: opts.HotReloadEnabled,
		reloadDelay:      opts.ReloadDelay,
	}
	if configPath != "" && cm.configPath == "" {
		return nil, fmt.Errorf("config file %q does not exist", configPath)
	}

	if err := cm.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load initial configuration: %w", err)
	}

	if cm.hotReloadEnabled && cm.configPath != "" {
		if err := cm.setupFileWatcher(); err != nil {
			cm.logger.Warn().Err(err).Msg("Failed to setup file watcher, hot-reload disabled")
			cm.hotReloadEnabled = false
		}
	} else {
		cm.hotReloadEnabled = false
	}

	return cm, nil
}

// GetConfigPath returns the file the configuration was loaded from, or "" for defaults
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// IsHotReloadEnabled returns whether the file watcher is active
func (cm *ConfigManager) IsHotReloadEnabled() bool {
	return cm.hotReloadEnabled
}

// OnReload registers fn to run after every successful reload
func (cm *ConfigManager) OnReload(fn ReloadFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onReload = append(cm.onReload, fn)
}

// ReloadConfig reloads the configuration from file. On error the previous configuration stays active.
func (cm *ConfigManager) ReloadConfig() error {
	cm.mu.Lock()
	if err := cm.loadConfig(); err != nil {
		cm.mu.Unlock()
		return err
	}
	cfg := copyConfig(cm.config)
	callbacks := append([]ReloadFunc(nil), cm.onReload...)
	cm.mu.Unlock()

	for _, fn := range callbacks {
		fn(copyConfig(cfg))
	}
	return nil
}

// Close stops the hot-reload loop and the file watcher
func (cm *ConfigManager) Close() error {
	var err error
	cm.stopOnce.Do(func() {
		close(cm.stopChan)
		if cm.watcher != nil {
			err = cm.watcher.Close()
		}
	})
	return err
}

// StartHotReload starts the hot-reload goroutine (non-blocking)
func (cm *ConfigManager) StartHotReload(ctx context.Context) {
	if !cm.hotReloadEnabled {
		return
	}
	go cm.hotReloadLoop(ctx)
}

// loadConfig loads and validates the file (assumes lock is held or no concurrent use)
func (cm *ConfigManager) loadConfig() error {
	cfg, err := LoadGlobalConfig(cm.configPath, cm.logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if cm.configPath != "" {
		if stat, err := os.Stat(cm.configPath); err == nil {
			cm.lastModified = stat.ModTime()
		}
	}

	cm.config = cfg
	cm.logger.Debug().Str("path", cm.configPath).Msg("Configuration loaded")
	return nil
}

// setupFileWatcher watches the directory of the config file so atomic renames are seen
func (cm *ConfigManager) setupFileWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	configDir := filepath.Dir(cm.configPath)
	if err := watcher.Add(configDir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch config directory '%s': %w", configDir, err)
	}

	cm.watcher = watcher
	cm.logger.Debug().Str("directory", configDir).Msg("File watcher setup for hot-reload")
	return nil
}

func (cm *ConfigManager) hotReloadLoop(ctx context.Context) {
	reloadTimer := time.NewTimer(0)
	if !reloadTimer.Stop() {
		<-reloadTimer.C
	}

	target := filepath.Clean(cm.configPath)
	for {
		select {
		case <-ctx.Done():
			return

		case <-cm.stopChan:
			return

		case event, ok := <-cm.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) == target && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				cm.logger.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Config file change detected")
				reloadTimer.Reset(cm.reloadDelay)
			}

		case err, ok := <-cm.watcher.Errors:
			if !ok {
				return
			}
			cm.logger.Error().Err(err).Msg("File watcher error")

		case <-reloadTimer.C:
			stat, err := os.Stat(cm.configPath)
			if err != nil {
				continue
			}
			cm.mu.RLock()
			changed := stat.ModTime().After(cm.lastModified)
			cm.mu.RUnlock()
			if !changed {
				continue
			}
			if err := cm.ReloadConfig(); err != nil {
				cm.logger.Error().Err(err).Msg("Failed to reload configuration")
			} else {
				cm.logger.Info().Str("path", cm.configPath).Msg("Configuration reloaded")
			}
		}
	}
}

// copyConfig returns a deep copy of src
func copyConfig(src *GlobalConfig) *GlobalConfig {
	if src == nil {
		return NewDefaultGlobalConfig()
	}
	dst := *src
	dst.DiffConfig.IgnoreRegions = append(dst.DiffConfig.IgnoreRegions[:0:0], src.DiffConfig.IgnoreRegions...)
	return &dst
}
