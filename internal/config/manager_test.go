package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/odiffkit/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, path, threshold string) {
	t.Helper()
	data := "diff_config:\n  threshold: " + threshold + "\n  ignore_regions:\n    - {x1: 1, y1: 2, x2: 3, y2: 4}\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

func TestConfigManager_LoadAndCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, "0.3")

	cm, err := NewConfigManager(path, DefaultConfigManagerOptions())
	require.NoError(t, err)
	defer func() { _ = cm.Close() }()

	assert.Equal(t, path, cm.GetConfigPath())
	assert.False(t, cm.IsHotReloadEnabled())

	var seen []*GlobalConfig
	cm.OnReload(func(cfg *GlobalConfig) {
		seen = append(seen, cfg)
		cfg.DiffConfig.IgnoreRegions[0].X1 = 99
		cfg.DiffConfig.Threshold = 0.9
	})
	cm.OnReload(func(cfg *GlobalConfig) {
		seen = append(seen, cfg)
	})
	require.NoError(t, cm.ReloadConfig())

	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
	again := seen[1]
	assert.InDelta(t, 0.3, again.DiffConfig.Threshold, 1e-9)
	require.Len(t, again.DiffConfig.IgnoreRegions, 1)
	assert.Equal(t, models.IgnoreRegion{X1: 1, Y1: 2, X2: 3, Y2: 4}, again.DiffConfig.IgnoreRegions[0])
}

func TestConfigManager_MissingExplicitFile(t *testing.T) {
	_, err := NewConfigManager(filepath.Join(t.TempDir(), "absent.yaml"), DefaultConfigManagerOptions())
	assert.Error(t, err)
}

func TestConfigManager_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, "7")

	_, err := NewConfigManager(path, DefaultConfigManagerOptions())
	assert.Error(t, err)
}

func TestConfigManager_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, "0.3")

	cm, err := NewConfigManager(path, DefaultConfigManagerOptions())
	require.NoError(t, err)
	defer func() { _ = cm.Close() }()

	var reloaded atomic.Int32
	cm.OnReload(func(cfg *GlobalConfig) {
		if cfg.DiffConfig.Threshold == 0.6 {
			reloaded.Add(1)
		}
	})

	writeConfigFile(t, path, "0.6")
	require.NoError(t, cm.ReloadConfig())
	assert.Equal(t, int32(1), reloaded.Load())

	writeConfigFile(t, path, "3")
	assert.Error(t, cm.ReloadConfig())
	assert.Equal(t, int32(1), reloaded.Load())

	fromDisk, err := LoadGlobalConfig(path, zerolog.Nop())
	require.NoError(t, err)
	assert.InDelta(t, 3, fromDisk.DiffConfig.Threshold, 1e-9)
}

func TestConfigManager_HotReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, "0.3")

	opts := DefaultConfigManagerOptions()
	opts.HotReloadEnabled = true
	opts.ReloadDelay = 20 * time.Millisecond
	cm, err := NewConfigManager(path, opts)
	require.NoError(t, err)
	defer func() { _ = cm.Close() }()
	require.True(t, cm.IsHotReloadEnabled())

	var threshold atomic.Value
	cm.OnReload(func(cfg *GlobalConfig) {
		threshold.Store(cfg.DiffConfig.Threshold)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cm.StartHotReload(ctx)

	// Make sure the new mtime is strictly later on coarse-grained filesystems.
	future := time.Now().Add(2 * time.Second)
	writeConfigFile(t, path, "0.7")
	require.NoError(t, os.Chtimes(path, future, future))

	assert.Eventually(t, func() bool {
		v, ok := threshold.Load().(float64)
		return ok && v == 0.7
	}, 5*time.Second, 20*time.Millisecond)
}
