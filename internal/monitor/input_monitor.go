// Package monitor watches diff inputs on disk and reports changes.
package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce collapses editors' write bursts into one change.
const DefaultDebounce = 300 * time.Millisecond

// InputMonitor reports writes to a fixed set of files. Parent directories are
// watched so atomic replace-by-rename is seen too.
type InputMonitor struct {
	targets  map[string]struct{}
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
}

// NewInputMonitor starts watching paths. debounce <= 0 uses DefaultDebounce.
func NewInputMonitor(paths []string, debounce time.Duration, logger zerolog.Logger) (*InputMonitor, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths to monitor")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	m := &InputMonitor{
		targets:  make(map[string]struct{}, len(paths)),
		debounce: debounce,
		watcher:  watcher,
		logger:   logger.With().Str("component", "InputMonitor").Logger(),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		m.targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch directory '%s': %w", dir, err)
		}
		m.logger.Debug().Str("directory", dir).Msg("Watching directory")
	}
	return m, nil
}

// Run blocks until ctx is done, calling onChange once per debounced burst of
// changes with the last changed path. It returns nil when ctx ends.
func (m *InputMonitor) Run(ctx context.Context, onChange func(path string)) error {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := ""

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(event.Name)
			if _, watched := m.targets[name]; !watched {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			m.logger.Debug().Str("file", name).Str("op", event.Op.String()).Msg("Input change detected")
			pending = name
			timer.Reset(m.debounce)

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Error().Err(err).Msg("File watcher error")

		case <-timer.C:
			if pending != "" {
				path := pending
				pending = ""
				onChange(path)
			}
		}
	}
}

// Close stops watching.
func (m *InputMonitor) Close() error {
	return m.watcher.Close()
}
