package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

// Watch invalidates cached configurations when their files change on disk.
// It blocks until ctx is cancelled or the watcher fails.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(m.configDir); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	m.logger.Info().Str("dir", m.configDir).Msg("watching config directory")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			m.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}

// handleEvent drops the cache entry for a changed file and reloads the default when it was affected
func (m *Manager) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !engine.IsConfigFile(name) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	id := configID(name)
	m.Invalidate(id)
	m.logger.Debug().Str("config", id).Str("op", event.Op.String()).Msg("config changed")

	m.mu.RLock()
	affectsDefault := m.defaultConfig == nil || id == DefaultConfigID
	m.mu.RUnlock()

	if affectsDefault {
		if err := m.loadDefaultConfig(); err != nil {
			m.logger.Warn().Err(err).Msg("failed to reload default config")
		}
	}
}
