package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Some editors replace the file instead of writing it. The new file may
// not exist yet when the event is received.
const renameSettlingDelay = 50 * time.Millisecond

// ConfigWatcher reloads the configuration file when it changes, and hands
// the valid configurations to the listeners.
type ConfigWatcher struct {
	log  *zap.Logger
	path string

	mu        sync.Mutex
	cfg       *Config
	listeners []func(*Config)
}

func NewConfigWatcher(ctx context.Context, log *zap.Logger, path string) (*ConfigWatcher, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("couldn't create the configuration watcher: %w", err)
	}

	// The directory is watched, so the file can be replaced.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("couldn't watch %s: %w", path, err)
	}

	w := &ConfigWatcher{
		log:  log.Named("config-watcher"),
		path: path,
		cfg:  cfg,
	}

	w.log.Info("configuration watcher started", zap.String("config", path))

	go w.watch(ctx, watcher)

	return w, nil
}

func (w *ConfigWatcher) Get() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

func (w *ConfigWatcher) OnConfigUpdate(fns ...func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fns...)
}

func (w *ConfigWatcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		w.log.Error("unable to load the configuration", zap.Error(err))
		return
	}
	if err := cfg.Validate(); err != nil {
		w.log.Error("the updated configuration is invalid, it is ignored", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.cfg = cfg
	listeners := make([]func(*Config), len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	for _, f := range listeners {
		f(cfg)
	}
}

func (w *ConfigWatcher) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer func() {
		if err := watcher.Close(); err != nil {
			w.log.Warn("couldn't close the configuration watcher", zap.Error(err))
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) != 0 {
				time.Sleep(renameSettlingDelay)
			}
			w.log.Info("configuration updated", zap.String("event", event.String()))
			w.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("the configuration watcher received an error", zap.Error(err))
		case <-ctx.Done():
			return
		}
	}
}
