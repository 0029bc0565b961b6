package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher re-reads a config file when it changes on disk and publishes the
// result on Updates. Parse failures are logged and the previous config stays
// in effect.
type Watcher struct {
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	updates  chan *Config
}

// NewWatcher watches the directory holding path, so editors that replace the
// file on save are still picked up.
func NewWatcher(logger *zap.Logger, path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return &Watcher{
		logger:   logger,
		watcher:  w,
		path:     filepath.Clean(path),
		debounce: defaultDebounce,
		updates:  make(chan *Config, 1),
	}, nil
}

// Updates delivers freshly loaded configs. Only the newest pending value is kept.
func (w *Watcher) Updates() <-chan *Config { return w.updates }

// Start begins watching until ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C

	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if w.shouldProcessEvent(event) {
					w.logger.Debug("Config change detected",
						zap.String("file", event.Name),
						zap.String("op", event.Op.String()))
					debounceTimer.Reset(w.debounce)
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Error("Watcher error", zap.Error(err))

			case <-debounceTimer.C:
				w.reload()

			case <-ctx.Done():
				w.logger.Debug("Stopping config watcher")
				return
			}
		}
	}()
}

// Stop closes the underlying watcher.
func (w *Watcher) Stop() error {
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("Config reload failed, keeping previous", zap.Error(err))
		return
	}
	// drop a stale pending value
	select {
	case <-w.updates:
	default:
	}
	w.updates <- cfg
	w.logger.Info("Config reloaded", zap.String("path", w.path))
}
