package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"treblle-hq/relay/pkg/telemetry/logging"
)

// Watcher reloads the config file on change and hands the freshly built
// Config to a callback. Reload is debounced so editors that write in several
// steps trigger one rebuild, and a reload that fails validation keeps the
// previous Config in place.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *logging.Logger

	// DebounceInterval is the quiet period after the last write event
	// before a reload runs. Default 100ms.
	DebounceInterval time.Duration

	mu      sync.Mutex
	running bool
	closed  bool
	stopCh  chan struct{}
}

// NewWatcher creates a watcher for the given config file.
func NewWatcher(path string, logger *logging.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:             path,
		watcher:          fsw,
		logger:           logger,
		DebounceInterval: 100 * time.Millisecond,
		stopCh:           make(chan struct{}),
	}, nil
}

// Watch blocks until the context is cancelled or Stop is called, invoking
// onReload with each successfully rebuilt Config.
func (w *Watcher) Watch(ctx context.Context, onReload func(*Config)) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return fmt.Errorf("config: watcher stopped")
	}
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("config: watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	// Watch the directory rather than the file: editors replace files by
	// rename, which drops a file-level watch.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("config: failed to watch %q: %w", w.path, err)
	}

	w.logger.Info("config watcher started", "path", w.path)

	var debounce *time.Timer
	reloads := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("config watcher stopped", "reason", "context cancelled")
			return nil

		case <-w.stopCh:
			w.logger.Info("config watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("config: watcher events channel closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.DebounceInterval, func() {
				select {
				case reloads <- struct{}{}:
				default:
				}
			})

		case <-reloads:
			cfg, err := LoadWithEnv(w.path)
			if err != nil {
				w.logger.Error("config reload failed, keeping previous config",
					"path", w.path, "error", err)
				continue
			}
			w.logger.Info("config reloaded",
				"path", w.path,
				"masked_patterns", cfg.MaskedFields().Len(),
				"ignored_patterns", cfg.IgnoredRoutes().Len(),
			)
			onReload(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("config: watcher errors channel closed")
			}
			w.logger.Error("config watcher error", "error", err)
		}
	}
}

// Stop terminates Watch and releases the underlying fsnotify watcher. After
// Stop, Watch returns an error; safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.running {
		close(w.stopCh)
		w.running = false
	}
	return w.watcher.Close()
}
