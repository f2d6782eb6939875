package metadata

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// SchemaWatcher watches a directory of schema definition files and reloads
// them into a Validator when they change. Changes are debounced so a burst of
// writes triggers a single reload.
type SchemaWatcher struct {
	dir       string
	validator *Validator
	watcher   *fsnotify.Watcher
	logger    *slog.Logger
	debounce  time.Duration

	pendingMu sync.Mutex
	pending   bool
}

// NewSchemaWatcher creates a watcher for dir feeding validator. A zero
// debounce uses the default.
func NewSchemaWatcher(dir string, validator *Validator, debounce time.Duration, logger *slog.Logger) (*SchemaWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &SchemaWatcher{
		dir:       dir,
		validator: validator,
		watcher:   fsw,
		logger:    logger,
		debounce:  debounce,
	}, nil
}

// Start performs an initial load and begins watching. The processing
// goroutine exits when ctx is cancelled or the watcher is stopped.
func (w *SchemaWatcher) Start(ctx context.Context) error {
	count, err := w.validator.LoadDir(w.dir)
	if err != nil {
		return err
	}
	w.logger.Info("Schema directory loaded",
		"dir", w.dir,
		"schemas", count)

	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher.
func (w *SchemaWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *SchemaWatcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Schema watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *SchemaWatcher) handleEvent(event fsnotify.Event) {
	ext := strings.ToLower(filepath.Ext(event.Name))
	if ext != ".yaml" && ext != ".yml" {
		return
	}

	w.pendingMu.Lock()
	w.pending = true
	w.pendingMu.Unlock()

	w.logger.Debug("Schema change detected",
		"path", event.Name,
		"op", event.Op.String())
}

func (w *SchemaWatcher) flushPending() {
	w.pendingMu.Lock()
	dirty := w.pending
	w.pending = false
	w.pendingMu.Unlock()
	if !dirty {
		return
	}

	count, err := w.validator.LoadDir(w.dir)
	if err != nil {
		w.logger.Warn("Schema reload failed", "dir", w.dir, "error", err)
		return
	}
	w.logger.Info("Schemas reloaded", "dir", w.dir, "schemas", count)
}
