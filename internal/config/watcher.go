package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/albumatlas/albumatlas-server/internal/vocab"
)

// debounceDelay batches rapid successive writes (editors often write a
// file several times per save) into one reload.
const debounceDelay = 250 * time.Millisecond

// RulesWatcher reloads the normalization rules when the rules file
// changes on disk. A reload that fails validation is logged and the
// previous rules stay active.
type RulesWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	apply   func(*vocab.Rules) error
}

// NewRulesWatcher watches path and calls apply with each successfully
// loaded rule set. The parent directory is watched rather than the file
// itself so atomic rename-into-place saves are caught.
func NewRulesWatcher(path string, apply func(*vocab.Rules) error, logger *slog.Logger) (*RulesWatcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch rules directory: %w", err)
	}

	return &RulesWatcher{
		path:    filepath.Clean(path),
		watcher: watcher,
		logger:  logger,
		apply:   apply,
	}, nil
}

// Start blocks processing file events until the context is cancelled.
func (w *RulesWatcher) Start(ctx context.Context) error {
	var debounce *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("rules watcher error", "error", err)

		case <-reload:
			w.reload()
		}
	}
}

// Close stops watching and releases resources.
func (w *RulesWatcher) Close() error {
	return w.watcher.Close()
}

func (w *RulesWatcher) reload() {
	rules, err := LoadRules(w.path)
	if err != nil {
		w.logger.Error("rules reload failed, keeping previous rules", "path", w.path, "error", err)
		return
	}
	if err := w.apply(rules); err != nil {
		w.logger.Error("rules apply failed, keeping previous rules", "path", w.path, "error", err)
		return
	}
	w.logger.Info("normalization rules reloaded", "path", w.path)
}
