package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/albumatlas/albumatlas-server/internal/config"
	"github.com/albumatlas/albumatlas-server/internal/logger"
	"github.com/albumatlas/albumatlas-server/internal/service"
)

// RulesWatcherHandle wraps the rules file watcher with its context for
// lifecycle management. Watcher is nil when hot-reload is disabled.
type RulesWatcherHandle struct {
	Watcher *config.RulesWatcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *RulesWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Close()
}

// ProvideRulesWatcher provides the rules hot-reload worker. Disabled
// when no rules file is configured or watching is turned off.
func ProvideRulesWatcher(i do.Injector) (*RulesWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	vocabService := do.MustInvoke[*service.VocabularyService](i)

	if cfg.Rules.Path == "" || !cfg.Rules.Watch {
		return &RulesWatcherHandle{}, nil
	}

	watcher, err := config.NewRulesWatcher(cfg.Rules.Path, vocabService.ReloadRules, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := watcher.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("Rules watcher stopped", "error", err)
		}
	}()

	log.Info("Rules hot-reload enabled", "path", cfg.Rules.Path)
	return &RulesWatcherHandle{Watcher: watcher, cancel: cancel}, nil
}
