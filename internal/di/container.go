// Package di provides dependency injection configuration for the AlbumAtlas server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/albumatlas/albumatlas-server/internal/backup"
	"github.com/albumatlas/albumatlas-server/internal/config"
	"github.com/albumatlas/albumatlas-server/internal/di/providers"
	"github.com/albumatlas/albumatlas-server/internal/logger"
	"github.com/albumatlas/albumatlas-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideRules)

	// Storage layer
	do.Provide(injector, providers.ProvideVocabStore)
	do.Provide(injector, providers.ProvideCatalog)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvideVocabularyService)
	do.Provide(injector, providers.ProvideReviewService)
	do.Provide(injector, providers.ProvideBackupService)

	// Workers
	do.Provide(injector, providers.ProvideRulesWatcher)

	return injector
}

// Bootstrap triggers lazy initialization of every core service.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.VocabStoreHandle](injector)
	_ = do.MustInvoke[*providers.CatalogHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.VocabularyService](injector)
	_ = do.MustInvoke[*service.ReviewService](injector)
	_ = do.MustInvoke[*backup.Service](injector)
	_ = do.MustInvoke[*providers.RulesWatcherHandle](injector)
	return nil
}
