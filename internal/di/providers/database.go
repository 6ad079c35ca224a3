package providers

import (
	"github.com/samber/do/v2"

	"github.com/albumatlas/albumatlas-server/internal/config"
	"github.com/albumatlas/albumatlas-server/internal/logger"
	"github.com/albumatlas/albumatlas-server/internal/store"
	"github.com/albumatlas/albumatlas-server/internal/store/sqlite"
)

// VocabStoreHandle wraps the vocabulary store with shutdown capability.
type VocabStoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *VocabStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideVocabStore provides the vocabulary and journal database.
func ProvideVocabStore(i do.Injector) (*VocabStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.VocabDBPath()
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Vocabulary database initialized", "path", dbPath)
	return &VocabStoreHandle{Store: db}, nil
}

// CatalogHandle wraps the album catalog with shutdown capability.
type CatalogHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	return h.Close()
}

// ProvideCatalog provides the album catalog database.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.CatalogDBPath()
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Album catalog initialized", "path", dbPath)
	return &CatalogHandle{Store: db}, nil
}
