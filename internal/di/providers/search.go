package providers

import (
	"github.com/samber/do/v2"

	"github.com/albumatlas/albumatlas-server/internal/config"
	"github.com/albumatlas/albumatlas-server/internal/logger"
	"github.com/albumatlas/albumatlas-server/internal/search"
)

// SearchIndexHandle wraps the vocabulary search index with shutdown
// capability.
type SearchIndexHandle struct {
	*search.VocabIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the bleve vocabulary index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewVocabIndex(search.Options{
		DataPath: cfg.SearchIndexPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	count, err := index.DocumentCount()
	if err != nil {
		return nil, err
	}
	log.Info("Search index initialized", "path", cfg.SearchIndexPath(), "documents", count)

	return &SearchIndexHandle{VocabIndex: index}, nil
}
