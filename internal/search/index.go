// Package search maintains a Bleve full-text index over the tag
// vocabulary, used to retrieve correction candidates for misspelled or
// unknown tags.
package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// VocabIndex wraps a Bleve index with vocabulary-specific operations.
//
// Thread safety: all public methods are safe for concurrent use. The
// mutex protects against index corruption during rebuild operations.
type VocabIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the vocabulary index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (uses discard if nil)
}

// mappingVersion is incremented whenever the index mapping changes.
// A mismatch on startup triggers an automatic rebuild.
const mappingVersion = "1"

// NewVocabIndex creates or opens a vocabulary index. A corrupted or
// outdated index is removed and recreated; callers reindex from the
// store afterwards.
func NewVocabIndex(opts Options) (*VocabIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	indexPath := filepath.Join(opts.DataPath, "vocab.bleve")
	versionPath := filepath.Join(opts.DataPath, "vocab.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		if readErr != nil || string(existingVersion) != mappingVersion {
			logger.Info("vocabulary index mapping outdated, rebuilding",
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, recreating",
				"path", indexPath,
				"error", err,
			)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0644); writeErr != nil {
			logger.Warn("failed to write index version file", "error", writeErr)
		}
		logger.Info("created vocabulary index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened vocabulary index", "path", indexPath)
	}

	return &VocabIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// Close closes the index and releases resources.
func (v *VocabIndex) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.index.Close()
}

// IndexTag indexes a single tag document.
func (v *VocabIndex) IndexTag(doc *TagDocument) error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.index.Index(doc.ID, doc.ToMap())
}

// IndexTags indexes multiple tag documents in batches.
func (v *VocabIndex) IndexTags(docs []*TagDocument) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	const batchSize = 500

	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))

		batch := v.index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}

		if err := v.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// DeleteTag removes a tag document from the index.
func (v *VocabIndex) DeleteTag(id string) error {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.index.Delete(id)
}

// DocumentCount returns the total number of indexed tags.
func (v *VocabIndex) DocumentCount() (uint64, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.index.DocCount()
}

// Rebuild drops the existing index and creates a fresh one. Acquires an
// exclusive lock and blocks all other operations; callers reindex the
// vocabulary afterwards.
func (v *VocabIndex) Rebuild() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(v.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(v.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	v.index = index
	v.logger.Info("rebuilt vocabulary index", "path", v.path)

	return nil
}
