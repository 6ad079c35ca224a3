// Package backup snapshots the vocabulary database to timestamped JSON
// files and restores from them. The album catalog is source data and is
// not included; re-importing the CSV export rebuilds it.
package backup

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/albumatlas/albumatlas-server/internal/domain"
	"github.com/albumatlas/albumatlas-server/internal/store"
)

const fileSuffix = ".albumatlas.json"

// Snapshot is the serialized vocabulary state.
type Snapshot struct {
	Version   string               `json:"version"`
	CreatedAt time.Time            `json:"created_at"`
	Tags      []*domain.Tag        `json:"tags"`
	Relations []domain.TagRelation `json:"relations"`
	Unmapped  []domain.UnmappedTag `json:"unmapped"`
	Changes   []*domain.TagChange  `json:"changes"`
	Versions  []*domain.TagVersion `json:"tag_versions"`
}

// Info describes one backup file.
type Info struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Service manages backup creation, listing, and restore.
type Service struct {
	vocab     *store.Store
	backupDir string
	version   string
	logger    *slog.Logger
}

// NewService creates a backup service.
func NewService(vocab *store.Store, backupDir, version string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		vocab:     vocab,
		backupDir: backupDir,
		version:   version,
		logger:    logger,
	}
}

// Create writes a new snapshot of the vocabulary database.
func (s *Service) Create(ctx context.Context) (*Info, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := snapshot.CreatedAt.Format("2006-01-02-150405")
	path := filepath.Join(s.backupDir, "backup-"+timestamp+fileSuffix)

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}

	s.logger.Info("backup complete",
		"path", path,
		"tags", len(snapshot.Tags),
		"relations", len(snapshot.Relations),
		"changes", len(snapshot.Changes))

	return &Info{
		ID:        "backup-" + timestamp,
		Path:      path,
		Size:      int64(len(data)),
		CreatedAt: snapshot.CreatedAt,
	}, nil
}

// snapshot collects the full vocabulary state.
func (s *Service) snapshot(ctx context.Context) (*Snapshot, error) {
	tags, err := s.vocab.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	relations, err := s.vocab.ListRelations(ctx)
	if err != nil {
		return nil, err
	}
	unmapped, err := s.vocab.ListUnmappedTags(ctx)
	if err != nil {
		return nil, err
	}
	changes, err := s.vocab.ListChanges(ctx)
	if err != nil {
		return nil, err
	}
	versions, err := s.vocab.ListAllVersions(ctx)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Version:   s.version,
		CreatedAt: time.Now(),
		Tags:      tags,
		Relations: relations,
		Unmapped:  unmapped,
		Changes:   changes,
		Versions:  versions,
	}, nil
}

// List returns all available backups, newest first.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			ID:        strings.TrimSuffix(entry.Name(), fileSuffix),
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Get returns a backup by ID.
func (s *Service) Get(ctx context.Context, id string) (*Info, error) {
	path := filepath.Join(s.backupDir, id+fileSuffix)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}

	return &Info{
		ID:        id,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// Delete removes a backup file.
func (s *Service) Delete(ctx context.Context, id string) error {
	path := filepath.Join(s.backupDir, id+fileSuffix)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return err
	}
	return os.Remove(path)
}

// Restore writes a snapshot's contents back into the vocabulary
// database. Existing tags with the same normalized name are overwritten;
// the relation graph is replaced wholesale. Restore does not rebuild
// analysis or the search index; callers trigger that afterwards.
func (s *Service) Restore(ctx context.Context, id string) (*Snapshot, error) {
	path := filepath.Join(s.backupDir, id+fileSuffix)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	for _, tag := range snapshot.Tags {
		if err := s.restoreTag(ctx, tag); err != nil {
			return nil, err
		}
	}
	if err := s.vocab.ReplaceRelations(ctx, snapshot.Relations); err != nil {
		return nil, err
	}
	for i := range snapshot.Unmapped {
		if err := s.vocab.RestoreUnmappedTag(ctx, &snapshot.Unmapped[i]); err != nil {
			return nil, err
		}
	}
	for _, change := range snapshot.Changes {
		if err := s.vocab.AppendChange(change); err != nil {
			return nil, err
		}
	}
	for _, version := range snapshot.Versions {
		if err := s.vocab.AppendVersion(version); err != nil {
			return nil, err
		}
	}

	s.logger.Info("backup restored", "id", id, "tags", len(snapshot.Tags))
	return &snapshot, nil
}

// restoreTag upserts one tag record, preserving its snapshot ID when the
// normalized name is new.
func (s *Service) restoreTag(ctx context.Context, tag *domain.Tag) error {
	existing, err := s.vocab.GetTagByName(ctx, tag.NormalizedName)
	if err != nil {
		if errors.Is(err, store.ErrTagNotFound) {
			return s.vocab.CreateTag(ctx, tag)
		}
		return err
	}

	tag.ID = existing.ID
	return s.vocab.UpdateTag(ctx, tag)
}
