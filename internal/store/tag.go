package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/albumatlas/albumatlas-server/internal/domain"
	"github.com/albumatlas/albumatlas-server/internal/id"
)

// Key prefixes for vocabulary storage.
const (
	tagPrefix       = "tag:"           // tag:{id} → Tag JSON
	tagByNamePrefix = "idx:tags:name:" // idx:tags:name:{normalized} → tagID
	relationPrefix  = "rel:"           // rel:{tag1}|{tag2} → TagRelation JSON
	unmappedPrefix  = "unmapped:"      // unmapped:{raw} → UnmappedTag JSON
)

// Vocabulary errors.
var (
	ErrTagNotFound = errors.New("tag not found")
	ErrTagExists   = errors.New("tag already exists")
)

// CreateTag creates a new vocabulary tag. The normalized name must be
// unique across the vocabulary.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		// One tag per normalized name.
		nameKey := []byte(tagByNamePrefix + t.NormalizedName)
		if _, err := txn.Get(nameKey); err == nil {
			return ErrTagExists
		}

		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal tag: %w", err)
		}
		key := []byte(tagPrefix + t.ID)
		if err := txn.Set(key, data); err != nil {
			return err
		}

		return txn.Set(nameKey, []byte(t.ID))
	})
}

// UpdateTag rewrites an existing tag record. The normalized name is
// immutable; renames go through the review queue and create a new tag.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(tagPrefix + t.ID)
	ok, err := s.exists(key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTagNotFound
	}

	t.Touch()
	return s.set(key, t)
}

// GetTagByID retrieves a tag by ID.
func (s *Store) GetTagByID(ctx context.Context, tagID string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t domain.Tag
	err := s.get([]byte(tagPrefix+tagID), &t)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTagByName retrieves a tag by its normalized name.
func (s *Store) GetTagByName(ctx context.Context, normalized string) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tagID string
	nameKey := []byte(tagByNamePrefix + normalized)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nameKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTagNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			tagID = string(val)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return s.GetTagByID(ctx, tagID)
}

// FindOrCreateTag finds an existing tag by normalized name or creates a
// new one. Returns (tag, created, error).
func (s *Store) FindOrCreateTag(ctx context.Context, normalized, display string) (*domain.Tag, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	existing, err := s.GetTagByName(ctx, normalized)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrTagNotFound) {
		return nil, false, err
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	t := &domain.Tag{
		ID:             tagID,
		Name:           display,
		NormalizedName: normalized,
		Canonical:      true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.CreateTag(ctx, t); err != nil {
		if errors.Is(err, ErrTagExists) {
			// Another writer created it between the read and the write.
			existing, err := s.GetTagByName(ctx, normalized)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return t, true, nil
}

// ListTags returns all tags ordered by frequency (descending), then by
// normalized name for stability.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tags []*domain.Tag
	err := scanPrefix(s, tagPrefix, func(t *domain.Tag) {
		tags = append(tags, t)
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Frequency != tags[j].Frequency {
			return tags[i].Frequency > tags[j].Frequency
		}
		return tags[i].NormalizedName < tags[j].NormalizedName
	})

	return tags, nil
}

// ExcludeTag soft-deletes a tag. The record and its history survive;
// excluded tags are skipped by vocabulary consumers.
func (s *Store) ExcludeTag(ctx context.Context, tagID string) error {
	t, err := s.GetTagByID(ctx, tagID)
	if err != nil {
		return err
	}

	t.Excluded = true
	return s.UpdateTag(ctx, t)
}

// relationKey builds the canonical key for an unordered tag pair.
func relationKey(tag1, tag2 string) []byte {
	if tag2 < tag1 {
		tag1, tag2 = tag2, tag1
	}
	return []byte(relationPrefix + tag1 + "|" + tag2)
}

// ReplaceRelations atomically swaps the stored relation graph for a new
// one. Relations are always recomputed wholesale from the corpus.
func (s *Store) ReplaceRelations(ctx context.Context, relations []domain.TagRelation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Collect existing relation keys first; badger forbids deleting
	// while iterating in the same transaction pass.
	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(relationPrefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return err
		}
	}
	for i := range relations {
		data, err := json.Marshal(&relations[i])
		if err != nil {
			return fmt.Errorf("marshal relation: %w", err)
		}
		if err := wb.Set(relationKey(relations[i].Tag1ID, relations[i].Tag2ID), data); err != nil {
			return err
		}
	}

	return wb.Flush()
}

// ListRelations returns every stored relation edge.
func (s *Store) ListRelations(ctx context.Context) ([]domain.TagRelation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var relations []domain.TagRelation
	err := scanPrefix(s, relationPrefix, func(r *domain.TagRelation) {
		relations = append(relations, *r)
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(relations, func(i, j int) bool {
		if relations[i].Tag1ID != relations[j].Tag1ID {
			return relations[i].Tag1ID < relations[j].Tag1ID
		}
		return relations[i].Tag2ID < relations[j].Tag2ID
	})

	return relations, nil
}

// RecordUnmappedTag tracks a raw tag string no rule covered, bumping its
// album count on repeat sightings.
func (s *Store) RecordUnmappedTag(ctx context.Context, raw string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(unmappedPrefix + raw)

	return s.db.Update(func(txn *badger.Txn) error {
		u := domain.UnmappedTag{RawValue: raw, FirstSeen: time.Now()}

		item, err := txn.Get(key)
		if err == nil {
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &u)
			}); err != nil {
				return err
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		u.AlbumCount++

		data, err := json.Marshal(&u)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// ListUnmappedTags returns unresolved raw tags ordered by album count
// (descending), the curation priority order.
func (s *Store) ListUnmappedTags(ctx context.Context) ([]domain.UnmappedTag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var unmapped []domain.UnmappedTag
	err := scanPrefix(s, unmappedPrefix, func(u *domain.UnmappedTag) {
		unmapped = append(unmapped, *u)
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(unmapped, func(i, j int) bool {
		if unmapped[i].AlbumCount != unmapped[j].AlbumCount {
			return unmapped[i].AlbumCount > unmapped[j].AlbumCount
		}
		return unmapped[i].RawValue < unmapped[j].RawValue
	})

	return unmapped, nil
}

// RestoreUnmappedTag writes an unmapped record verbatim, preserving its
// album count. Used by backup restore; normal ingestion goes through
// RecordUnmappedTag.
func (s *Store) RestoreUnmappedTag(ctx context.Context, u *domain.UnmappedTag) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set([]byte(unmappedPrefix+u.RawValue), u)
}

// ResolveUnmappedTag removes a raw tag from the unmapped set, typically
// after a curator adds an alias rule for it.
func (s *Store) ResolveUnmappedTag(ctx context.Context, raw string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.delete([]byte(unmappedPrefix + raw))
}
