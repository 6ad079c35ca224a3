package store

import (
	"context"
	"fmt"

	"github.com/albumatlas/albumatlas-server/internal/domain"
)

// Key prefixes for the append-only review journal. Change keys embed the
// creation timestamp so lexicographic key order is chronological order;
// version keys embed the zero-padded version number so replay is in
// version order.
const (
	changePrefix  = "change:" // change:{unixnano}:{id} → TagChange JSON
	versionPrefix = "ver:"    // ver:{tag}|{version} → TagVersion JSON
)

// AppendChange journals a change record. Called on creation and again on
// resolution; the key is stable per change, so the journal always holds
// the latest state while key order preserves creation order.
func (s *Store) AppendChange(change *domain.TagChange) error {
	key := fmt.Sprintf("%s%020d:%s", changePrefix, change.CreatedAt.UnixNano(), change.ID)
	return s.set([]byte(key), change)
}

// ListChanges replays the journal in creation order.
func (s *Store) ListChanges(ctx context.Context) ([]*domain.TagChange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var changes []*domain.TagChange
	err := scanPrefix(s, changePrefix, func(c *domain.TagChange) {
		changes = append(changes, c)
	})
	if err != nil {
		return nil, err
	}
	return changes, nil
}

// AppendVersion journals a tag version record.
func (s *Store) AppendVersion(version *domain.TagVersion) error {
	key := fmt.Sprintf("%s%s|%06d", versionPrefix, version.TagName, version.Version)
	return s.set([]byte(key), version)
}

// ListAllVersions replays every tag's version history, grouped by tag
// with per-tag version order preserved.
func (s *Store) ListAllVersions(ctx context.Context) ([]*domain.TagVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var versions []*domain.TagVersion
	err := scanPrefix(s, versionPrefix, func(v *domain.TagVersion) {
		versions = append(versions, v)
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// ListVersions replays a tag's version history in version order.
func (s *Store) ListVersions(ctx context.Context, tag string) ([]*domain.TagVersion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var versions []*domain.TagVersion
	err := scanPrefix(s, versionPrefix+tag+"|", func(v *domain.TagVersion) {
		versions = append(versions, v)
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}
