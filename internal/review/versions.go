package review

import (
	"log/slog"
	"time"

	"github.com/albumatlas/albumatlas-server/internal/domain"
	"github.com/albumatlas/albumatlas-server/internal/id"
)

// VersionJournal receives appended versions for durable storage.
type VersionJournal interface {
	AppendVersion(version *domain.TagVersion) error
}

// Versions keeps the append-only per-tag version history.
//
// Version numbers per tag are gapless: 1 + the current maximum, assigned
// at append time. A single writer is assumed; concurrent AddTagVersion
// calls for the same tag must be serialized by the caller or the gapless
// invariant breaks.
type Versions struct {
	byTag   map[string][]*domain.TagVersion
	journal VersionJournal
	logger  *slog.Logger
}

// NewVersions creates an empty version history. journal may be nil.
func NewVersions(journal VersionJournal, logger *slog.Logger) *Versions {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Versions{
		byTag:   make(map[string][]*domain.TagVersion),
		journal: journal,
		logger:  logger,
	}
}

// Restore primes the history from journaled versions, expected in
// per-tag version order. Nothing is re-journaled.
func (v *Versions) Restore(versions []*domain.TagVersion) {
	for _, version := range versions {
		v.byTag[version.TagName] = append(v.byTag[version.TagName], version)
	}
}

// AddTagVersion appends a new version for the tag and returns it.
func (v *Versions) AddTagVersion(tag, notes string) (*domain.TagVersion, error) {
	versionID, err := id.Generate("ver")
	if err != nil {
		return nil, err
	}

	version := &domain.TagVersion{
		ID:        versionID,
		TagName:   tag,
		Version:   len(v.byTag[tag]) + 1,
		Notes:     notes,
		CreatedAt: time.Now(),
	}
	v.byTag[tag] = append(v.byTag[tag], version)

	if v.journal != nil {
		if err := v.journal.AppendVersion(version); err != nil {
			v.logger.Error("version journal append failed", "tag", tag, "version", version.Version, "error", err)
		}
	}

	copied := *version
	return &copied, nil
}

// TagVersions returns a snapshot of a tag's history in version order.
func (v *Versions) TagVersions(tag string) []*domain.TagVersion {
	history := v.byTag[tag]
	out := make([]*domain.TagVersion, 0, len(history))
	for _, version := range history {
		copied := *version
		out = append(out, &copied)
	}
	return out
}

// LatestTagVersion returns the newest version for a tag, or nil when the
// tag has no versions.
func (v *Versions) LatestTagVersion(tag string) *domain.TagVersion {
	history := v.byTag[tag]
	if len(history) == 0 {
		return nil
	}
	copied := *history[len(history)-1]
	return &copied
}
