package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albumatlas/albumatlas-server/internal/domain"
	"github.com/albumatlas/albumatlas-server/internal/review"
)

// The store backs the in-memory review structures.
var (
	_ review.Journal        = (*Store)(nil)
	_ review.VersionJournal = (*Store)(nil)
)

func TestChangeJournalReplaysInCreationOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, changeID := range []string{"chg-b", "chg-a", "chg-c"} {
		change := &domain.TagChange{
			ID:        changeID,
			Type:      domain.ChangeRename,
			OldValue:  "old",
			NewValue:  "new",
			Status:    domain.ChangePending,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, s.AppendChange(change))
	}

	changes, err := s.ListChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 3)
	// Creation order, not ID order.
	assert.Equal(t, "chg-b", changes[0].ID)
	assert.Equal(t, "chg-a", changes[1].ID)
	assert.Equal(t, "chg-c", changes[2].ID)
}

func TestChangeJournalUpdatesInPlace(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	change := &domain.TagChange{
		ID:        "chg-1",
		Type:      domain.ChangeRename,
		Status:    domain.ChangePending,
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.AppendChange(change))

	// Resolution re-journals the same change with its final status.
	change.Status = domain.ChangeApproved
	change.Reviewer = "alex"
	require.NoError(t, s.AppendChange(change))

	changes, err := s.ListChanges(ctx)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, domain.ChangeApproved, changes[0].Status)
	assert.Equal(t, "alex", changes[0].Reviewer)
}

func TestVersionJournalPerTag(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.AppendVersion(&domain.TagVersion{
			ID:        "ver-bm-" + string(rune('0'+i)),
			TagName:   "black metal",
			Version:   i,
			CreatedAt: time.Now(),
		}))
	}
	require.NoError(t, s.AppendVersion(&domain.TagVersion{
		ID:      "ver-jazz-1",
		TagName: "jazz",
		Version: 1,
	}))

	versions, err := s.ListVersions(ctx, "black metal")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, i+1, v.Version)
		assert.Equal(t, "black metal", v.TagName)
	}

	jazz, err := s.ListVersions(ctx, "jazz")
	require.NoError(t, err)
	assert.Len(t, jazz, 1)
}

func TestVersionJournalUnknownTag(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	versions, err := s.ListVersions(ctx, "zydeco")
	require.NoError(t, err)
	assert.Empty(t, versions)
}
