package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albumatlas/albumatlas-server/internal/domain"
)

func TestVersionNumbersGapless(t *testing.T) {
	v := NewVersions(nil, nil)

	for i := 1; i <= 3; i++ {
		version, err := v.AddTagVersion("black metal", "")
		require.NoError(t, err)
		assert.Equal(t, i, version.Version)
	}

	history := v.TagVersions("black metal")
	require.Len(t, history, 3)
	for i, version := range history {
		assert.Equal(t, i+1, version.Version)
		assert.Equal(t, "black metal", version.TagName)
		assert.NotEmpty(t, version.ID)
	}
}

func TestVersionCountersPerTag(t *testing.T) {
	v := NewVersions(nil, nil)

	_, err := v.AddTagVersion("black metal", "")
	require.NoError(t, err)
	_, err = v.AddTagVersion("black metal", "")
	require.NoError(t, err)

	jazz, err := v.AddTagVersion("jazz", "")
	require.NoError(t, err)
	assert.Equal(t, 1, jazz.Version, "counters are independent per tag")
}

func TestLatestTagVersion(t *testing.T) {
	v := NewVersions(nil, nil)

	assert.Nil(t, v.LatestTagVersion("black metal"))

	_, err := v.AddTagVersion("black metal", "initial")
	require.NoError(t, err)
	latest, err := v.AddTagVersion("black metal", "renamed from blck metal")
	require.NoError(t, err)

	got := v.LatestTagVersion("black metal")
	require.NotNil(t, got)
	assert.Equal(t, latest.Version, got.Version)
	assert.Equal(t, "renamed from blck metal", got.Notes)
}

func TestVersionSnapshotsAreCopies(t *testing.T) {
	v := NewVersions(nil, nil)

	_, err := v.AddTagVersion("black metal", "initial")
	require.NoError(t, err)

	snapshot := v.TagVersions("black metal")
	snapshot[0].Notes = "tampered"
	assert.Equal(t, "initial", v.TagVersions("black metal")[0].Notes)
}

type recordingVersionJournal struct {
	appended []*domain.TagVersion
}

func (r *recordingVersionJournal) AppendVersion(version *domain.TagVersion) error {
	r.appended = append(r.appended, version)
	return nil
}

func TestVersionJournalReceivesAppends(t *testing.T) {
	journal := &recordingVersionJournal{}
	v := NewVersions(journal, nil)

	_, err := v.AddTagVersion("black metal", "")
	require.NoError(t, err)
	_, err = v.AddTagVersion("jazz", "")
	require.NoError(t, err)

	require.Len(t, journal.appended, 2)
	assert.Equal(t, 1, journal.appended[0].Version)
}
