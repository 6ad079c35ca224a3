package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albumatlas/albumatlas-server/internal/domain"
	"github.com/albumatlas/albumatlas-server/internal/review"
)

var _ review.CandidateSearcher = (*VocabIndex)(nil)

// setupTestIndex creates a temporary vocabulary index for testing.
func setupTestIndex(t *testing.T) *VocabIndex {
	t.Helper()

	index, err := NewVocabIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

// seedVocab indexes a small vocabulary fixture.
func seedVocab(t *testing.T, index *VocabIndex) {
	t.Helper()

	docs := []*TagDocument{
		{ID: "tag-1", Name: "black metal", Aliases: []string{"blackmetal", "blck metal"}, Category: "metal", Frequency: 42},
		{ID: "tag-2", Name: "death metal", Category: "metal", Frequency: 30},
		{ID: "tag-3", Name: "prog rock", Aliases: []string{"progrock"}, Category: "rock", Frequency: 25},
		{ID: "tag-4", Name: "jazz", Category: "fusion", Frequency: 12},
	}
	require.NoError(t, index.IndexTags(docs))
}

func TestNewVocabIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndexTag(t *testing.T) {
	index := setupTestIndex(t)

	doc := FromTag(&domain.Tag{
		ID:             "tag-1",
		Name:           "Black Metal",
		NormalizedName: "black metal",
		Category:       domain.CategoryMetal,
		Frequency:      5,
	})
	require.NoError(t, index.IndexTag(doc))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchByName(t *testing.T) {
	index := setupTestIndex(t)
	seedVocab(t, index)

	hits, err := index.Search(context.Background(), Params{Query: "black metal"})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "black metal", hits[0].Name)
	assert.Equal(t, "metal", hits[0].Category)
}

func TestSearchByAlias(t *testing.T) {
	index := setupTestIndex(t)
	seedVocab(t, index)

	hits, err := index.Search(context.Background(), Params{Query: "blackmetal"})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "black metal", hits[0].Name)
}

func TestSearchFuzzyTypo(t *testing.T) {
	index := setupTestIndex(t)
	seedVocab(t, index)

	hits, err := index.Search(context.Background(), Params{Query: "jaz"})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "jazz", hits[0].Name)
}

func TestSearchCategoryFilter(t *testing.T) {
	index := setupTestIndex(t)
	seedVocab(t, index)

	hits, err := index.Search(context.Background(), Params{Query: "metal", Category: "metal"})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Equal(t, "metal", h.Category)
	}
}

func TestCandidates(t *testing.T) {
	index := setupTestIndex(t)
	seedVocab(t, index)

	names, err := index.Candidates("black metal", 5)
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "black metal", names[0])
	assert.LessOrEqual(t, len(names), 5)
}

func TestCandidatesEmptyIndex(t *testing.T) {
	index := setupTestIndex(t)

	names, err := index.Candidates("black metal", 5)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDeleteTag(t *testing.T) {
	index := setupTestIndex(t)
	seedVocab(t, index)

	require.NoError(t, index.DeleteTag("tag-4"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestRebuildEmptiesIndex(t *testing.T) {
	index := setupTestIndex(t)
	seedVocab(t, index)

	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
