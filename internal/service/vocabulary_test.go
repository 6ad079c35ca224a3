package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albumatlas/albumatlas-server/internal/analysis"
	"github.com/albumatlas/albumatlas-server/internal/bitindex"
	"github.com/albumatlas/albumatlas-server/internal/domain"
	"github.com/albumatlas/albumatlas-server/internal/review"
	"github.com/albumatlas/albumatlas-server/internal/search"
	"github.com/albumatlas/albumatlas-server/internal/store"
	"github.com/albumatlas/albumatlas-server/internal/store/sqlite"
	"github.com/albumatlas/albumatlas-server/internal/vocab"
)

// setupTestServices creates a vocabulary and review service backed by
// temp stores.
func setupTestServices(t *testing.T) (*VocabularyService, *ReviewService) {
	t.Helper()
	dir := t.TempDir()

	vocabStore, err := store.New(filepath.Join(dir, "vocab"), nil)
	require.NoError(t, err)

	catalog, err := sqlite.Open(filepath.Join(dir, "catalog.db"), nil)
	require.NoError(t, err)

	index, err := search.NewVocabIndex(search.Options{DataPath: dir})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = index.Close()
		_ = catalog.Close()
		_ = vocabStore.Close()
	})

	vocabService, err := NewVocabularyService(
		vocabStore, catalog, index,
		vocab.DefaultRules(), analysis.DefaultSimilarityConfig(), nil)
	require.NoError(t, err)

	reviewService, err := NewReviewService(
		context.Background(), vocabService, vocabStore,
		review.DefaultWorkflowConfig(), review.DefaultMetricsConfig(), nil)
	require.NoError(t, err)

	return vocabService, reviewService
}

func testAlbums() []*domain.AlbumTags {
	return []*domain.AlbumTags{
		{AlbumID: 1, Title: "Hvis lyset tar oss", Artist: "Burzum", Year: 1994,
			RawTags: []string{"Black Metal", "Atmospheric", "Norwegian"}},
		{AlbumID: 2, Title: "Blessed Are the Sick", Artist: "Morbid Angel", Year: 1991,
			RawTags: []string{"Death Metal", "Black Metal"}},
		{AlbumID: 3, Title: "Bitches Brew", Artist: "Miles Davis", Year: 1970,
			RawTags: []string{"Jazz", "Fusion", "music"}},
	}
}

func findTag(t *testing.T, tags []*domain.Tag, normalized string) *domain.Tag {
	t.Helper()
	for _, tag := range tags {
		if tag.NormalizedName == normalized {
			return tag
		}
	}
	t.Fatalf("tag %q not found", normalized)
	return nil
}

func TestImportAlbums(t *testing.T) {
	vocabService, _ := setupTestServices(t)
	ctx := context.Background()

	stats, err := vocabService.ImportAlbums(ctx, testAlbums())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Albums)
	assert.Equal(t, 8, stats.TagOccurrences)
	assert.Equal(t, 6, stats.NewTags)
	assert.Equal(t, 1, stats.Unmapped) // "music" is a stopword

	tags, err := vocabService.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 6)

	blackMetal := findTag(t, tags, "black metal")
	assert.Equal(t, "Black Metal", blackMetal.Name)
	assert.Equal(t, 2, blackMetal.Frequency)
	assert.True(t, blackMetal.HasAlias("Black Metal"))
	assert.Equal(t, domain.CategoryMetal, blackMetal.Category)

	corpus := vocabService.Stats()
	assert.Equal(t, 3, corpus.AlbumCount)
	assert.Equal(t, 6, corpus.UniqueTags)
}

func TestReimportKeepsFrequencies(t *testing.T) {
	vocabService, _ := setupTestServices(t)
	ctx := context.Background()

	_, err := vocabService.ImportAlbums(ctx, testAlbums())
	require.NoError(t, err)

	// The same export again: albums upsert in place, so the rebuild must
	// pull the stored counts back to the corpus counts.
	_, err = vocabService.ImportAlbums(ctx, testAlbums())
	require.NoError(t, err)

	tags, err := vocabService.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 6)

	assert.Equal(t, 2, findTag(t, tags, "black metal").Frequency)
	assert.Equal(t, 1, findTag(t, tags, "jazz").Frequency)

	corpus := vocabService.Stats()
	assert.Equal(t, 3, corpus.AlbumCount)
}

func TestImportAlbumsEmpty(t *testing.T) {
	vocabService, _ := setupTestServices(t)

	_, err := vocabService.ImportAlbums(context.Background(), nil)
	assert.Error(t, err)
}

func TestImportRecordsUnmapped(t *testing.T) {
	vocabService, _ := setupTestServices(t)
	ctx := context.Background()

	_, err := vocabService.ImportAlbums(ctx, testAlbums())
	require.NoError(t, err)

	unmapped, err := vocabService.UnmappedTags(ctx)
	require.NoError(t, err)
	require.Len(t, unmapped, 1)
	assert.Equal(t, "music", unmapped[0].RawValue)
	assert.Equal(t, 1, unmapped[0].AlbumCount)
}

func TestImportDecomposesCompounds(t *testing.T) {
	vocabService, _ := setupTestServices(t)
	ctx := context.Background()

	_, err := vocabService.ImportAlbums(ctx, []*domain.AlbumTags{
		{AlbumID: 1, RawTags: []string{"Blackened Death Metal"}},
	})
	require.NoError(t, err)

	tags, err := vocabService.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	findTag(t, tags, "black metal")
	findTag(t, tags, "death metal")
}

func TestImportBuildsRelations(t *testing.T) {
	vocabService, _ := setupTestServices(t)
	ctx := context.Background()

	_, err := vocabService.ImportAlbums(ctx, testAlbums())
	require.NoError(t, err)

	relations, err := vocabService.Relations(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, relations)

	byPair := make(map[string]domain.TagRelation, len(relations))
	for _, rel := range relations {
		byPair[rel.Tag1ID+"|"+rel.Tag2ID] = rel
	}

	coPlayed, ok := byPair["black metal|death metal"]
	require.True(t, ok, "black metal and death metal co-occur")
	assert.Equal(t, domain.RelationRelated, coPlayed.Type)
	assert.Greater(t, coPlayed.Strength, 0.0)

	regional, ok := byPair["black metal|norwegian"]
	require.True(t, ok)
	assert.Equal(t, domain.RelationRegional, regional.Type)

	modifier, ok := byPair["atmospheric|black metal"]
	require.True(t, ok)
	assert.Equal(t, domain.RelationModifier, modifier.Type)
}

func TestImportFile(t *testing.T) {
	vocabService, _ := setupTestServices(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "albums.csv")
	csv := "id,artist,album,tags\n" +
		"1,Burzum,Filosofem,\"black metal; ambient\"\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	stats, err := vocabService.ImportFile(ctx, ImportFileRequest{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Albums)
	assert.Equal(t, 2, stats.TagOccurrences)

	tags, err := vocabService.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	findTag(t, tags, "black metal")
	findTag(t, tags, "ambient")
}

func TestImportFileValidation(t *testing.T) {
	vocabService, _ := setupTestServices(t)

	_, err := vocabService.ImportFile(context.Background(), ImportFileRequest{})
	assert.Error(t, err)
}

func TestNormalizeAndExpand(t *testing.T) {
	vocabService, _ := setupTestServices(t)

	assert.Equal(t, "black metal", vocabService.NormalizeTag("Blackmetal"))
	assert.Equal(t, "", vocabService.NormalizeTag("music"))
	assert.Equal(t,
		[]string{"black metal", "death metal"},
		vocabService.ExpandTag("Blackened Death Metal"))
}

func TestReloadRules(t *testing.T) {
	vocabService, _ := setupTestServices(t)

	rules := vocab.DefaultRules()
	rules.Aliases["war metal"] = "black metal"
	require.NoError(t, vocabService.ReloadRules(rules))

	assert.Equal(t, "black metal", vocabService.NormalizeTag("War Metal"))
}

func TestSearchTags(t *testing.T) {
	vocabService, _ := setupTestServices(t)
	ctx := context.Background()

	_, err := vocabService.ImportAlbums(ctx, testAlbums())
	require.NoError(t, err)

	hits, err := vocabService.SearchTags(ctx, "black", "", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "Black Metal", hits[0].Name)

	_, err = vocabService.SearchTags(ctx, "", "", 10)
	assert.Error(t, err)
}

func TestExcludeTag(t *testing.T) {
	vocabService, _ := setupTestServices(t)
	ctx := context.Background()

	_, err := vocabService.ImportAlbums(ctx, testAlbums())
	require.NoError(t, err)

	tags, err := vocabService.Tags(ctx)
	require.NoError(t, err)
	jazz := findTag(t, tags, "jazz")

	require.NoError(t, vocabService.ExcludeTag(ctx, ExcludeTagRequest{TagID: jazz.ID}))

	tags, err = vocabService.Tags(ctx)
	require.NoError(t, err)
	assert.True(t, findTag(t, tags, "jazz").Excluded)

	hits, err := vocabService.SearchTags(ctx, "jazz", "", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFilterAlbums(t *testing.T) {
	vocabService, _ := setupTestServices(t)
	ctx := context.Background()

	_, err := vocabService.ImportAlbums(ctx, testAlbums())
	require.NoError(t, err)

	// Albums tagged black metal but not death metal.
	expr := bitindex.AndExpr{
		Left:  bitindex.TagExpr{Tag: "black metal"},
		Right: bitindex.NotExpr{Expr: bitindex.TagExpr{Tag: "death metal"}},
	}
	ids, err := vocabService.FilterAlbums(ctx, expr)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)

	counts, err := vocabService.FilterCounts(ctx, bitindex.TagExpr{Tag: "black metal"},
		[]string{"atmospheric", "jazz"})
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, bitindex.TagCount{Tag: "atmospheric", Count: 1}, counts[0])
	assert.Equal(t, bitindex.TagCount{Tag: "jazz", Count: 0}, counts[1])
}

func TestSimilarTags(t *testing.T) {
	vocabService, _ := setupTestServices(t)
	ctx := context.Background()

	_, err := vocabService.ImportAlbums(ctx, testAlbums())
	require.NoError(t, err)

	similar := vocabService.SimilarTags("black metal", 0.1)
	require.NotEmpty(t, similar)

	names := make([]string, 0, len(similar))
	for _, ts := range similar {
		names = append(names, ts.Tag)
	}
	assert.Contains(t, names, "death metal")
}
