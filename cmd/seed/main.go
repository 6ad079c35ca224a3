// Package main provides a tool to seed the engine with sample album data.
//
// This fills the catalog with a small, messy tag corpus (run-together
// spellings, compound genres, stopwords) so normalization, analysis,
// and review have something realistic to chew on.
//
// Usage:
//
//	DATA_PATH=~/AlbumAtlas/data go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/albumatlas/albumatlas-server/internal/analysis"
	"github.com/albumatlas/albumatlas-server/internal/domain"
	"github.com/albumatlas/albumatlas-server/internal/search"
	"github.com/albumatlas/albumatlas-server/internal/service"
	"github.com/albumatlas/albumatlas-server/internal/store"
	"github.com/albumatlas/albumatlas-server/internal/store/sqlite"
	"github.com/albumatlas/albumatlas-server/internal/vocab"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/AlbumAtlas/data")
	}

	fmt.Printf("Seeding data under: %s\n", dataPath)

	vocabStore, err := store.New(filepath.Join(dataPath, "vocab"), nil)
	if err != nil {
		log.Fatalf("Failed to open vocabulary store: %v", err)
	}
	defer vocabStore.Close()

	catalog, err := sqlite.Open(filepath.Join(dataPath, "catalog.db"), nil)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer catalog.Close()

	index, err := search.NewVocabIndex(search.Options{DataPath: filepath.Join(dataPath, "search")})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	svc, err := service.NewVocabularyService(
		vocabStore, catalog, index,
		vocab.DefaultRules(), analysis.DefaultSimilarityConfig(), nil)
	if err != nil {
		log.Fatalf("Failed to build vocabulary service: %v", err)
	}

	stats, err := svc.ImportAlbums(context.Background(), sampleAlbums())
	if err != nil {
		log.Fatalf("Failed to import sample albums: %v", err)
	}

	fmt.Printf("Seeded %d albums: %d tag sightings, %d new tags, %d unmapped\n",
		stats.Albums, stats.TagOccurrences, stats.NewTags, stats.Unmapped)
}

// sampleAlbums returns a deliberately inconsistent corpus.
func sampleAlbums() []*domain.AlbumTags {
	return []*domain.AlbumTags{
		{AlbumID: 1, Title: "Hvis lyset tar oss", Artist: "Burzum", Year: 1994,
			RawTags: []string{"Black Metal", "Atmospheric", "Norwegian", "lo-fi"}},
		{AlbumID: 2, Title: "De Mysteriis Dom Sathanas", Artist: "Mayhem", Year: 1994,
			RawTags: []string{"blackmetal", "True Norwegian Black Metal"}},
		{AlbumID: 3, Title: "Blessed Are the Sick", Artist: "Morbid Angel", Year: 1991,
			RawTags: []string{"Death Metal", "heavymetal"}},
		{AlbumID: 4, Title: "Slaughter of the Soul", Artist: "At the Gates", Year: 1995,
			RawTags: []string{"Melodic Death Metal", "Swedish"}},
		{AlbumID: 5, Title: "Obscura", Artist: "Gorguts", Year: 1998,
			RawTags: []string{"Technical", "death metal", "avantgarde", "music"}},
		{AlbumID: 6, Title: "Conqueror", Artist: "Emperor", Year: 1997,
			RawTags: []string{"Symphonic Black Metal", "Norwegian"}},
		{AlbumID: 7, Title: "Bitches Brew", Artist: "Miles Davis", Year: 1970,
			RawTags: []string{"Jazz Fusion", "experimental"}},
		{AlbumID: 8, Title: "In the Court of the Crimson King", Artist: "King Crimson", Year: 1969,
			RawTags: []string{"progrock", "Progressive Rock"}},
		{AlbumID: 9, Title: "Laughing Stock", Artist: "Talk Talk", Year: 1991,
			RawTags: []string{"postrock", "ambient", "experimental"}},
		{AlbumID: 10, Title: "Nespithe", Artist: "Demilich", Year: 1993,
			RawTags: []string{"Death Metal", "Technical", "Finnish", "genre"}},
	}
}
