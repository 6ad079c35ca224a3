// Package main dumps the raw contents of the vocabulary database for
// debugging. Read-only; safe to run against a live data directory.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"github.com/albumatlas/albumatlas-server/internal/domain"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/AlbumAtlas/data")
	}
	dbPath := filepath.Join(dataPath, "vocab")

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Vocabulary Database Inspection ===")
	fmt.Println()

	countPrefix(db, "tag:", "tags", func(val []byte) string {
		var tag domain.Tag
		if err := json.Unmarshal(val, &tag); err != nil {
			return ""
		}
		return fmt.Sprintf("%-30s freq=%-4d aliases=%d excluded=%v",
			tag.NormalizedName, tag.Frequency, len(tag.Aliases), tag.Excluded)
	})

	countPrefix(db, "rel:", "relations", func(val []byte) string {
		var rel domain.TagRelation
		if err := json.Unmarshal(val, &rel); err != nil {
			return ""
		}
		return fmt.Sprintf("%s <-> %s  [%s] %.2f", rel.Tag1ID, rel.Tag2ID, rel.Type, rel.Strength)
	})

	countPrefix(db, "unmapped:", "unmapped tags", func(val []byte) string {
		var u domain.UnmappedTag
		if err := json.Unmarshal(val, &u); err != nil {
			return ""
		}
		return fmt.Sprintf("%-30s albums=%d", u.RawValue, u.AlbumCount)
	})

	countPrefix(db, "change:", "journaled changes", func(val []byte) string {
		var c domain.TagChange
		if err := json.Unmarshal(val, &c); err != nil {
			return ""
		}
		return fmt.Sprintf("%s  %s -> %s  [%s]", c.Type, c.OldValue, c.NewValue, c.Status)
	})

	countPrefix(db, "ver:", "tag versions", func(val []byte) string {
		var v domain.TagVersion
		if err := json.Unmarshal(val, &v); err != nil {
			return ""
		}
		return fmt.Sprintf("%s v%d  %s", v.TagName, v.Version, v.Notes)
	})
}

// countPrefix prints every record under a key prefix, at most 20 rows.
func countPrefix(db *badger.DB, prefix, label string, format func([]byte) string) {
	count := 0
	shown := 0
	fmt.Printf("--- %s ---\n", label)

	err := db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			count++
			if shown >= 20 {
				continue
			}
			err := it.Item().Value(func(val []byte) error {
				if line := format(val); line != "" {
					fmt.Printf("  %s\n", line)
					shown++
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan %s: %v", label, err)
	}

	fmt.Printf("total: %d\n\n", count)
}
