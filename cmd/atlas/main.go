// Package main provides the entry point for the AlbumAtlas engine.
//
// One-shot by default: import a CSV export, print the vocabulary report,
// exit. With --daemon the process stays resident so the rules watcher
// keeps hot-reloading the normalization tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/albumatlas/albumatlas-server/internal/backup"
	"github.com/albumatlas/albumatlas-server/internal/di"
	"github.com/albumatlas/albumatlas-server/internal/di/providers"
	"github.com/albumatlas/albumatlas-server/internal/logger"
	"github.com/albumatlas/albumatlas-server/internal/service"
)

func main() {
	// Declared before Bootstrap so config.LoadConfig's flag.Parse picks
	// them up alongside the config flags.
	importPath := flag.String("import", "", "CSV album export to ingest")
	report := flag.Bool("report", true, "Print the vocabulary report")
	quality := flag.Float64("quality-threshold", 0, "Low-quality report cutoff (0 = configured default)")
	backupFlag := flag.Bool("backup", false, "Snapshot the vocabulary database after the run")
	restoreID := flag.String("restore", "", "Restore a vocabulary snapshot by backup ID before the run")
	daemon := flag.Bool("daemon", false, "Stay resident after the run (rules hot-reload)")

	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	vocabService := do.MustInvoke[*service.VocabularyService](injector)
	reviewService := do.MustInvoke[*service.ReviewService](injector)

	ctx := context.Background()

	if *restoreID != "" {
		backupService := do.MustInvoke[*backup.Service](injector)
		snapshot, err := backupService.Restore(ctx, *restoreID)
		if err != nil {
			log.Error("Restore failed", "id", *restoreID, "error", err)
			shutdown(injector, log)
			os.Exit(1)
		}
		if err := vocabService.Rebuild(ctx); err != nil {
			log.Error("Rebuild after restore failed", "error", err)
			shutdown(injector, log)
			os.Exit(1)
		}
		fmt.Printf("Restored %d tags from %s\n", len(snapshot.Tags), *restoreID)
	}

	if *importPath != "" {
		stats, err := vocabService.ImportFile(ctx, service.ImportFileRequest{Path: *importPath})
		if err != nil {
			log.Error("Import failed", "path", *importPath, "error", err)
			shutdown(injector, log)
			os.Exit(1)
		}
		fmt.Printf("Imported %d albums: %d tag sightings, %d new tags, %d unmapped\n",
			stats.Albums, stats.TagOccurrences, stats.NewTags, stats.Unmapped)
	}

	if *report {
		if err := printReport(ctx, vocabService, reviewService, *quality); err != nil {
			log.Error("Report failed", "error", err)
			shutdown(injector, log)
			os.Exit(1)
		}
	}

	if *backupFlag {
		backupService := do.MustInvoke[*backup.Service](injector)
		info, err := backupService.Create(ctx)
		if err != nil {
			log.Error("Backup failed", "error", err)
			shutdown(injector, log)
			os.Exit(1)
		}
		fmt.Printf("Backup written: %s (%d bytes)\n", info.Path, info.Size)
	}

	if *daemon {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down gracefully...")
	}

	shutdown(injector, log)
}

// printReport writes the corpus summary to stdout.
func printReport(ctx context.Context, vocabService *service.VocabularyService, reviewService *service.ReviewService, qualityThreshold float64) error {
	stats := vocabService.Stats()
	fmt.Printf("\n=== Vocabulary Report ===\n")
	fmt.Printf("Albums: %d  Unique tags: %d  Occurrences: %d  Avg tags/album: %.1f\n",
		stats.AlbumCount, stats.UniqueTags, stats.TotalOccurrences, stats.AverageTags)

	tags, err := vocabService.Tags(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\nTop tags:\n")
	for i, tag := range tags {
		if i == 10 {
			break
		}
		fmt.Printf("  %-30s %4d  [%s]\n", tag.NormalizedName, tag.Frequency, tag.Category)
	}

	unmapped, err := vocabService.UnmappedTags(ctx)
	if err != nil {
		return err
	}
	if len(unmapped) > 0 {
		fmt.Printf("\nUnmapped tags (%d):\n", len(unmapped))
		for i, u := range unmapped {
			if i == 10 {
				break
			}
			fmt.Printf("  %-30s seen on %d albums\n", u.RawValue, u.AlbumCount)
		}
	}

	lowQuality := reviewService.QualityReport(qualityThreshold)
	if len(lowQuality) > 0 {
		fmt.Printf("\nTags needing review (%d):\n", len(lowQuality))
		for i, score := range lowQuality {
			if i == 10 {
				break
			}
			fmt.Printf("  %-30s overall %.2f (consistency %.2f, relationships %.2f)\n",
				score.Tag, score.Overall, score.Consistency, score.RelationshipStrength)
		}
	}

	if pending := reviewService.PendingChanges(); len(pending) > 0 {
		fmt.Printf("\nPending changes: %d\n", len(pending))
	}

	return nil
}

// shutdown closes all services, then the storage handles that use
// wrapper types.
func shutdown(injector *do.RootScope, log *logger.Logger) {
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	if handle, err := do.Invoke[*providers.SearchIndexHandle](injector); err == nil {
		if err := handle.Shutdown(); err != nil {
			log.Error("Failed to close search index", "error", err)
		}
	}
	if handle, err := do.Invoke[*providers.CatalogHandle](injector); err == nil {
		if err := handle.Shutdown(); err != nil {
			log.Error("Failed to close catalog", "error", err)
		}
	}
	if handle, err := do.Invoke[*providers.VocabStoreHandle](injector); err == nil {
		if err := handle.Shutdown(); err != nil {
			log.Error("Failed to close vocabulary database", "error", err)
		}
	}
}
