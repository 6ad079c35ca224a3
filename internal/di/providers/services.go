package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/albumatlas/albumatlas-server/internal/analysis"
	"github.com/albumatlas/albumatlas-server/internal/config"
	"github.com/albumatlas/albumatlas-server/internal/logger"
	"github.com/albumatlas/albumatlas-server/internal/review"
	"github.com/albumatlas/albumatlas-server/internal/service"
	"github.com/albumatlas/albumatlas-server/internal/vocab"
)

// ProvideVocabularyService provides the vocabulary service with the
// analysis view rebuilt from whatever the catalog already holds.
func ProvideVocabularyService(i do.Injector) (*service.VocabularyService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	vocabStore := do.MustInvoke[*VocabStoreHandle](i)
	catalog := do.MustInvoke[*CatalogHandle](i)
	index := do.MustInvoke[*SearchIndexHandle](i)
	rules := do.MustInvoke[*vocab.Rules](i)

	simCfg := analysis.SimilarityConfig{
		StringWeight:       cfg.Analysis.StringWeight,
		CooccurrenceWeight: cfg.Analysis.CooccurrenceWeight,
		NetworkWeight:      cfg.Analysis.NetworkWeight,
		DefaultThreshold:   cfg.Analysis.SimilarityThreshold,
	}

	svc, err := service.NewVocabularyService(
		vocabStore.Store, catalog.Store, index.VocabIndex,
		rules, simCfg, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	albums, err := catalog.CountAlbums(ctx)
	if err != nil {
		return nil, err
	}
	if albums > 0 {
		if err := svc.Rebuild(ctx); err != nil {
			return nil, err
		}
	}

	return svc, nil
}

// ProvideReviewService provides the correction review service,
// replaying any journaled change history.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	vocabStore := do.MustInvoke[*VocabStoreHandle](i)
	vocabService := do.MustInvoke[*service.VocabularyService](i)

	wfCfg := review.DefaultWorkflowConfig()
	wfCfg.HighConfidence = cfg.Review.HighConfidence
	wfCfg.MediumConfidence = cfg.Review.MediumConfidence
	wfCfg.MinSimilarity = cfg.Review.MinSimilarity

	return service.NewReviewService(
		context.Background(), vocabService, vocabStore.Store,
		wfCfg, review.DefaultMetricsConfig(), log.Logger)
}
