package review

import (
	"log/slog"
	"sort"

	"github.com/albumatlas/albumatlas-server/internal/analysis"
	"github.com/albumatlas/albumatlas-server/internal/domain"
	"github.com/albumatlas/albumatlas-server/internal/taxonomy"
	"github.com/albumatlas/albumatlas-server/internal/vocab"
)

// CandidateSearcher retrieves candidate canonical tags for a query
// string. Implemented by the bleve-backed vocabulary search index; nil
// disables candidate retrieval.
type CandidateSearcher interface {
	Candidates(query string, limit int) ([]string, error)
}

// WorkflowConfig holds the confidence and similarity cutoffs. These are
// corpus-calibrated, so they live in configuration rather than constants.
type WorkflowConfig struct {
	HighConfidence   float64 `json:"high_confidence"`   // >= is HIGH
	MediumConfidence float64 `json:"medium_confidence"` // >= is MEDIUM
	MinSimilarity    float64 `json:"min_similarity"`    // suggestion floor
	RelatedFloor     float64 `json:"related_floor"`     // string-signal floor for validation
	CandidateLimit   int     `json:"candidate_limit"`
}

// DefaultWorkflowConfig returns the baseline cutoffs.
func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		HighConfidence:   0.8,
		MediumConfidence: 0.5,
		MinSimilarity:    0.3,
		RelatedFloor:     0.5,
		CandidateLimit:   10,
	}
}

// Workflow proposes, validates, and applies tag corrections through the
// review queue.
type Workflow struct {
	normalizer *vocab.Normalizer
	similarity *analysis.Similarity
	analyzer   *analysis.Analyzer
	hierarchy  *taxonomy.Relationships
	queue      *Queue
	searcher   CandidateSearcher
	cfg        WorkflowConfig
	logger     *slog.Logger
}

// NewWorkflow wires a correction workflow. searcher may be nil.
func NewWorkflow(
	normalizer *vocab.Normalizer,
	analyzer *analysis.Analyzer,
	similarity *analysis.Similarity,
	hierarchy *taxonomy.Relationships,
	queue *Queue,
	searcher CandidateSearcher,
	cfg WorkflowConfig,
	logger *slog.Logger,
) *Workflow {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.HighConfidence == 0 && cfg.MediumConfidence == 0 {
		cfg = DefaultWorkflowConfig()
	}
	return &Workflow{
		normalizer: normalizer,
		analyzer:   analyzer,
		similarity: similarity,
		hierarchy:  hierarchy,
		queue:      queue,
		searcher:   searcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// SuggestCorrections proposes replacements for a tag: the normalized form
// when it differs, then similar known tags above the configured floor,
// then search-index candidates. Returns an empty list when normalization
// is a no-op and nothing clears the floor.
func (w *Workflow) SuggestCorrections(tag string) []domain.CorrectionSuggestion {
	var out []domain.CorrectionSuggestion
	seen := map[string]bool{tag: true}

	add := func(suggested string, score float64) {
		if suggested == "" || seen[suggested] {
			return
		}
		seen[suggested] = true
		out = append(out, domain.CorrectionSuggestion{
			Original:   tag,
			Suggested:  suggested,
			Similarity: score,
			Confidence: w.confidenceLevel(score),
		})
	}

	// Normalization suggestion first: a deterministic rewrite is the
	// strongest possible signal.
	normalized := w.normalizer.Normalize(tag)
	if normalized != "" && normalized != tag {
		add(normalized, 1.0)
	}

	// Similar known tags above the floor.
	for _, ts := range w.similarity.FindSimilarTags(normalized, w.cfg.MinSimilarity) {
		add(ts.Tag, ts.Score)
	}

	// Search-index candidates, scored through the similarity engine.
	if w.searcher != nil {
		candidates, err := w.searcher.Candidates(normalized, w.cfg.CandidateLimit)
		if err != nil {
			w.logger.Warn("candidate search failed", "tag", tag, "error", err)
		}
		for _, candidate := range candidates {
			score := w.similarity.Between(normalized, candidate)
			if score >= w.cfg.MinSimilarity {
				add(candidate, score)
			}
		}
	}

	// Deterministic presentation: best first, lexicographic tie-break.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Suggested < out[j].Suggested
	})
	return out
}

// ApplyCorrection queues a rename change for review. It never
// auto-approves.
func (w *Workflow) ApplyCorrection(original, corrected, reviewer, notes string) (string, error) {
	if notes == "" {
		notes = "correction proposed by " + reviewer
	}
	return w.queue.AddChange(domain.ChangeRename, original, corrected, notes)
}

// CorrectionHistory returns resolved changes whose old value is the tag.
func (w *Workflow) CorrectionHistory(tag string) []*domain.TagChange {
	return w.queue.HistoryFor(tag)
}

// ValidateCorrection checks a proposed correction. An empty issue list
// means valid. Issues:
//   - "equivalent": both sides normalize to the same form, so the
//     correction is a no-op.
//   - "unrelated": no semantic link between the tags: not string
//     similar, never co-occurring, and not hierarchically related.
func (w *Workflow) ValidateCorrection(original, corrected string) []domain.ValidationIssue {
	var issues []domain.ValidationIssue

	normOriginal := w.normalizer.Normalize(original)
	normCorrected := w.normalizer.Normalize(corrected)

	if normOriginal == normCorrected {
		issues = append(issues, domain.ValidationIssue{
			Code:    "equivalent",
			Message: "original and corrected forms normalize to the same tag",
		})
		return issues
	}

	related := analysis.StringSimilarity(normOriginal, normCorrected) >= w.cfg.RelatedFloor ||
		w.analyzer.CoOccurrence(normOriginal, normCorrected) > 0 ||
		w.hierarchy.CalculateSimilarity(normOriginal, normCorrected) >= 0.5

	if !related {
		issues = append(issues, domain.ValidationIssue{
			Code:    "unrelated",
			Message: "no string, co-occurrence, or hierarchy relationship between the tags",
		})
	}

	return issues
}

func (w *Workflow) confidenceLevel(score float64) domain.ConfidenceLevel {
	switch {
	case score >= w.cfg.HighConfidence:
		return domain.ConfidenceHigh
	case score >= w.cfg.MediumConfidence:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
