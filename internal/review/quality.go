package review

import (
	"sort"

	"github.com/albumatlas/albumatlas-server/internal/analysis"
	"github.com/albumatlas/albumatlas-server/internal/domain"
	"github.com/albumatlas/albumatlas-server/internal/vocab"
)

// MetricsConfig weights the quality sub-scores and sets the thresholds
// the scoring formulas use. Calibrated against the corpus, so treated as
// configuration.
type MetricsConfig struct {
	ConsistencyWeight  float64 `json:"consistency_weight"`
	AmbiguityWeight    float64 `json:"ambiguity_weight"`
	RelationshipWeight float64 `json:"relationship_weight"`
	FeedbackWeight     float64 `json:"feedback_weight"`
	AmbiguityFloor     float64 `json:"ambiguity_floor"`  // similarity floor for the spread
	FeedbackStep       float64 `json:"feedback_step"`    // per approve/reject delta from 0.5
	DefaultLowQuality  float64 `json:"low_quality_bar"`  // default threshold
}

// DefaultMetricsConfig returns the baseline weighting.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		ConsistencyWeight:  0.3,
		AmbiguityWeight:    0.2,
		RelationshipWeight: 0.25,
		FeedbackWeight:     0.25,
		AmbiguityFloor:     0.3,
		FeedbackStep:       0.1,
		DefaultLowQuality:  0.5,
	}
}

// Metrics scores tag quality from four signals: formatting consistency,
// meaning ambiguity, graph relationship strength, and reviewer feedback.
type Metrics struct {
	normalizer *vocab.Normalizer
	analyzer   *analysis.Analyzer
	similarity *analysis.Similarity
	queue      *Queue
	cfg        MetricsConfig
}

// NewMetrics wires a quality scorer over the given engine components.
func NewMetrics(
	normalizer *vocab.Normalizer,
	analyzer *analysis.Analyzer,
	similarity *analysis.Similarity,
	queue *Queue,
	cfg MetricsConfig,
) *Metrics {
	if cfg.ConsistencyWeight+cfg.AmbiguityWeight+cfg.RelationshipWeight+cfg.FeedbackWeight == 0 {
		cfg = DefaultMetricsConfig()
	}
	return &Metrics{
		normalizer: normalizer,
		analyzer:   analyzer,
		similarity: similarity,
		queue:      queue,
		cfg:        cfg,
	}
}

// ConsistencyScore measures how close a tag's surface form is to its
// normalized form. A tag equal to its own normalization scores 1.0; heavy
// case or separator transformation pulls the score down.
func (m *Metrics) ConsistencyScore(tag string) float64 {
	normalized := m.normalizer.Normalize(tag)
	if tag == normalized {
		return 1.0
	}
	if normalized == "" {
		return 0.0
	}
	return analysis.EditSimilarity(tag, normalized)
}

// AmbiguityIndex is high when a tag has several comparably-weighted
// similar tags and no single dominant meaning. One dominant near-synonym
// with otherwise low similarities scores lower than a cluster of
// mid-range neighbors. 0.0 for tags with no similar tags above the floor.
func (m *Metrics) AmbiguityIndex(tag string) float64 {
	similar := m.similarity.FindSimilarTags(tag, m.cfg.AmbiguityFloor)
	if len(similar) <= 1 {
		return 0.0
	}

	// Results are sorted descending: similar[0] is the dominant score.
	dominant := similar[0].Score
	if dominant == 0 {
		return 0.0
	}
	rest := 0.0
	for _, ts := range similar[1:] {
		rest += ts.Score
	}
	mean := rest / float64(len(similar)-1)
	return clamp01(mean / dominant)
}

// RelationshipStrength is the average normalized edge weight of a tag's
// co-occurrence neighbors. Tags without graph edges, including unknown
// tags, score 0.0.
func (m *Metrics) RelationshipStrength(tag string) float64 {
	neighbors := m.analyzer.FindSimilarTags(tag, 0)
	if len(neighbors) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, ts := range neighbors {
		sum += ts.Score
	}
	return clamp01(sum / float64(len(neighbors)))
}

// FeedbackScore starts from a neutral 0.5 and moves up for each approved
// change touching the tag and down for each rejection.
func (m *Metrics) FeedbackScore(tag string) float64 {
	score := 0.5
	for _, change := range m.queue.ChangeHistory() {
		if change.OldValue != tag && change.NewValue != tag {
			continue
		}
		switch change.Status {
		case domain.ChangeApproved:
			score += m.cfg.FeedbackStep
		case domain.ChangeRejected:
			score -= m.cfg.FeedbackStep
		}
	}
	return clamp01(score)
}

// OverallScore combines the four sub-scores with the configured weights.
// Ambiguity counts against quality, so its complement enters the sum.
func (m *Metrics) OverallScore(tag string) domain.TagQualityScore {
	consistency := m.ConsistencyScore(tag)
	ambiguity := m.AmbiguityIndex(tag)
	relationship := m.RelationshipStrength(tag)
	feedback := m.FeedbackScore(tag)

	total := m.cfg.ConsistencyWeight + m.cfg.AmbiguityWeight + m.cfg.RelationshipWeight + m.cfg.FeedbackWeight
	overall := (m.cfg.ConsistencyWeight*consistency +
		m.cfg.AmbiguityWeight*(1-ambiguity) +
		m.cfg.RelationshipWeight*relationship +
		m.cfg.FeedbackWeight*feedback) / total

	return domain.TagQualityScore{
		Tag:                  tag,
		Consistency:          consistency,
		Ambiguity:            ambiguity,
		RelationshipStrength: relationship,
		Feedback:             feedback,
		Overall:              clamp01(overall),
	}
}

// LowQualityTags scores every tag the analyzer knows and returns those
// below the threshold, sorted ascending by overall score. A non-positive
// threshold uses the configured default.
func (m *Metrics) LowQualityTags(threshold float64) []domain.TagQualityScore {
	if threshold <= 0 {
		threshold = m.cfg.DefaultLowQuality
	}

	var out []domain.TagQualityScore
	for _, tag := range m.analyzer.Tags() {
		score := m.OverallScore(tag)
		if score.Overall < threshold {
			out = append(out, score)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Overall != out[j].Overall {
			return out[i].Overall < out[j].Overall
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
