package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albumatlas/albumatlas-server/internal/analysis"
	"github.com/albumatlas/albumatlas-server/internal/domain"
	"github.com/albumatlas/albumatlas-server/internal/taxonomy"
	"github.com/albumatlas/albumatlas-server/internal/vocab"
)

func newTestWorkflow(t *testing.T, searcher CandidateSearcher, cfg WorkflowConfig) (*Workflow, *Queue) {
	t.Helper()

	normalizer, err := vocab.NewNormalizer(vocab.DefaultRules())
	require.NoError(t, err)

	analyzer := analysis.NewAnalyzer([][]string{
		{"black metal", "atmospheric", "norwegian"},
		{"black metal", "death metal"},
		{"jazz", "fusion"},
	})
	similarity := analysis.NewSimilarity(analyzer, analysis.SimilarityConfig{})
	queue := NewQueue(nil, nil)

	return NewWorkflow(normalizer, analyzer, similarity, taxonomy.NewRelationships(), queue, searcher, cfg, nil), queue
}

func TestValidateCorrectionEquivalentForms(t *testing.T) {
	w, _ := newTestWorkflow(t, nil, WorkflowConfig{})

	tests := []struct {
		original  string
		corrected string
	}{
		{"heavy metal", "heavy-metal"},
		{"Heavy Metal", "heavy metal"},
		{"blackmetal", "black metal"},
	}
	for _, tt := range tests {
		issues := w.ValidateCorrection(tt.original, tt.corrected)
		require.Len(t, issues, 1, "%q -> %q", tt.original, tt.corrected)
		assert.Equal(t, "equivalent", issues[0].Code)
	}
}

func TestValidateCorrectionRelatedTags(t *testing.T) {
	w, _ := newTestWorkflow(t, nil, WorkflowConfig{})

	// Distinct tags but clearly linked: "prog" is a prefix of
	// "progressive", and the metal pair co-occurs in the corpus.
	assert.Empty(t, w.ValidateCorrection("prog", "progressive"))
	assert.Empty(t, w.ValidateCorrection("black metal", "death metal"))
}

func TestValidateCorrectionUnrelatedTags(t *testing.T) {
	w, _ := newTestWorkflow(t, nil, WorkflowConfig{})

	issues := w.ValidateCorrection("jazz", "norwegian")
	require.Len(t, issues, 1)
	assert.Equal(t, "unrelated", issues[0].Code)
}

func TestSuggestCorrectionsNormalizationFirst(t *testing.T) {
	w, _ := newTestWorkflow(t, nil, WorkflowConfig{})

	suggestions := w.SuggestCorrections("Blackmetal")
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "black metal", suggestions[0].Suggested)
	assert.Equal(t, 1.0, suggestions[0].Similarity)
	assert.Equal(t, domain.ConfidenceHigh, suggestions[0].Confidence)
}

func TestSuggestCorrectionsCleanTag(t *testing.T) {
	w, _ := newTestWorkflow(t, nil, WorkflowConfig{})

	// A tag already in canonical form gets no normalization suggestion.
	for _, s := range w.SuggestCorrections("black metal") {
		assert.NotEqual(t, 1.0, s.Similarity)
	}
}

type fixedSearcher struct {
	results []string
}

func (f fixedSearcher) Candidates(string, int) ([]string, error) {
	return f.results, nil
}

func TestSuggestCorrectionsSearchCandidates(t *testing.T) {
	cfg := DefaultWorkflowConfig()
	cfg.MinSimilarity = 0.2
	w, _ := newTestWorkflow(t, fixedSearcher{results: []string{"black metal"}}, cfg)

	suggestions := w.SuggestCorrections("blck metal")
	var found *domain.CorrectionSuggestion
	for i := range suggestions {
		if suggestions[i].Suggested == "black metal" {
			found = &suggestions[i]
		}
	}
	require.NotNil(t, found, "search candidate missing from suggestions")
	assert.Greater(t, found.Similarity, 0.0)
	assert.Less(t, found.Similarity, 1.0)
}

func TestApplyCorrectionQueuesForReview(t *testing.T) {
	w, queue := newTestWorkflow(t, nil, WorkflowConfig{})

	changeID, err := w.ApplyCorrection("blck metal", "black metal", "alex", "")
	require.NoError(t, err)
	require.NotEmpty(t, changeID)

	pending := queue.PendingChanges()
	require.Len(t, pending, 1)
	assert.Equal(t, domain.ChangeRename, pending[0].Type)
	assert.Equal(t, domain.ChangePending, pending[0].Status)
	assert.Empty(t, queue.ChangeHistory())
}

func TestCorrectionHistoryTracksResolvedChanges(t *testing.T) {
	w, queue := newTestWorkflow(t, nil, WorkflowConfig{})

	changeID, err := w.ApplyCorrection("blck metal", "black metal", "alex", "")
	require.NoError(t, err)
	assert.Empty(t, w.CorrectionHistory("blck metal"))

	require.True(t, queue.ApproveChange(changeID, "alex", ""))
	history := w.CorrectionHistory("blck metal")
	require.Len(t, history, 1)
	assert.Equal(t, "black metal", history[0].NewValue)
}

func TestConfidenceLevels(t *testing.T) {
	w, _ := newTestWorkflow(t, nil, WorkflowConfig{})

	tests := []struct {
		score float64
		want  domain.ConfidenceLevel
	}{
		{1.0, domain.ConfidenceHigh},
		{0.8, domain.ConfidenceHigh},
		{0.79, domain.ConfidenceMedium},
		{0.5, domain.ConfidenceMedium},
		{0.49, domain.ConfidenceLow},
		{0.0, domain.ConfidenceLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.confidenceLevel(tt.score), "score %v", tt.score)
	}
}
