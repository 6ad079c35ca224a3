package analysis

import (
	"strings"
	"sync"
)

// SimilarityConfig holds the weighting and threshold knobs for composite
// similarity. Weights are configuration, not derived from the corpus.
type SimilarityConfig struct {
	StringWeight       float64 `json:"string_weight"`
	CooccurrenceWeight float64 `json:"cooccurrence_weight"`
	NetworkWeight      float64 `json:"network_weight"`
	DefaultThreshold   float64 `json:"default_threshold"`
}

// DefaultSimilarityConfig returns the baseline weighting.
func DefaultSimilarityConfig() SimilarityConfig {
	return SimilarityConfig{
		StringWeight:       0.3,
		CooccurrenceWeight: 0.4,
		NetworkWeight:      0.3,
		DefaultThreshold:   0.5,
	}
}

// Similarity computes composite pairwise tag similarity from three
// signals, each bounded to [0,1]: string similarity on the normalized
// forms, co-occurrence similarity from the analyzer's relationship
// weights, and network similarity from shared graph neighbors.
//
// sim(a,b) == sim(b,a) is an invariant, not an accident: every signal
// uses direction-free denominators (smaller frequency, neighbor-set
// Jaccard), and the cached matrix is keyed by canonical TagPair. The
// full matrix is computed lazily and cached per instance.
type Similarity struct {
	analyzer *Analyzer
	cfg      SimilarityConfig

	mu     sync.RWMutex
	matrix map[TagPair]float64
}

// NewSimilarity creates a Similarity over an analyzed corpus.
func NewSimilarity(analyzer *Analyzer, cfg SimilarityConfig) *Similarity {
	if cfg.StringWeight+cfg.CooccurrenceWeight+cfg.NetworkWeight == 0 {
		cfg = DefaultSimilarityConfig()
	}
	return &Similarity{analyzer: analyzer, cfg: cfg}
}

// Between returns the composite similarity of two tags. Identical tags
// score 1.0; tags unknown to the analyzer still get string similarity.
func (s *Similarity) Between(t1, t2 string) float64 {
	if t1 == t2 {
		return 1.0
	}
	return s.compute(t1, t2)
}

func (s *Similarity) compute(t1, t2 string) float64 {
	str := stringSimilarity(t1, t2)
	co := s.analyzer.normalizeWeight(t1, t2, s.analyzer.CoOccurrence(t1, t2))
	net := s.networkSimilarity(t1, t2)

	total := s.cfg.StringWeight + s.cfg.CooccurrenceWeight + s.cfg.NetworkWeight
	score := (s.cfg.StringWeight*str + s.cfg.CooccurrenceWeight*co + s.cfg.NetworkWeight*net) / total

	return clamp01(score)
}

// CalculateSimilarities computes and caches the full pairwise matrix for
// all tags known to the analyzer. Entries are keyed by canonical TagPair,
// so symmetry holds by construction.
func (s *Similarity) CalculateSimilarities() map[TagPair]float64 {
	s.mu.RLock()
	if s.matrix != nil {
		cached := s.matrix
		s.mu.RUnlock()
		return cached
	}
	s.mu.RUnlock()

	tags := s.analyzer.Tags()
	matrix := make(map[TagPair]float64, len(tags)*(len(tags)-1)/2)
	for i := 0; i < len(tags); i++ {
		for j := i + 1; j < len(tags); j++ {
			matrix[NewTagPair(tags[i], tags[j])] = s.compute(tags[i], tags[j])
		}
	}

	s.mu.Lock()
	s.matrix = matrix
	s.mu.Unlock()
	return matrix
}

// ClearCache drops the cached similarity matrix.
func (s *Similarity) ClearCache() {
	s.mu.Lock()
	s.matrix = nil
	s.mu.Unlock()
}

// FindSimilarTags returns every known tag whose similarity to the given
// tag meets the threshold, sorted descending with lexicographic
// tie-breaks. Pass a negative threshold to use the configured default.
func (s *Similarity) FindSimilarTags(tag string, threshold float64) []TagScore {
	if threshold < 0 {
		threshold = s.cfg.DefaultThreshold
	}

	var out []TagScore
	for _, other := range s.analyzer.Tags() {
		if other == tag {
			continue
		}
		score := s.Between(tag, other)
		if score >= threshold {
			out = append(out, TagScore{Tag: other, Score: score})
		}
	}
	sortScores(out)
	return out
}

// networkSimilarity is the Jaccard index of the two tags' neighbor sets,
// excluding the tags themselves.
func (s *Similarity) networkSimilarity(t1, t2 string) float64 {
	n1 := s.analyzer.graph[t1]
	n2 := s.analyzer.graph[t2]
	if len(n1) == 0 || len(n2) == 0 {
		return 0
	}

	union := make(map[string]bool, len(n1)+len(n2))
	intersection := 0
	for neighbor := range n1 {
		if neighbor != t2 {
			union[neighbor] = true
		}
	}
	for neighbor := range n2 {
		if neighbor == t1 {
			continue
		}
		if union[neighbor] {
			intersection++
		}
		union[neighbor] = true
	}

	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}

// StringSimilarity combines token overlap, edit distance, and prefix
// containment on the normalized tag strings. Exposed for callers that
// need the lexical signal on its own (correction validation, quality
// scoring).
func StringSimilarity(t1, t2 string) float64 {
	return stringSimilarity(t1, t2)
}

// EditSimilarity is the normalized Levenshtein similarity of two strings.
func EditSimilarity(t1, t2 string) float64 {
	return editSimilarity(t1, t2)
}

// stringSimilarity combines token overlap, edit distance, and prefix
// containment on the normalized tag strings.
func stringSimilarity(t1, t2 string) float64 {
	if t1 == t2 {
		return 1.0
	}
	if t1 == "" || t2 == "" {
		return 0
	}

	token := tokenJaccard(t1, t2)
	edit := editSimilarity(t1, t2)

	score := token
	if edit > score {
		score = edit
	}

	// Prefix containment: "prog" vs "progressive". Pure edit distance
	// undervalues abbreviations, so containment sets a floor.
	if containsPrefix(t1, t2) && score < 0.7 {
		score = 0.7
	}

	return clamp01(score)
}

func tokenJaccard(t1, t2 string) float64 {
	set1 := tokenSet(t1)
	set2 := tokenSet(t2)

	intersection := 0
	for tok := range set1 {
		if set2[tok] {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

func editSimilarity(t1, t2 string) float64 {
	longer := len(t1)
	if len(t2) > longer {
		longer = len(t2)
	}
	if longer == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(t1, t2))/float64(longer)
}

// containsPrefix reports whether the shorter string (3+ chars) is a
// prefix of a token of the longer one, or of the longer string itself.
func containsPrefix(t1, t2 string) bool {
	shorter, longer := t1, t2
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) < 3 {
		return false
	}
	if strings.HasPrefix(longer, shorter) {
		return true
	}
	for _, tok := range strings.Fields(longer) {
		if strings.HasPrefix(tok, shorter) {
			return true
		}
	}
	return false
}

// levenshtein computes edit distance with the two-row dynamic program.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
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
