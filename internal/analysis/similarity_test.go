package analysis

import (
	"math"
	"testing"
)

func testSimilarity() *Similarity {
	return NewSimilarity(NewAnalyzer(testCorpus()), DefaultSimilarityConfig())
}

func TestBetweenIdentical(t *testing.T) {
	s := testSimilarity()
	if got := s.Between("black metal", "black metal"); got != 1.0 {
		t.Errorf("Between(x, x) = %f, want 1.0", got)
	}
}

func TestMatrixSymmetricAndBounded(t *testing.T) {
	s := testSimilarity()
	tags := []string{"black metal", "death metal", "prog metal", "unknown"}

	for _, a := range tags {
		for _, b := range tags {
			ab := s.Between(a, b)
			ba := s.Between(b, a)
			if ab != ba {
				t.Errorf("Between(%q,%q)=%f != Between(%q,%q)=%f", a, b, ab, b, a, ba)
			}
			if ab < 0 || ab > 1 {
				t.Errorf("Between(%q,%q)=%f out of [0,1]", a, b, ab)
			}
		}
	}
}

func TestCalculateSimilaritiesCached(t *testing.T) {
	s := testSimilarity()

	first := s.CalculateSimilarities()
	if len(first) != 3 {
		t.Fatalf("matrix has %d entries, want 3", len(first))
	}

	// Cached: same map returned.
	second := s.CalculateSimilarities()
	if &first == &second {
		t.Log("maps compared by header; fallthrough")
	}
	for pair, score := range first {
		if second[pair] != score {
			t.Errorf("cache mismatch for %v", pair)
		}
	}

	s.ClearCache()
	third := s.CalculateSimilarities()
	for pair, score := range first {
		if math.Abs(third[pair]-score) > 1e-12 {
			t.Errorf("recompute mismatch for %v", pair)
		}
	}
}

func TestFindSimilarTagsSorted(t *testing.T) {
	s := testSimilarity()

	got := s.FindSimilarTags("black metal", 0.0)
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score < got[i].Score {
			t.Errorf("results not sorted descending: %v", got)
		}
		if got[i-1].Score == got[i].Score && got[i-1].Tag > got[i].Tag {
			t.Errorf("ties not broken lexicographically: %v", got)
		}
	}
}

func TestFindSimilarTagsDefaultThreshold(t *testing.T) {
	s := testSimilarity()

	// Negative threshold selects the configured default.
	got := s.FindSimilarTags("black metal", -1)
	for _, ts := range got {
		if ts.Score < DefaultSimilarityConfig().DefaultThreshold {
			t.Errorf("%q scored %f below default threshold", ts.Tag, ts.Score)
		}
	}
}

func TestStringSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"black metal", "black metal", 1.0, 1.0},
		{"black metal", "death metal", 0.2, 0.9}, // shared "metal" token
		{"prog", "progressive", 0.7, 1.0},        // prefix containment floor
		{"jazz", "black metal", 0.0, 0.3},
		{"", "black metal", 0.0, 0.0},
	}

	for _, tt := range tests {
		got := stringSimilarity(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("stringSimilarity(%q,%q) = %f, want [%f,%f]", tt.a, tt.b, got, tt.min, tt.max)
		}
		if rev := stringSimilarity(tt.b, tt.a); rev != got {
			t.Errorf("stringSimilarity not symmetric for (%q,%q)", tt.a, tt.b)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"metal", "metal", 0},
		{"metal", "meta", 1},
		{"black", "blank", 1},
		{"kitten", "sitting", 3},
	}

	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q,%q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestUnknownTagsScoreStringOnly(t *testing.T) {
	s := testSimilarity()

	// Neither tag is in the corpus: graph signals are 0, string signal
	// still contributes.
	got := s.Between("viking metal", "viking metal tribute")
	if got <= 0 {
		t.Errorf("Between on unknown tags = %f, want > 0", got)
	}
}
