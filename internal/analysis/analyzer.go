// Package analysis builds tag statistics, the co-occurrence graph, and
// pairwise tag similarity over canonical per-album tag lists.
package analysis

import (
	"sort"
	"strconv"
)

// TagPair is an unordered pair of tags in canonical (lexicographic) order,
// so (a,b) and (b,a) address the same entry.
type TagPair struct {
	A string
	B string
}

// NewTagPair returns the canonical ordering of two tags.
func NewTagPair(t1, t2 string) TagPair {
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	return TagPair{A: t1, B: t2}
}

// TagScore pairs a tag with a similarity or strength score.
type TagScore struct {
	Tag   string
	Score float64
}

// Stats summarizes a tag corpus.
type Stats struct {
	TotalOccurrences int     // Sum of per-album tag list lengths
	UniqueTags       int     // Distinct tag values
	AlbumCount       int     // Number of albums analyzed
	AverageTags      float64 // TotalOccurrences / AlbumCount
}

// Analyzer computes frequency counts and the weighted co-occurrence graph
// for a corpus of per-album tag lists.
//
// All counts are computed once at construction. The analyzer never mutates
// after that; reanalysis means building a new instance and republishing it
// (swap-on-complete), so concurrent readers never observe a partial graph.
type Analyzer struct {
	albums      [][]string
	frequencies map[string]int
	graph       map[string]map[string]float64 // adjacency: tag -> neighbor -> co-occurrence count
	stats       Stats
}

// NewAnalyzer builds an Analyzer from per-album canonical tag lists.
// A tag appearing on zero albums has no graph node and is absent from
// every output.
func NewAnalyzer(albums [][]string) *Analyzer {
	a := &Analyzer{
		albums:      albums,
		frequencies: make(map[string]int),
		graph:       make(map[string]map[string]float64),
	}

	total := 0
	for _, tags := range albums {
		total += len(tags)

		// Frequency counts every occurrence; co-occurrence counts each
		// album once per unordered pair of distinct tags.
		seen := make(map[string]bool, len(tags))
		for _, tag := range tags {
			a.frequencies[tag]++
			seen[tag] = true
		}

		distinct := make([]string, 0, len(seen))
		for tag := range seen {
			distinct = append(distinct, tag)
		}
		sort.Strings(distinct)

		for i := 0; i < len(distinct); i++ {
			for j := i + 1; j < len(distinct); j++ {
				a.addEdge(distinct[i], distinct[j])
			}
		}
	}

	a.stats = Stats{
		TotalOccurrences: total,
		UniqueTags:       len(a.frequencies),
		AlbumCount:       len(albums),
	}
	if len(albums) > 0 {
		a.stats.AverageTags = float64(total) / float64(len(albums))
	}

	return a
}

func (a *Analyzer) addEdge(t1, t2 string) {
	if a.graph[t1] == nil {
		a.graph[t1] = make(map[string]float64)
	}
	if a.graph[t2] == nil {
		a.graph[t2] = make(map[string]float64)
	}
	a.graph[t1][t2]++
	a.graph[t2][t1]++
}

// Stats returns the aggregate corpus statistics.
func (a *Analyzer) Stats() Stats {
	return a.stats
}

// Frequency returns the occurrence count for a tag, 0 if unknown.
func (a *Analyzer) Frequency(tag string) int {
	return a.frequencies[tag]
}

// Tags returns all observed tags in lexicographic order.
func (a *Analyzer) Tags() []string {
	tags := make([]string, 0, len(a.frequencies))
	for tag := range a.frequencies {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Relationships returns the co-occurrence weight for every unordered pair
// of tags appearing together on at least one album.
func (a *Analyzer) Relationships() map[TagPair]float64 {
	out := make(map[TagPair]float64)
	for tag, neighbors := range a.graph {
		for neighbor, weight := range neighbors {
			if tag < neighbor {
				out[TagPair{A: tag, B: neighbor}] = weight
			}
		}
	}
	return out
}

// Neighbors returns a copy of a tag's adjacency row. Empty for unknown tags.
func (a *Analyzer) Neighbors(tag string) map[string]float64 {
	row := a.graph[tag]
	out := make(map[string]float64, len(row))
	for neighbor, weight := range row {
		out[neighbor] = weight
	}
	return out
}

// CoOccurrence returns the raw co-occurrence count between two tags.
func (a *Analyzer) CoOccurrence(t1, t2 string) float64 {
	return a.graph[t1][t2]
}

// FindSimilarTags returns graph neighbors whose co-occurrence similarity
// (count normalized by the smaller tag frequency) meets the threshold,
// sorted descending by score, ties broken lexicographically.
func (a *Analyzer) FindSimilarTags(tag string, threshold float64) []TagScore {
	var out []TagScore
	for neighbor, weight := range a.graph[tag] {
		score := a.normalizeWeight(tag, neighbor, weight)
		if score >= threshold {
			out = append(out, TagScore{Tag: neighbor, Score: score})
		}
	}
	sortScores(out)
	return out
}

// normalizeWeight converts a raw co-occurrence count into a Jaccard-like
// similarity bounded by [0,1], normalized by the smaller tag frequency.
func (a *Analyzer) normalizeWeight(t1, t2 string, weight float64) float64 {
	f1, f2 := a.frequencies[t1], a.frequencies[t2]
	smaller := f1
	if f2 < f1 {
		smaller = f2
	}
	if smaller == 0 {
		return 0
	}
	score := weight / float64(smaller)
	if score > 1 {
		score = 1
	}
	return score
}

// Clusters groups tags into connected components of the co-occurrence
// graph. Components below size 2 are excluded. Labels are assigned in
// deterministic order of each component's lexicographically smallest
// member.
func (a *Analyzer) Clusters() map[string][]string {
	visited := make(map[string]bool, len(a.graph))
	var components [][]string

	for _, tag := range a.Tags() {
		if visited[tag] || a.graph[tag] == nil {
			continue
		}

		// Iterative DFS.
		var component []string
		stack := []string{tag}
		visited[tag] = true
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, current)
			for neighbor := range a.graph[current] {
				if !visited[neighbor] {
					visited[neighbor] = true
					stack = append(stack, neighbor)
				}
			}
		}

		if len(component) >= 2 {
			sort.Strings(component)
			components = append(components, component)
		}
	}

	sort.Slice(components, func(i, j int) bool {
		return components[i][0] < components[j][0]
	})

	out := make(map[string][]string, len(components))
	for i, component := range components {
		out[clusterLabel(i)] = component
	}
	return out
}

func clusterLabel(i int) string {
	return "cluster-" + strconv.Itoa(i+1)
}

func sortScores(scores []TagScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Tag < scores[j].Tag
	})
}
