package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Hit is a single vocabulary match.
type Hit struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Params configures a vocabulary query.
type Params struct {
	Query    string
	Category string // Exact category filter (empty = all)
	Limit    int
}

// Search finds vocabulary tags matching the query: exact and fuzzy
// matches on the name, matches against recorded aliases, and a prefix
// match for partial input.
func (v *VocabIndex) Search(ctx context.Context, params Params) ([]Hit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 10
	}

	searchQuery := buildTagQuery(params)
	request := bleve.NewSearchRequestOptions(searchQuery, params.Limit, 0, false)
	request.Fields = []string{"name", "category"}

	result, err := v.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		h := Hit{ID: hit.ID, Score: hit.Score}
		if name, ok := hit.Fields["name"].(string); ok {
			h.Name = name
		}
		if category, ok := hit.Fields["category"].(string); ok {
			h.Category = category
		}
		hits = append(hits, h)
	}

	return hits, nil
}

// Candidates returns candidate canonical tag names for a query string,
// best match first. Satisfies the review workflow's candidate searcher.
func (v *VocabIndex) Candidates(queryString string, limit int) ([]string, error) {
	hits, err := v.Search(context.Background(), Params{Query: queryString, Limit: limit})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.Name != "" {
			names = append(names, h.Name)
		}
	}
	return names, nil
}

// buildTagQuery constructs the Bleve query from params.
func buildTagQuery(params Params) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		// Name match with highest boost.
		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		// Alias match finds tags through their recorded raw spellings.
		aliasMatch := bleve.NewMatchQuery(params.Query)
		aliasMatch.SetField("aliases")
		aliasMatch.SetBoost(2.0)
		textQueries = append(textQueries, aliasMatch)

		// Fuzzy matching for typo tolerance on name.
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for partial input (minimum 2 chars).
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.Category != "" {
		categoryQuery := bleve.NewTermQuery(params.Category)
		categoryQuery.SetField("category")
		queries = append(queries, categoryQuery)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
