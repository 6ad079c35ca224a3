package bitindex

import (
	"encoding/json"
	"fmt"
)

// Expr is a boolean tag-filter expression. The implementations form a
// closed union: TagExpr, AndExpr, OrExpr, NotExpr.
type Expr interface {
	isExpr()
}

// TagExpr matches albums carrying a single tag.
type TagExpr struct {
	Tag string
}

// AndExpr matches albums in both sub-results.
type AndExpr struct {
	Left  Expr
	Right Expr
}

// OrExpr matches albums in either sub-result.
type OrExpr struct {
	Left  Expr
	Right Expr
}

// NotExpr matches albums in the universe but not in the sub-result.
type NotExpr struct {
	Expr Expr
}

func (TagExpr) isExpr() {}
func (AndExpr) isExpr() {}
func (OrExpr) isExpr()  {}
func (NotExpr) isExpr() {}

// ParseExpr decodes the wire form of a filter expression:
//
//	{"type":"and","left":{"type":"tag","tag":"metal"},"right":...}
//
// An empty or null payload yields a nil Expr, which evaluates to the
// universe.
func ParseExpr(data []byte) (Expr, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var raw struct {
		Type  string          `json:"type"`
		Tag   string          `json:"tag"`
		Left  json.RawMessage `json:"left"`
		Right json.RawMessage `json:"right"`
		Expr  json.RawMessage `json:"expr"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse filter expression: %w", err)
	}
	if raw.Type == "" {
		return nil, nil
	}

	switch raw.Type {
	case "tag":
		return TagExpr{Tag: raw.Tag}, nil
	case "and", "or":
		left, err := ParseExpr(raw.Left)
		if err != nil {
			return nil, err
		}
		right, err := ParseExpr(raw.Right)
		if err != nil {
			return nil, err
		}
		if raw.Type == "and" {
			return AndExpr{Left: left, Right: right}, nil
		}
		return OrExpr{Left: left, Right: right}, nil
	case "not":
		inner, err := ParseExpr(raw.Expr)
		if err != nil {
			return nil, err
		}
		return NotExpr{Expr: inner}, nil
	default:
		return nil, fmt.Errorf("parse filter expression: unknown type %q", raw.Type)
	}
}

// TagCount pairs a tag with its visible match count.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Evaluator answers boolean tag-expression queries against a tag->BitSet
// index. The universe is the union of all tag sets, so "not" is always
// relative to albums the index knows about.
type Evaluator struct {
	index    map[string]*BitSet
	universe *BitSet
}

// NewEvaluator builds an evaluator over a tag->BitSet index. The index
// sets stay owned by the caller; the evaluator never mutates them.
func NewEvaluator(index map[string]*BitSet) *Evaluator {
	universe := New()
	for _, set := range index {
		universe = universe.Union(set)
	}
	return &Evaluator{index: index, universe: universe}
}

// Universe returns a copy of the evaluator's full album-id set.
func (e *Evaluator) Universe() *BitSet {
	return e.universe.Clone()
}

// Evaluate returns the album ids matching the expression. A nil
// expression evaluates to the universe; a tag absent from the index
// contributes an empty set.
func (e *Evaluator) Evaluate(expr Expr) *BitSet {
	if expr == nil {
		return e.universe.Clone()
	}

	switch ex := expr.(type) {
	case TagExpr:
		if set, ok := e.index[ex.Tag]; ok {
			return set.Clone()
		}
		return New()
	case AndExpr:
		return e.Evaluate(ex.Left).Intersect(e.Evaluate(ex.Right))
	case OrExpr:
		return e.Evaluate(ex.Left).Union(e.Evaluate(ex.Right))
	case NotExpr:
		return e.universe.Difference(e.Evaluate(ex.Expr))
	default:
		// Closed union; unreachable for well-formed expressions.
		return New()
	}
}

// MatchingCounts returns, for each visible tag, the size of the
// intersection between the expression result and that tag's set. A nil
// expression reports each tag's own size.
func (e *Evaluator) MatchingCounts(expr Expr, visibleTags []string) []TagCount {
	out := make([]TagCount, 0, len(visibleTags))

	if expr == nil {
		for _, tag := range visibleTags {
			count := 0
			if set, ok := e.index[tag]; ok {
				count = set.Size()
			}
			out = append(out, TagCount{Tag: tag, Count: count})
		}
		return out
	}

	result := e.Evaluate(expr)
	for _, tag := range visibleTags {
		count := 0
		if set, ok := e.index[tag]; ok {
			count = result.Intersect(set).Size()
		}
		out = append(out, TagCount{Tag: tag, Count: count})
	}
	return out
}

// Samples returns the first limit album ids (ascending) from the
// expression result, or from the universe when expr is nil.
func (e *Evaluator) Samples(expr Expr, limit int) []int {
	if limit <= 0 {
		return nil
	}

	ids := e.Evaluate(expr).ToList()
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}
