// Package taxonomy provides rule-driven tag classification and the static
// parent/child hierarchy used for category inference and inherited-tag
// queries.
package taxonomy

import (
	"sort"
	"strings"
)

// Group is a classification bucket for tags.
type Group string

const (
	GroupPrimary   Group = "primary"
	GroupSubgenres Group = "subgenres"
	GroupModifiers Group = "modifiers"
	GroupFusion    Group = "fusion"
	GroupRegional  Group = "regional"
	GroupOther     Group = "other"
)

// primaryGenres are matched exactly, before any keyword rule.
var primaryGenres = map[string]bool{
	"metal": true, "rock": true, "punk": true, "jazz": true,
	"folk": true, "electronic": true, "ambient": true, "blues": true,
}

// subgenreSuffixes mark known subgenre compounds ("death metal").
var subgenreSuffixes = []string{" metal", " rock", " punk", " jazz", " core"}

// modifierKeywords are qualities layered onto a genre rather than genres
// themselves.
var modifierKeywords = []string{
	"atmospheric", "melodic", "technical", "brutal", "symphonic",
	"epic", "raw", "depressive", "funeral", "experimental",
}

// fusionKeywords mark cross-genre constructions.
var fusionKeywords = []string{"post-", "post ", "core", "fusion", "crossover", "blackened"}

// regionalKeywords are nationality and scene adjectives.
var regionalKeywords = []string{
	"norwegian", "swedish", "finnish", "german", "british", "american",
	"japanese", "brazilian", "french", "polish", "greek", "scandinavian",
}

// Groups classifies tags by ordered rule matching: primary exact match,
// fusion keyword, regional keyword, modifier keyword, subgenre suffix,
// then other.
type Groups struct{}

// NewGroups returns the rule-driven classifier.
func NewGroups() *Groups {
	return &Groups{}
}

// CategorizeTag assigns a single group to a tag.
func (g *Groups) CategorizeTag(tag string) Group {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return GroupOther
	}

	if primaryGenres[tag] {
		return GroupPrimary
	}
	for _, kw := range fusionKeywords {
		if strings.Contains(tag, kw) {
			return GroupFusion
		}
	}
	for _, kw := range regionalKeywords {
		if strings.Contains(tag, kw) {
			return GroupRegional
		}
	}
	for _, kw := range modifierKeywords {
		if strings.Contains(tag, kw) {
			return GroupModifiers
		}
	}
	for _, suffix := range subgenreSuffixes {
		if strings.HasSuffix(tag, suffix) {
			return GroupSubgenres
		}
	}
	return GroupOther
}

// GroupTags applies CategorizeTag to every tag, preserving input order
// within each group.
func (g *Groups) GroupTags(tags []string) map[Group][]string {
	out := make(map[Group][]string)
	for _, tag := range tags {
		group := g.CategorizeTag(tag)
		out[group] = append(out[group], tag)
	}
	return out
}

// RelatedSubgenres returns the known child subgenres for a primary genre,
// sorted lexicographically.
func (g *Groups) RelatedSubgenres(genre string) []string {
	children := parentTable.children(strings.ToLower(strings.TrimSpace(genre)))
	sort.Strings(children)
	return children
}

// StyleCombinations returns modifier+genre combinations for a genre
// ("atmospheric black metal" for "black metal").
func (g *Groups) StyleCombinations(genre string) []string {
	genre = strings.ToLower(strings.TrimSpace(genre))
	if genre == "" {
		return nil
	}
	out := make([]string, 0, len(modifierKeywords))
	for _, mod := range modifierKeywords {
		out = append(out, mod+" "+genre)
	}
	return out
}

// CategoryHierarchy returns the full parent -> children view of the
// static hierarchy. The returned map is a copy.
func (g *Groups) CategoryHierarchy() map[string][]string {
	out := make(map[string][]string, len(parentTable.byParent))
	for parent, children := range parentTable.byParent {
		list := make([]string, len(children))
		copy(list, children)
		sort.Strings(list)
		out[parent] = list
	}
	return out
}
