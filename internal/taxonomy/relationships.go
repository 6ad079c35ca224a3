package taxonomy

import (
	"sort"
	"strings"
)

// hierarchy is the stored parent-tag relation. Children may have several
// parents (fusion genres), which makes the ancestor closure a DAG walk,
// not a tree walk.
type hierarchy struct {
	byChild  map[string][]string // child -> parents
	byParent map[string][]string // parent -> children
}

func newHierarchy(edges map[string][]string) *hierarchy {
	h := &hierarchy{
		byChild:  make(map[string][]string),
		byParent: make(map[string][]string),
	}
	for parent, children := range edges {
		for _, child := range children {
			h.byParent[parent] = append(h.byParent[parent], child)
			h.byChild[child] = append(h.byChild[child], parent)
		}
	}
	return h
}

func (h *hierarchy) parents(tag string) []string {
	return h.byChild[tag]
}

func (h *hierarchy) children(tag string) []string {
	out := make([]string, len(h.byParent[tag]))
	copy(out, h.byParent[tag])
	return out
}

// parentTable is the built-in genre hierarchy.
var parentTable = newHierarchy(map[string][]string{
	"metal": {
		"black metal", "death metal", "doom metal", "thrash metal",
		"heavy metal", "speed metal", "power metal", "prog metal",
		"symphonic metal", "folk metal",
	},
	"rock": {
		"prog rock", "hard rock", "post rock", "psych rock",
		"folk rock", "art rock",
	},
	"punk":        {"post punk", "hardcore punk", "crust punk"},
	"jazz":        {"free jazz", "jazz fusion", "bebop"},
	"electronic":  {"ambient", "industrial", "techno", "drum and bass"},
	"black metal": {"symphonic black metal"},
	"death metal": {"melodic death metal", "technical death metal"},
	// Fusion children with two parents.
	"folk": {"folk metal", "folk rock"},
})

// Relationships answers hierarchy queries over the stored parent-tag
// relation. Traversal is over explicit edges; nothing is inferred.
type Relationships struct {
	h *hierarchy
}

// NewRelationships returns hierarchy queries over the built-in table.
func NewRelationships() *Relationships {
	return &Relationships{h: parentTable}
}

// NewRelationshipsFrom builds hierarchy queries over an explicit
// parent -> children table.
func NewRelationshipsFrom(edges map[string][]string) *Relationships {
	return &Relationships{h: newHierarchy(edges)}
}

// ParentTags returns the direct parents of a tag, sorted.
func (r *Relationships) ParentTags(tag string) []string {
	parents := r.h.parents(normalize(tag))
	out := make([]string, len(parents))
	copy(out, parents)
	sort.Strings(out)
	return out
}

// ChildTags returns the direct children of a tag, sorted.
func (r *Relationships) ChildTags(tag string) []string {
	out := r.h.children(normalize(tag))
	sort.Strings(out)
	return out
}

// InheritedTags returns the full ancestor closure of a tag: every
// transitive parent, deduplicated even with diamond inheritance, sorted.
func (r *Relationships) InheritedTags(tag string) []string {
	seen := make(map[string]bool)
	var walk func(t string)
	walk = func(t string) {
		for _, parent := range r.h.parents(t) {
			if !seen[parent] {
				seen[parent] = true
				walk(parent)
			}
		}
	}
	walk(normalize(tag))

	out := make([]string, 0, len(seen))
	for parent := range seen {
		out = append(out, parent)
	}
	sort.Strings(out)
	return out
}

// CalculateSimilarity scores hierarchical closeness in [0,1]: 1.0 for
// identical tags, 0.75 for a direct parent/child edge, 0.6 for siblings
// (shared parent), 0.4 for a shared ancestor, and 0.1 otherwise. Callers
// treat scores below 0.5 as unrelated.
func (r *Relationships) CalculateSimilarity(tag1, tag2 string) float64 {
	t1, t2 := normalize(tag1), normalize(tag2)
	if t1 == t2 {
		return 1.0
	}

	if contains(r.h.parents(t1), t2) || contains(r.h.parents(t2), t1) {
		return 0.75
	}

	if overlaps(r.h.parents(t1), r.h.parents(t2)) {
		return 0.6
	}

	if overlaps(r.InheritedTags(t1), r.InheritedTags(t2)) {
		return 0.4
	}

	return 0.1
}

func normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func overlaps(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, x := range a {
		set[x] = true
	}
	for _, x := range b {
		if set[x] {
			return true
		}
	}
	return false
}
