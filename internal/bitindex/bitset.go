// Package bitindex provides the compact album-id set representation and
// the boolean tag-expression evaluator built on top of it.
package bitindex

import (
	"github.com/bits-and-blooms/bitset"
)

// BitSet is a set of non-negative album ids backed by a word-array bit
// vector. Add/Remove mutate the receiver; the set algebra methods return
// new sets. Negative indices are silently ignored, never errors.
//
// A BitSet is owned by the index that built it; Clone produces an
// independent copy for callers that need one.
type BitSet struct {
	bits *bitset.BitSet
}

// New creates an empty BitSet.
func New() *BitSet {
	return &BitSet{bits: bitset.New(0)}
}

// FromIDs creates a BitSet containing the given album ids.
func FromIDs(ids ...int) *BitSet {
	s := New()
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts an album id. Negative ids are no-ops.
func (s *BitSet) Add(id int) {
	if id < 0 {
		return
	}
	s.bits.Set(uint(id))
}

// Remove deletes an album id. Negative ids are no-ops.
func (s *BitSet) Remove(id int) {
	if id < 0 {
		return
	}
	s.bits.Clear(uint(id))
}

// Has reports membership. Always false for negative ids.
func (s *BitSet) Has(id int) bool {
	if id < 0 {
		return false
	}
	return s.bits.Test(uint(id))
}

// Union returns a new set with every id in either set.
func (s *BitSet) Union(other *BitSet) *BitSet {
	return &BitSet{bits: s.bits.Union(other.bits)}
}

// Intersect returns a new set with the ids common to both sets.
func (s *BitSet) Intersect(other *BitSet) *BitSet {
	return &BitSet{bits: s.bits.Intersection(other.bits)}
}

// Difference returns a new set with the ids in s but not in other.
func (s *BitSet) Difference(other *BitSet) *BitSet {
	return &BitSet{bits: s.bits.Difference(other.bits)}
}

// Size returns the population count.
func (s *BitSet) Size() int {
	return int(s.bits.Count())
}

// ToList returns all ids in ascending order.
func (s *BitSet) ToList() []int {
	out := make([]int, 0, s.Size())
	for id, ok := s.bits.NextSet(0); ok; id, ok = s.bits.NextSet(id + 1) {
		out = append(out, int(id))
	}
	return out
}

// Clone returns an independent copy.
func (s *BitSet) Clone() *BitSet {
	return &BitSet{bits: s.bits.Clone()}
}

// Equal reports whether both sets contain exactly the same ids.
func (s *BitSet) Equal(other *BitSet) bool {
	return s.bits.Equal(other.bits)
}
