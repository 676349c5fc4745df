package algorithms

import (
	"github.com/tidwall/btree"

	"kpaths/pkg/domain"
)

// CandidateSet is the pool B of deviation paths awaiting selection.
//
// Entries are ordered by domain.WeightedPathLess: cost ascending, then
// lexicographic vertex order. Inserting an entry equal in both cost and
// vertex sequence to an existing one leaves a single entry.
type CandidateSet struct {
	tree *btree.BTreeG[domain.WeightedPath]
}

// NewCandidateSet creates an empty set. The set is owned by one ranking
// run, so the tree is built without internal locking.
func NewCandidateSet() *CandidateSet {
	return &CandidateSet{
		tree: btree.NewBTreeGOptions(domain.WeightedPathLess, btree.Options{NoLocks: true}),
	}
}

// Insert adds c and reports whether it was not already present.
func (s *CandidateSet) Insert(c domain.WeightedPath) bool {
	_, replaced := s.tree.Set(c)
	return !replaced
}

// PopMin removes and returns the cheapest candidate.
func (s *CandidateSet) PopMin() (domain.WeightedPath, bool) {
	return s.tree.PopMin()
}

// Len returns the number of distinct candidates.
func (s *CandidateSet) Len() int {
	return s.tree.Len()
}
