package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Path is an ordered vertex sequence from a source to a target.
type Path []uint32

// Source returns the first vertex of the path.
func (p Path) Source() uint32 {
	return p[0]
}

// Target returns the last vertex of the path.
func (p Path) Target() uint32 {
	return p[len(p)-1]
}

// SharesPrefix reports whether p and other agree on their first length vertices.
func (p Path) SharesPrefix(other Path, length int) bool {
	if len(p) < length || len(other) < length {
		return false
	}
	return slices.Equal(p[:length], other[:length])
}

// IsLoopless reports whether no vertex appears twice.
func (p Path) IsLoopless() bool {
	seen := make(map[uint32]struct{}, len(p))
	for _, v := range p {
		if _, ok := seen[v]; ok {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

// Cost sums the weights of consecutive edges in g. It returns false if any
// hop is not an edge of g.
func (p Path) Cost(g *Graph) (uint64, bool) {
	var cost uint64
	for i := 0; i+1 < len(p); i++ {
		w, ok := g.Weight(p[i], p[i+1])
		if !ok {
			return 0, false
		}
		cost += uint64(w)
	}
	return cost, true
}

// Clone returns a copy that does not share storage with p.
func (p Path) Clone() Path {
	return slices.Clone(p)
}

// String formats the path as "0 -> 1 -> 2".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, " -> ")
}

// ComparePaths orders paths lexicographically by vertex sequence; a proper
// prefix sorts first.
func ComparePaths(a, b Path) int {
	return slices.Compare(a, b)
}

// WeightedPath is a path together with its total cost.
type WeightedPath struct {
	Cost uint64
	Path Path
}

// WeightedPathLess orders by cost ascending, ties broken by ComparePaths.
// Two entries are equivalent exactly when cost and vertex sequence match.
func WeightedPathLess(a, b WeightedPath) bool {
	if a.Cost != b.Cost {
		return a.Cost < b.Cost
	}
	return ComparePaths(a.Path, b.Path) < 0
}

// ReconstructPath walks parent links from target back to source.
// parent[v] == NoParent marks vertices without a predecessor.
func ReconstructPath(parent []uint32, source, target uint32) Path {
	path := Path{target}
	for v := target; v != source; {
		v = parent[v]
		if v == NoParent {
			return nil
		}
		path = append(path, v)
	}
	slices.Reverse(path)
	return path
}

// NoParent marks a vertex that has no predecessor in a shortest-path tree.
const NoParent = ^uint32(0)
