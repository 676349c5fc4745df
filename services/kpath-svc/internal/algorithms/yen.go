package algorithms

import (
	"kpaths/pkg/apperror"
	"kpaths/pkg/domain"
)

// =============================================================================
// Yen's K Shortest Loopless Paths
// =============================================================================
//
// Yen's algorithm ranks the k cheapest simple paths between two vertices.
// Starting from the shortest path, each round takes the last accepted path
// and, for every vertex on it (the spur vertex), searches for the cheapest
// way to leave the shared prefix (the root path) along an edge no accepted
// path with the same root has used. Every deviation found goes into the
// candidate set B; the cheapest member of B becomes the next accepted path.
//
// Per spur index j of the previous path P:
//  1. for every accepted path sharing P[0..j], remove its edge (p[j], p[j+1])
//  2. remove the root edges (P[x], P[x+1]) for x < j and keep the search out
//     of the root vertices P[0..j-1]
//  3. search spur vertex P[j] -> target; on success insert root + spur into B
//  4. restore every removed edge before moving on, found or not
//
// The graph is mutated in place during a run and is returned to its
// original state when KShortestPaths returns.
//
// Time Complexity: O(k * V * V^2) shortest-path work in the worst case
// Space Complexity: O(k * V) for accepted paths plus |B| * V for candidates
//
// References:
//   - Yen, J. Y. (1971). "Finding the k shortest loopless paths in a network"
// =============================================================================

// RankResult is the outcome of a ranking run.
type RankResult struct {
	// Paths holds the accepted list A in rank order; costs never decrease.
	Paths []domain.WeightedPath

	// SpurSearches counts shortest-path searches run after the first one.
	SpurSearches int

	// CandidatesLeft is |B| when the run stopped.
	CandidatesLeft int
}

// Vertices returns the accepted paths without their costs.
func (r *RankResult) Vertices() []domain.Path {
	paths := make([]domain.Path, len(r.Paths))
	for i, wp := range r.Paths {
		paths[i] = wp.Path
	}
	return paths
}

// KShortestPaths ranks up to k loopless paths from source to target.
//
// The shortest path is always accepted when one exists, so k <= 1 yields at
// most one path. An unreachable target is not an error: the result is empty.
// Fewer than k paths are returned when the graph runs out of loopless ones.
func KShortestPaths(g *domain.Graph, source, target uint32, k int) (*RankResult, error) {
	if err := checkEndpoints(g, source, target); err != nil {
		return nil, err
	}

	result := &RankResult{Paths: make([]domain.WeightedPath, 0, max(k, 1))}

	first, err := shortestPath(g, source, target, nil)
	if err != nil {
		if apperror.IsNotFound(err) {
			return result, nil
		}
		return nil, err
	}
	result.Paths = append(result.Paths, first)

	candidates := NewCandidateSet()
	removed := make([]domain.RemovedEdge, 0, 16)

	for i := 1; i < k; i++ {
		prev := result.Paths[i-1].Path
		var rootCost uint64

		for j := 0; j < len(prev)-1; j++ {
			removed = removed[:0]

			// Block edges already taken from this root by accepted paths,
			// including prev's own (prev[j], prev[j+1]).
			for _, accepted := range result.Paths {
				p := accepted.Path
				if p.SharesPrefix(prev, j+1) && len(p) > j+1 {
					removed = removeIfPresent(g, removed, p[j], p[j+1])
				}
			}
			for x := 0; x < j; x++ {
				removed = removeIfPresent(g, removed, prev[x], prev[x+1])
			}

			spur, err := shortestPath(g, prev[j], target, prev[:j])
			result.SpurSearches++
			if err == nil {
				candidates.Insert(splice(prev[:j], rootCost, spur))
			}

			g.Restore(removed)

			if err != nil && !apperror.IsNotFound(err) {
				return nil, err
			}

			w, _ := g.Weight(prev[j], prev[j+1])
			rootCost += uint64(w)
		}

		best, ok := candidates.PopMin()
		if !ok {
			break
		}
		result.Paths = append(result.Paths, best)
	}

	result.CandidatesLeft = candidates.Len()
	return result, nil
}

// removeIfPresent takes a->b out of g and records it, skipping edges that
// are already absent so every edge is recorded at most once per spur step.
func removeIfPresent(g *domain.Graph, removed []domain.RemovedEdge, a, b uint32) []domain.RemovedEdge {
	if _, ok := g.Weight(a, b); !ok {
		return removed
	}
	return append(removed, g.RemoveEdge(a, b))
}

// splice joins the root path with a spur path that starts at the spur vertex.
func splice(root domain.Path, rootCost uint64, spur domain.WeightedPath) domain.WeightedPath {
	path := make(domain.Path, 0, len(root)+len(spur.Path))
	path = append(path, root...)
	path = append(path, spur.Path...)
	return domain.WeightedPath{
		Cost: rootCost + spur.Cost,
		Path: path,
	}
}
