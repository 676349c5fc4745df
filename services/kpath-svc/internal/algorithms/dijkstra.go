package algorithms

import (
	"fmt"

	"kpaths/pkg/apperror"
	"kpaths/pkg/domain"
)

// =============================================================================
// Dense Dijkstra
// =============================================================================
//
// Single-source, single-target shortest path over the adjacency matrix.
// There is no priority queue: each step scans every unvisited vertex for the
// smallest tentative cost, which is O(V^2) overall and cheaper than a heap
// for V <= 1024 dense matrices.
//
// Time Complexity: O(V^2)
// Space Complexity: O(V)
//
// Determinism:
//   - relaxation scans heads in ascending index order and only replaces a
//     tentative cost on strict improvement
//   - extraction picks the lowest index among equal minimum costs
//
// Together these fix the tie-break among equal-cost shortest paths, which
// makes Yen's output reproducible.
//
// References:
//   - Dijkstra, E. W. (1959). "A note on two problems in connexion with graphs"
// =============================================================================

// ShortestPath returns the cheapest path from source to target.
//
// Returns apperror.ErrNoPath when target is unreachable. When source equals
// target the result is the single-vertex path with cost 0.
func ShortestPath(g *domain.Graph, source, target uint32) (domain.WeightedPath, error) {
	if err := checkEndpoints(g, source, target); err != nil {
		return domain.WeightedPath{}, err
	}
	return shortestPath(g, source, target, nil)
}

// shortestPath runs the search with the vertices in blocked treated as
// already settled, so they are never entered. blocked may be nil.
func shortestPath(g *domain.Graph, source, target uint32, blocked domain.Path) (domain.WeightedPath, error) {
	n := g.Len()
	ws := acquireWorkspace(n)
	defer releaseWorkspace(ws)

	for _, v := range blocked {
		ws.visited[v] = true
	}

	ws.cost[source] = 0
	v := source
	found := true

	for v != target {
		ws.visited[v] = true

		for u := 0; u < n; u++ {
			w, ok := g.Weight(v, uint32(u))
			if !ok {
				continue
			}
			if next := ws.cost[v] + uint64(w); next < ws.cost[u] {
				ws.cost[u] = next
				ws.parent[u] = v
			}
		}

		next, ok := extractMin(ws)
		if !ok {
			found = false
			break
		}
		v = next
	}

	if !found {
		return domain.WeightedPath{}, apperror.ErrNoPath
	}

	return domain.WeightedPath{
		Cost: ws.cost[target],
		Path: domain.ReconstructPath(ws.parent, source, target),
	}, nil
}

// extractMin picks the unvisited vertex with the smallest finite cost,
// preferring the lowest index on ties.
func extractMin(ws *workspace) (uint32, bool) {
	best := -1
	for u := range ws.cost {
		if ws.visited[u] || ws.cost[u] == infinity {
			continue
		}
		if best == -1 || ws.cost[u] < ws.cost[best] {
			best = u
		}
	}
	if best == -1 {
		return 0, false
	}
	return uint32(best), true
}

func checkEndpoints(g *domain.Graph, source, target uint32) error {
	if g == nil {
		return apperror.ErrNilGraph
	}
	n := uint64(g.Len())
	if uint64(source) >= n {
		return apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("source %d out of range [0, %d)", source, n), "s")
	}
	if uint64(target) >= n {
		return apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("target %d out of range [0, %d)", target, n), "t")
	}
	return nil
}
