package domain

import (
	"fmt"

	"kpaths/pkg/apperror"
)

// NoEdge marks an absent directed edge in the adjacency matrix.
// It is distinct from a zero-weight edge.
const NoEdge int32 = -1

// EdgeKey уникальный ключ ребра
type EdgeKey struct {
	From uint32
	To   uint32
}

// String возвращает строковое представление ключа ребра
func (e EdgeKey) String() string {
	return fmt.Sprintf("%d->%d", e.From, e.To)
}

// Edge is a weighted directed edge as it appears in a request.
type Edge struct {
	From   uint32
	To     uint32
	Weight uint32
}

// Key возвращает ключ ребра
func (e Edge) Key() EdgeKey {
	return EdgeKey{From: e.From, To: e.To}
}

// RemovedEdge records an edge taken out of the graph together with the
// weight it must be restored to.
type RemovedEdge struct {
	From   uint32
	To     uint32
	Weight int32
}

// Graph is a dense directed graph over vertices 0..n-1.
//
// Weights live in a single row-major n*n slice; NoEdge marks absence.
// The vertex count is fixed at construction. Graph is not safe for
// concurrent use: one request owns one graph for its whole lifetime.
type Graph struct {
	n       int
	weights []int32
}

// NewGraph создаёт граф без рёбер на n вершинах
func NewGraph(n int) (*Graph, error) {
	if n < 1 || n > MaxVertices {
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument,
			fmt.Sprintf("vertex count must be in [1, %d], got %d", MaxVertices, n), "n")
	}

	weights := make([]int32, n*n)
	for i := range weights {
		weights[i] = NoEdge
	}

	return &Graph{n: n, weights: weights}, nil
}

// Len returns the number of vertices.
func (g *Graph) Len() int {
	return g.n
}

func (g *Graph) contains(v uint32) bool {
	return uint64(v) < uint64(g.n)
}

func (g *Graph) index(a, b uint32) int {
	return int(a)*g.n + int(b)
}

// SetEdge creates or overwrites the edge a->b.
// Self-loops, out-of-range vertices and weights above MaxEdgeWeight are rejected.
func (g *Graph) SetEdge(a, b, w uint32) error {
	switch {
	case !g.contains(a):
		return apperror.NewWithField(apperror.CodeInvalidEdge,
			fmt.Sprintf("edge tail %d out of range [0, %d)", a, g.n), "a")
	case !g.contains(b):
		return apperror.NewWithField(apperror.CodeInvalidEdge,
			fmt.Sprintf("edge head %d out of range [0, %d)", b, g.n), "b")
	case a == b:
		return apperror.NewWithField(apperror.CodeSelfLoop,
			fmt.Sprintf("self-loop on vertex %d", a), "b")
	case w > MaxEdgeWeight:
		return apperror.NewWithField(apperror.CodeInvalidEdge,
			fmt.Sprintf("edge weight %d exceeds %d", w, MaxEdgeWeight), "w")
	}

	g.weights[g.index(a, b)] = int32(w)
	return nil
}

// Weight returns the weight of a->b and whether the edge exists.
func (g *Graph) Weight(a, b uint32) (uint32, bool) {
	if !g.contains(a) || !g.contains(b) {
		return 0, false
	}
	w := g.weights[g.index(a, b)]
	if w == NoEdge {
		return 0, false
	}
	return uint32(w), true
}

// RemoveEdge marks a->b absent and returns the previous state so the caller
// can put it back with Restore. Removing an absent edge is a no-op whose
// RemovedEdge restores to absent.
func (g *Graph) RemoveEdge(a, b uint32) RemovedEdge {
	idx := g.index(a, b)
	prev := g.weights[idx]
	g.weights[idx] = NoEdge
	return RemovedEdge{From: a, To: b, Weight: prev}
}

// Restore puts back edges previously taken out with RemoveEdge.
// Order does not matter as long as every edge was removed at most once
// since its recorded state.
func (g *Graph) Restore(removed []RemovedEdge) {
	for _, e := range removed {
		g.weights[g.index(e.From, e.To)] = e.Weight
	}
}

// EdgeCount возвращает количество присутствующих рёбер
func (g *Graph) EdgeCount() int {
	count := 0
	for _, w := range g.weights {
		if w != NoEdge {
			count++
		}
	}
	return count
}

// Edges returns present edges ordered by (from, to).
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0)
	for a := 0; a < g.n; a++ {
		row := g.weights[a*g.n : (a+1)*g.n]
		for b, w := range row {
			if w != NoEdge {
				edges = append(edges, Edge{From: uint32(a), To: uint32(b), Weight: uint32(w)})
			}
		}
	}
	return edges
}

// Clone создаёт глубокую копию графа
func (g *Graph) Clone() *Graph {
	weights := make([]int32, len(g.weights))
	copy(weights, g.weights)
	return &Graph{n: g.n, weights: weights}
}
