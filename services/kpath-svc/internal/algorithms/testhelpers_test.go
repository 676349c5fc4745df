package algorithms

import (
	"testing"

	"github.com/stretchr/testify/require"

	"kpaths/pkg/domain"
)

func buildGraph(t *testing.T, n int, edges ...domain.Edge) *domain.Graph {
	t.Helper()
	g, err := domain.NewGraph(n)
	require.NoError(t, err)
	for _, e := range edges {
		require.NoError(t, g.SetEdge(e.From, e.To, e.Weight))
	}
	return g
}

func e(from, to, w uint32) domain.Edge {
	return domain.Edge{From: from, To: to, Weight: w}
}

// assertRanked checks the properties every ranking must satisfy.
func assertRanked(t *testing.T, g *domain.Graph, s, tgt uint32, paths []domain.WeightedPath) {
	t.Helper()
	seen := make(map[string]bool, len(paths))
	for i, wp := range paths {
		require.NotEmpty(t, wp.Path, "path %d", i)
		require.Equal(t, s, wp.Path.Source(), "path %d source", i)
		require.Equal(t, tgt, wp.Path.Target(), "path %d target", i)
		require.True(t, wp.Path.IsLoopless(), "path %d has a repeated vertex: %s", i, wp.Path)

		cost, ok := wp.Path.Cost(g)
		require.True(t, ok, "path %d uses a missing edge: %s", i, wp.Path)
		require.Equal(t, wp.Cost, cost, "path %d cost", i)

		if i > 0 {
			require.LessOrEqual(t, paths[i-1].Cost, wp.Cost, "costs must not decrease")
		}
		key := wp.Path.String()
		require.False(t, seen[key], "duplicate path %s", key)
		seen[key] = true
	}
}
