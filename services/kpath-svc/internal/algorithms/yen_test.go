package algorithms

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpaths/pkg/apperror"
	"kpaths/pkg/domain"
)

func TestKShortestPaths(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		edges     []domain.Edge
		source    uint32
		target    uint32
		k         int
		wantPaths []domain.Path
		wantCosts []uint64
	}{
		{
			name:      "triangle",
			n:         3,
			edges:     []domain.Edge{e(0, 1, 1), e(1, 2, 1), e(0, 2, 5)},
			source:    0,
			target:    2,
			k:         2,
			wantPaths: []domain.Path{{0, 1, 2}, {0, 2}},
			wantCosts: []uint64{2, 5},
		},
		{
			name:      "fewer_than_k",
			n:         3,
			edges:     []domain.Edge{e(0, 1, 1), e(1, 2, 1), e(0, 2, 5)},
			source:    0,
			target:    2,
			k:         10,
			wantPaths: []domain.Path{{0, 1, 2}, {0, 2}},
			wantCosts: []uint64{2, 5},
		},
		{
			name:      "source_equals_target",
			n:         3,
			edges:     []domain.Edge{e(0, 1, 1), e(1, 0, 1)},
			source:    1,
			target:    1,
			k:         5,
			wantPaths: []domain.Path{{1}},
			wantCosts: []uint64{0},
		},
		{
			name:      "k_one",
			n:         3,
			edges:     []domain.Edge{e(0, 1, 1), e(1, 2, 1), e(0, 2, 5)},
			source:    0,
			target:    2,
			k:         1,
			wantPaths: []domain.Path{{0, 1, 2}},
			wantCosts: []uint64{2},
		},
		{
			name:      "k_zero_behaves_like_one",
			n:         3,
			edges:     []domain.Edge{e(0, 1, 1), e(1, 2, 1), e(0, 2, 5)},
			source:    0,
			target:    2,
			k:         0,
			wantPaths: []domain.Path{{0, 1, 2}},
			wantCosts: []uint64{2},
		},
		{
			name:      "unreachable",
			n:         3,
			edges:     []domain.Edge{e(0, 1, 1)},
			source:    0,
			target:    2,
			k:         3,
			wantPaths: []domain.Path{},
			wantCosts: []uint64{},
		},
		{
			name: "equal_cost_paths_in_lexicographic_order",
			n:    4,
			edges: []domain.Edge{
				e(0, 2, 1), e(2, 3, 1),
				e(0, 1, 1), e(1, 3, 1),
			},
			source:    0,
			target:    3,
			k:         3,
			wantPaths: []domain.Path{{0, 1, 3}, {0, 2, 3}},
			wantCosts: []uint64{2, 2},
		},
		{
			// Classic Yen example: C=0 D=1 E=2 F=3 G=4 H=5.
			name: "yen_wikipedia",
			n:    6,
			edges: []domain.Edge{
				e(0, 1, 3), e(0, 2, 2),
				e(1, 3, 4),
				e(2, 1, 1), e(2, 3, 2), e(2, 4, 3),
				e(3, 4, 2), e(3, 5, 1),
				e(4, 5, 2),
			},
			source: 0,
			target: 5,
			k:      3,
			wantPaths: []domain.Path{
				{0, 2, 3, 5},
				{0, 2, 4, 5},
				{0, 1, 3, 5},
			},
			wantCosts: []uint64{5, 7, 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, tt.n, tt.edges...)

			result, err := KShortestPaths(g, tt.source, tt.target, tt.k)
			require.NoError(t, err)

			paths := result.Vertices()
			costs := make([]uint64, len(result.Paths))
			for i, wp := range result.Paths {
				costs[i] = wp.Cost
			}

			assert.Equal(t, tt.wantPaths, paths)
			assert.Equal(t, tt.wantCosts, costs)
			assertRanked(t, g, tt.source, tt.target, result.Paths)
		})
	}
}

func TestKShortestPaths_NeverRevisitsRootVertex(t *testing.T) {
	// Without keeping the spur search out of the root path, the spur from
	// vertex 1 could return to 0 and produce 0 -> 1 -> 0 -> 2.
	g := buildGraph(t, 3, e(0, 1, 1), e(1, 2, 1), e(1, 0, 1), e(0, 2, 5))

	result, err := KShortestPaths(g, 0, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, []domain.Path{{0, 1, 2}, {0, 2}}, result.Vertices())
	assertRanked(t, g, 0, 2, result.Paths)
}

func TestKShortestPaths_RestoresGraph(t *testing.T) {
	g := buildGraph(t, 5,
		e(0, 1, 1), e(0, 2, 2), e(1, 2, 1), e(1, 3, 3),
		e(2, 3, 1), e(2, 4, 4), e(3, 4, 1), e(3, 1, 0),
	)
	before := g.Edges()

	_, err := KShortestPaths(g, 0, 4, 20)
	require.NoError(t, err)

	assert.Equal(t, before, g.Edges())
}

func TestKShortestPaths_Idempotent(t *testing.T) {
	g := buildGraph(t, 5,
		e(0, 1, 2), e(0, 2, 2), e(1, 3, 2), e(2, 3, 2),
		e(1, 2, 0), e(2, 1, 0), e(3, 4, 1), e(1, 4, 5),
	)

	first, err := KShortestPaths(g, 0, 4, 10)
	require.NoError(t, err)
	second, err := KShortestPaths(g, 0, 4, 10)
	require.NoError(t, err)

	assert.Equal(t, first.Paths, second.Paths)
}

func TestKShortestPaths_CompleteGraph(t *testing.T) {
	// Every simple path 0 -> 3 in K4 has unit edges; there are 5 of them.
	g := buildGraph(t, 4)
	for a := uint32(0); a < 4; a++ {
		for b := uint32(0); b < 4; b++ {
			if a != b {
				require.NoError(t, g.SetEdge(a, b, 1))
			}
		}
	}

	result, err := KShortestPaths(g, 0, 3, domain.MaxK)
	require.NoError(t, err)

	assert.Equal(t, []domain.Path{
		{0, 3},
		{0, 1, 3},
		{0, 2, 3},
		{0, 1, 2, 3},
		{0, 2, 1, 3},
	}, result.Vertices())
	assertRanked(t, g, 0, 3, result.Paths)
	assert.Equal(t, 0, result.CandidatesLeft)
}

func TestKShortestPaths_RandomGraphsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 25; round++ {
		n := 2 + rng.Intn(9)
		g := buildGraph(t, n)
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				if a != b && rng.Intn(3) == 0 {
					require.NoError(t, g.SetEdge(uint32(a), uint32(b), uint32(rng.Intn(10))))
				}
			}
		}
		s := uint32(rng.Intn(n))
		tgt := uint32(rng.Intn(n))

		result, err := KShortestPaths(g, s, tgt, 1+rng.Intn(15))
		require.NoError(t, err)
		assertRanked(t, g, s, tgt, result.Paths)

		if len(result.Paths) > 0 {
			shortest, err := ShortestPath(g, s, tgt)
			require.NoError(t, err)
			assert.Equal(t, shortest, result.Paths[0])
		}
	}
}

func TestKShortestPaths_InvalidArguments(t *testing.T) {
	g := buildGraph(t, 2, e(0, 1, 1))

	_, err := KShortestPaths(nil, 0, 1, 1)
	assert.True(t, apperror.Is(err, apperror.CodeNilInput))

	_, err = KShortestPaths(g, 0, 2, 1)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidArgument))
}

func BenchmarkKShortestPaths_Grid(b *testing.B) {
	const side = 12
	g, _ := domain.NewGraph(side * side)
	for r := 0; r < side; r++ {
		for c := 0; c < side; c++ {
			v := uint32(r*side + c)
			if c+1 < side {
				_ = g.SetEdge(v, v+1, uint32(1+(r+c)%3))
			}
			if r+1 < side {
				_ = g.SetEdge(v, v+side, uint32(1+(r*c)%4))
			}
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = KShortestPaths(g, 0, side*side-1, domain.MaxK)
	}
}
