package domain

// GraphStatistics статистика графа запроса
type GraphStatistics struct {
	Vertices        int
	Edges           int
	ZeroWeightEdges int
	TotalWeight     uint64
	MaxWeight       uint32
	// Density = Edges / (n * (n-1))
	Density       float64
	MaxOutDegree  int
	MaxInDegree   int
	IsolatedCount int
	// ReachableFromSource включает саму вершину source
	ReachableFromSource int
	TargetReachable     bool
}

// CalculateGraphStatistics вычисляет статистику графа относительно пары source, target
func CalculateGraphStatistics(g *Graph, source, target uint32) *GraphStatistics {
	stats := &GraphStatistics{Vertices: g.n}

	inDegree := make([]int, g.n)
	outDegree := make([]int, g.n)

	for a := 0; a < g.n; a++ {
		row := g.weights[a*g.n : (a+1)*g.n]
		for b, w := range row {
			if w == NoEdge {
				continue
			}

			stats.Edges++
			if w == 0 {
				stats.ZeroWeightEdges++
			}
			stats.TotalWeight += uint64(w)
			stats.MaxWeight = max(stats.MaxWeight, uint32(w))

			outDegree[a]++
			inDegree[b]++
		}
	}

	for v := 0; v < g.n; v++ {
		stats.MaxOutDegree = max(stats.MaxOutDegree, outDegree[v])
		stats.MaxInDegree = max(stats.MaxInDegree, inDegree[v])
		if outDegree[v] == 0 && inDegree[v] == 0 {
			stats.IsolatedCount++
		}
	}

	if g.n > 1 {
		stats.Density = float64(stats.Edges) / float64(g.n*(g.n-1))
	}

	reachable := Reachable(g, source)
	for _, ok := range reachable {
		if ok {
			stats.ReachableFromSource++
		}
	}
	stats.TargetReachable = g.contains(target) && reachable[target]

	return stats
}
