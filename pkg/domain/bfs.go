package domain

// Reachable возвращает отметки вершин, достижимых из source по
// присутствующим рёбрам. Обход в ширину по строкам матрицы смежности.
func Reachable(g *Graph, source uint32) []bool {
	visited := make([]bool, g.n)
	if !g.contains(source) {
		return visited
	}

	queue := make([]int, 0, g.n)
	queue = append(queue, int(source))
	visited[source] = true

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		row := g.weights[u*g.n : (u+1)*g.n]
		for v, w := range row {
			if w == NoEdge || visited[v] {
				continue
			}
			visited[v] = true
			queue = append(queue, v)
		}
	}

	return visited
}

// IsReachable проверяет, существует ли путь от source к target
func IsReachable(g *Graph, source, target uint32) bool {
	if !g.contains(target) {
		return false
	}
	return Reachable(g, source)[target]
}

// CountReachable возвращает число вершин, достижимых из source (включая её)
func CountReachable(g *Graph, source uint32) int {
	count := 0
	for _, ok := range Reachable(g, source) {
		if ok {
			count++
		}
	}
	return count
}
