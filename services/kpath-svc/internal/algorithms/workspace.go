package algorithms

import (
	"math"
	"sync"

	"kpaths/pkg/domain"
)

// =============================================================================
// Workspace Pool
// =============================================================================
//
// Yen's algorithm runs one shortest-path search per spur vertex, so a single
// request with k=100 on a long path can run thousands of searches. Each
// search needs cost, parent and visited arrays of length n. The pool lets
// consecutive searches (and consecutive requests on the same P) reuse them
// instead of allocating three fresh slices every time.
//
// The pool is safe for concurrent use; a workspace is owned by exactly one
// search between acquire and release.
// =============================================================================

const infinity = math.MaxUint64

// workspace holds the per-search scratch arrays of the dense Dijkstra.
type workspace struct {
	cost    []uint64
	parent  []uint32
	visited []bool
}

var workspacePool = sync.Pool{
	New: func() any {
		return &workspace{
			cost:    make([]uint64, 0, 64),
			parent:  make([]uint32, 0, 64),
			visited: make([]bool, 0, 64),
		}
	},
}

// acquireWorkspace returns a workspace sized and reset for n vertices.
func acquireWorkspace(n int) *workspace {
	ws := workspacePool.Get().(*workspace)
	ws.reset(n)
	return ws
}

// releaseWorkspace returns ws to the pool. Passing nil is a no-op.
func releaseWorkspace(ws *workspace) {
	if ws == nil {
		return
	}
	// Do not keep oversized arrays alive forever.
	if cap(ws.cost) > domain.MaxVertices {
		return
	}
	workspacePool.Put(ws)
}

func (ws *workspace) reset(n int) {
	if cap(ws.cost) < n {
		ws.cost = make([]uint64, n)
		ws.parent = make([]uint32, n)
		ws.visited = make([]bool, n)
	} else {
		ws.cost = ws.cost[:n]
		ws.parent = ws.parent[:n]
		ws.visited = ws.visited[:n]
	}

	for i := 0; i < n; i++ {
		ws.cost[i] = infinity
		ws.parent[i] = domain.NoParent
		ws.visited[i] = false
	}
}
