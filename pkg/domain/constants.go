package domain

// Границы запроса
const (
	MaxVertices   = 1024
	MaxEdges      = 16384
	MaxK          = 100
	MaxEdgeWeight = 16384
)

// DefaultPort порт сервиса по умолчанию
const DefaultPort = 5555

// MaxEdgesFor returns the largest edge count a request with n vertices may
// declare: min(MaxEdges, n(n-1)/2).
func MaxEdgesFor(n uint32) uint64 {
	limit := uint64(n) * (uint64(n) - 1) / 2
	if n == 0 {
		limit = 0
	}
	if limit > MaxEdges {
		return MaxEdges
	}
	return limit
}
