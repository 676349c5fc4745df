package domain

import "testing"

func TestMaxEdgesFor(t *testing.T) {
	tests := []struct {
		n    uint32
		want uint64
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 3},
		{181, 16290},
		{182, 16384},
		{200, 16384},
		{1024, 16384},
	}
	for _, tt := range tests {
		if got := MaxEdgesFor(tt.n); got != tt.want {
			t.Errorf("MaxEdgesFor(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestLimits(t *testing.T) {
	// вес ребра хранится в int32 матрицы смежности
	if MaxEdgeWeight > 1<<31-1 {
		t.Errorf("MaxEdgeWeight %d does not fit the int32 adjacency matrix", MaxEdgeWeight)
	}
	if MaxEdgesFor(MaxVertices) != MaxEdges {
		t.Errorf("MaxEdgesFor(MaxVertices) = %d, want %d", MaxEdgesFor(MaxVertices), MaxEdges)
	}
	if DefaultPort != 5555 {
		t.Errorf("DefaultPort = %d, want 5555", DefaultPort)
	}
}
