package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Соединение
	AttrConnID     = "conn.id"
	AttrPeerAddr   = "net.peer.addr"
	AttrConnResult = "conn.outcome"

	// Запрос
	AttrGraphVertices = "graph.vertices"
	AttrGraphEdges    = "graph.edges"
	AttrSource        = "request.source"
	AttrTarget        = "request.target"
	AttrK             = "request.k"

	// Статистика графа
	AttrGraphDensity    = "graph.density"
	AttrGraphMaxOut     = "graph.max_out_degree"
	AttrReachable       = "graph.reachable_from_source"
	AttrTargetReachable = "graph.target_reachable"

	// Алгоритм
	AttrAlgorithm    = "algorithm.name"
	AttrPathsFound   = "algorithm.paths_found"
	AttrSpurSearches = "algorithm.spur_searches"
	AttrBestCost     = "algorithm.best_cost"
	AttrCacheHit     = "cache.hit"
)

// RequestAttributes возвращает атрибуты запроса ранжирования
func RequestAttributes(vertices, edges int, source, target uint32, k uint32) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrGraphVertices, vertices),
		attribute.Int(AttrGraphEdges, edges),
		attribute.Int64(AttrSource, int64(source)),
		attribute.Int64(AttrTarget, int64(target)),
		attribute.Int64(AttrK, int64(k)),
	}
}

// RankAttributes возвращает атрибуты результата ранжирования
func RankAttributes(algorithm string, paths, spurSearches int, bestCost uint64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, algorithm),
		attribute.Int(AttrPathsFound, paths),
		attribute.Int(AttrSpurSearches, spurSearches),
		attribute.Int64(AttrBestCost, int64(bestCost)),
	}
}

// GraphAttributes возвращает атрибуты статистики графа запроса
func GraphAttributes(density float64, maxOutDegree, reachable int, targetReachable bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64(AttrGraphDensity, density),
		attribute.Int(AttrGraphMaxOut, maxOutDegree),
		attribute.Int(AttrReachable, reachable),
		attribute.Bool(AttrTargetReachable, targetReachable),
	}
}
