package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"kpaths/pkg/cache"
	"kpaths/pkg/domain"
	"kpaths/pkg/logger"
	"kpaths/pkg/metrics"
	"kpaths/pkg/protocol"
	"kpaths/pkg/telemetry"
	"kpaths/services/kpath-svc/internal/algorithms"
)

// AlgorithmYen имя алгоритма в атрибутах трассировки
const AlgorithmYen = "yen"

// Ranking результат ранжирования путей для одного запроса
type Ranking struct {
	Paths        []domain.WeightedPath
	SpurSearches int
	Cached       bool
}

// Vertices возвращает пути без стоимостей, в порядке ранга
func (r *Ranking) Vertices() []domain.Path {
	paths := make([]domain.Path, len(r.Paths))
	for i, wp := range r.Paths {
		paths[i] = wp.Path
	}
	return paths
}

type KPathService struct {
	version   string
	metrics   *metrics.Metrics
	rankCache *cache.RankCache
}

func NewKPathService(version string, rankCache *cache.RankCache) *KPathService {
	return &KPathService{
		version:   version,
		metrics:   metrics.Get(),
		rankCache: rankCache,
	}
}

// Rank строит граф запроса и ранжирует до k кратчайших простых путей s -> t.
//
// Недостижимая вершина t не является ошибкой: результат пустой.
// Ошибки кэша только логируются и не влияют на ответ.
func (s *KPathService) Rank(ctx context.Context, req *protocol.Request) (*Ranking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "KPathService.Rank",
		trace.WithAttributes(
			telemetry.RequestAttributes(int(req.N), len(req.Edges), req.S, req.T, req.K)...,
		),
	)
	defer span.End()

	g, err := req.Graph()
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	stats := domain.CalculateGraphStatistics(g, req.S, req.T)
	span.SetAttributes(telemetry.GraphAttributes(
		stats.Density, stats.MaxOutDegree, stats.ReachableFromSource, stats.TargetReachable,
	)...)

	if s.metrics != nil {
		s.metrics.RecordGraphSize(stats.Vertices, stats.Edges)
	}

	// Проверяем кэш
	if s.rankCache != nil {
		cached, found, err := s.rankCache.Get(ctx, g, req.S, req.T, req.K)
		if err != nil {
			logger.WithContext(ctx).Warn("Rank cache lookup failed", "error", err)
		}
		if s.metrics != nil {
			s.metrics.RecordCacheLookup(found)
		}
		if found {
			span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
			telemetry.AddEvent(ctx, "cache_hit",
				attribute.Int(telemetry.AttrPathsFound, len(cached.Paths)),
			)
			return &Ranking{
				Paths:        cached.WeightedPaths(),
				SpurSearches: cached.SpurSearches,
				Cached:       true,
			}, nil
		}
	}

	span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, false))

	start := time.Now()
	result, err := algorithms.KShortestPaths(g, req.S, req.T, int(req.K))
	elapsed := time.Since(start)

	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordRank(false, elapsed, 0, 0)
		}
		telemetry.SetError(ctx, err)
		return nil, err
	}

	var bestCost uint64
	if len(result.Paths) > 0 {
		bestCost = result.Paths[0].Cost
	}
	span.SetAttributes(telemetry.RankAttributes(AlgorithmYen, len(result.Paths), result.SpurSearches, bestCost)...)

	if s.metrics != nil {
		s.metrics.RecordRank(true, elapsed, len(result.Paths), result.SpurSearches)
	}

	// Сохраняем в кэш
	if s.rankCache != nil {
		entry := cache.NewCachedRanking(result.Paths, result.SpurSearches)
		if err := s.rankCache.Set(ctx, g, req.S, req.T, req.K, entry, 0); err != nil {
			logger.WithContext(ctx).Warn("Failed to cache ranking", "error", err)
		}
	}

	logger.WithContext(ctx).Debug("Ranking computed",
		"paths", len(result.Paths),
		"spur_searches", result.SpurSearches,
		"candidates_left", result.CandidatesLeft,
		"density", stats.Density,
		"target_reachable", stats.TargetReachable,
		"duration_ms", elapsed.Milliseconds(),
	)

	return &Ranking{
		Paths:        result.Paths,
		SpurSearches: result.SpurSearches,
	}, nil
}

// Version возвращает версию сервиса
func (s *KPathService) Version() string {
	return s.version
}
