package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"kpaths/pkg/domain"
)

// RankCache специализированный кэш для результатов ранжирования
type RankCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedRanking кэшированный результат
type CachedRanking struct {
	Paths        []CachedPath `json:"paths"`
	SpurSearches int          `json:"spur_searches"`
	ComputedAt   time.Time    `json:"computed_at"`
}

// CachedPath кэшированный путь со стоимостью
type CachedPath struct {
	Cost     uint64   `json:"cost"`
	Vertices []uint32 `json:"vertices"`
}

// NewRankCache создаёт кэш для результатов ранжирования
func NewRankCache(cache Cache, defaultTTL time.Duration) *RankCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &RankCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get получает кэшированный результат
func (rc *RankCache) Get(ctx context.Context, g *domain.Graph, source, target, k uint32) (*CachedRanking, bool, error) {
	key := RankKey(g, source, target, k)

	data, err := rc.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result CachedRanking
	if err := json.Unmarshal(data, &result); err != nil {
		// Повреждённую запись удаляем, ошибку удаления игнорируем
		_ = rc.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}

	return &result, true, nil
}

// Set сохраняет результат в кэш
func (rc *RankCache) Set(ctx context.Context, g *domain.Graph, source, target, k uint32, result *CachedRanking, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = rc.defaultTTL
	}

	result.ComputedAt = time.Now()

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return rc.cache.Set(ctx, RankKey(g, source, target, k), data, ttl)
}

// Stats возвращает статистику нижележащего кэша
func (rc *RankCache) Stats(ctx context.Context) (*Stats, error) {
	return rc.cache.Stats(ctx)
}

// Close закрывает нижележащий кэш
func (rc *RankCache) Close() error {
	return rc.cache.Close()
}

// NewCachedRanking собирает кэшируемое представление ранжирования
func NewCachedRanking(paths []domain.WeightedPath, spurSearches int) *CachedRanking {
	result := &CachedRanking{
		Paths:        make([]CachedPath, len(paths)),
		SpurSearches: spurSearches,
	}
	for i, wp := range paths {
		result.Paths[i] = CachedPath{Cost: wp.Cost, Vertices: wp.Path.Clone()}
	}
	return result
}

// WeightedPaths конвертирует кэшированный результат обратно в пути
func (r *CachedRanking) WeightedPaths() []domain.WeightedPath {
	paths := make([]domain.WeightedPath, len(r.Paths))
	for i, p := range r.Paths {
		paths[i] = domain.WeightedPath{Cost: p.Cost, Path: domain.Path(p.Vertices)}
	}
	return paths
}
