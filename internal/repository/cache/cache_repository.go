package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/route-microservice/internal/domain"
	"github.com/route-microservice/internal/domain/repository"
)

const (
	routeKeyPrefix = "route:"
	statsKey       = "stats:routes"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return val > 0, nil
}

// GetRoute получает нормализованный маршрут из кеша
func (r *cacheRepository) GetRoute(ctx context.Context, id uuid.UUID) (*domain.NormalizedRoute, error) {
	data, err := r.Get(ctx, routeKeyPrefix+id.String())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var route domain.NormalizedRoute
	if err := json.Unmarshal(data, &route); err != nil {
		r.logger.Error("Failed to unmarshal route from cache",
			zap.String("route_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("unmarshal route: %w", err)
	}

	return &route, nil
}

// SetRoute сохраняет нормализованный маршрут в кеше
func (r *cacheRepository) SetRoute(ctx context.Context, route *domain.NormalizedRoute, ttl time.Duration) error {
	data, err := json.Marshal(route)
	if err != nil {
		r.logger.Error("Failed to marshal route",
			zap.String("route_id", route.RouteID.String()),
			zap.Error(err))
		return fmt.Errorf("marshal route: %w", err)
	}

	return r.Set(ctx, routeKeyPrefix+route.RouteID.String(), data, ttl)
}

// GetStats получает статистику из кеша
func (r *cacheRepository) GetStats(ctx context.Context) (*domain.RouteStatistics, error) {
	data, err := r.Get(ctx, statsKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var stats domain.RouteStatistics
	if err := json.Unmarshal(data, &stats); err != nil {
		r.logger.Error("Failed to unmarshal stats from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}

	return &stats, nil
}

// SetStats сохраняет статистику в кеше
func (r *cacheRepository) SetStats(ctx context.Context, stats *domain.RouteStatistics, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		r.logger.Error("Failed to marshal stats", zap.Error(err))
		return fmt.Errorf("marshal stats: %w", err)
	}

	return r.Set(ctx, statsKey, data, ttl)
}
