package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/route-microservice/internal/domain"
)

// CacheRepository - интерфейс для работы с кешем
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// GetRoute получает нормализованный маршрут из кеша (nil при промахе)
	GetRoute(ctx context.Context, id uuid.UUID) (*domain.NormalizedRoute, error)

	// SetRoute сохраняет нормализованный маршрут в кеше
	SetRoute(ctx context.Context, route *domain.NormalizedRoute, ttl time.Duration) error

	// GetStats получает статистику из кеша (nil при промахе)
	GetStats(ctx context.Context) (*domain.RouteStatistics, error)

	// SetStats сохраняет статистику в кеше
	SetStats(ctx context.Context, stats *domain.RouteStatistics, ttl time.Duration) error
}
