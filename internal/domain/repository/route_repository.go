package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/route-microservice/internal/domain"
)

// RouteFilter - фильтр для выборки маршрутов
type RouteFilter struct {
	Sources []string
	Limit   int
	Offset  int
}

// RouteRepository - интерфейс хранилища нормализованных маршрутов
type RouteRepository interface {
	// Save сохраняет нормализованный маршрут
	Save(ctx context.Context, route *domain.NormalizedRoute, name *string, source string) error

	// GetByID возвращает нормализованный маршрут по ID (nil, если не найден)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.NormalizedRoute, error)

	// List возвращает краткие сведения о маршрутах по фильтру
	List(ctx context.Context, filter RouteFilter) ([]domain.RouteSummary, error)

	// Count возвращает количество маршрутов по фильтру
	Count(ctx context.Context, filter RouteFilter) (int, error)
}
