package repository

import (
	"context"

	"github.com/route-microservice/internal/domain"
)

// StatsRepository - интерфейс для агрегированной статистики по маршрутам
type StatsRepository interface {
	// GetStatistics возвращает агрегированную статистику
	GetStatistics(ctx context.Context) (*domain.RouteStatistics, error)
}
