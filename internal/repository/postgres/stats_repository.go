package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/route-microservice/internal/domain"
	"github.com/route-microservice/internal/domain/repository"
)

type statsRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewStatsRepository создает новый экземпляр stats repository
func NewStatsRepository(db *DB, logger *zap.Logger) repository.StatsRepository {
	return &statsRepository{
		db:     db,
		logger: logger,
	}
}

// GetStatistics возвращает агрегированную статистику по маршрутам
func (r *statsRepository) GetStatistics(ctx context.Context) (*domain.RouteStatistics, error) {
	stats := &domain.RouteStatistics{
		BySource: make(map[string]int),
	}

	// Общие агрегаты
	query := `
		SELECT COUNT(*)                          AS total_routes,
		       COALESCE(SUM(total_distance_m), 0) AS total_distance_m,
		       COALESCE(AVG(point_count), 0)      AS avg_point_count,
		       MAX(created_at_utc)                AS last_created_at
		FROM routes`

	var row struct {
		TotalRoutes    int        `db:"total_routes"`
		TotalDistanceM float64    `db:"total_distance_m"`
		AvgPointCount  float64    `db:"avg_point_count"`
		LastCreatedAt  *time.Time `db:"last_created_at"`
	}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		r.logger.Error("failed to get route totals", zap.Error(err))
		return nil, fmt.Errorf("get route totals: %w", err)
	}

	stats.TotalRoutes = row.TotalRoutes
	stats.TotalDistanceM = row.TotalDistanceM
	stats.AvgPointCount = row.AvgPointCount
	stats.LastCreatedAt = row.LastCreatedAt

	// Группировка по источнику
	bySourceQuery := `
		SELECT source, COUNT(*) AS count
		FROM routes
		GROUP BY source`

	rows, err := r.db.QueryxContext(ctx, bySourceQuery)
	if err != nil {
		r.logger.Error("failed to get routes by source", zap.Error(err))
		return nil, fmt.Errorf("get routes by source: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("scan routes by source: %w", err)
		}
		stats.BySource[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routes by source: %w", err)
	}

	return stats, nil
}
