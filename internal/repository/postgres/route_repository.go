package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/route-microservice/internal/domain"
	"github.com/route-microservice/internal/domain/repository"
)

type routeRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRouteRepository создает новый экземпляр route repository
func NewRouteRepository(db *DB, logger *zap.Logger) repository.RouteRepository {
	return &routeRepository{
		db:     db,
		logger: logger,
	}
}

// routeRow - строка таблицы routes
type routeRow struct {
	ID             uuid.UUID `db:"id"`
	RouteVersion   string    `db:"route_version"`
	Name           *string   `db:"name"`
	Source         string    `db:"source"`
	SpacingM       float64   `db:"spacing_m"`
	TotalDistanceM float64   `db:"total_distance_m"`
	PointCount     int       `db:"point_count"`
	MinLat         float64   `db:"min_lat"`
	MinLon         float64   `db:"min_lon"`
	MaxLat         float64   `db:"max_lat"`
	MaxLon         float64   `db:"max_lon"`
	Points         []byte    `db:"points"`
	SourceRawHash  string    `db:"source_raw_hash"`
	CreatedAtUTC   time.Time `db:"created_at_utc"`
}

// Save сохраняет нормализованный маршрут
func (r *routeRepository) Save(ctx context.Context, route *domain.NormalizedRoute, name *string, source string) error {
	points, err := json.Marshal(route.Normalized.Points)
	if err != nil {
		return fmt.Errorf("marshal points: %w", err)
	}

	query := `
		INSERT INTO routes (
			id, route_version, name, source,
			spacing_m, total_distance_m, point_count,
			min_lat, min_lon, max_lat, max_lon,
			points, source_raw_hash, created_at_utc
		) VALUES (
			:id, :route_version, :name, :source,
			:spacing_m, :total_distance_m, :point_count,
			:min_lat, :min_lon, :max_lat, :max_lon,
			:points, :source_raw_hash, :created_at_utc
		)`

	row := routeRow{
		ID:             route.RouteID,
		RouteVersion:   route.RouteVersion,
		Name:           name,
		Source:         source,
		SpacingM:       route.Normalized.SpacingM,
		TotalDistanceM: route.Normalized.TotalDistanceM,
		PointCount:     route.Normalized.PointCount,
		MinLat:         route.Normalized.BBoxWGS84.MinLat,
		MinLon:         route.Normalized.BBoxWGS84.MinLon,
		MaxLat:         route.Normalized.BBoxWGS84.MaxLat,
		MaxLon:         route.Normalized.BBoxWGS84.MaxLon,
		Points:         points,
		SourceRawHash:  route.SourceRawHash,
		CreatedAtUTC:   route.CreatedAtUTC,
	}

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		r.logger.Error("failed to insert route",
			zap.String("route_id", route.RouteID.String()),
			zap.Error(err))
		return fmt.Errorf("insert route: %w", err)
	}

	return nil
}

// GetByID возвращает нормализованный маршрут по ID (nil, если не найден)
func (r *routeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.NormalizedRoute, error) {
	query := `
		SELECT id, route_version, name, source,
		       spacing_m, total_distance_m, point_count,
		       min_lat, min_lon, max_lat, max_lon,
		       points, source_raw_hash, created_at_utc
		FROM routes
		WHERE id = $1`

	var row routeRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to get route",
			zap.String("route_id", id.String()),
			zap.Error(err))
		return nil, fmt.Errorf("get route: %w", err)
	}

	var points []domain.NormalizedPoint
	if err := json.Unmarshal(row.Points, &points); err != nil {
		return nil, fmt.Errorf("unmarshal points: %w", err)
	}

	return &domain.NormalizedRoute{
		RouteVersion: row.RouteVersion,
		RouteID:      row.ID,
		Normalized: domain.NormalizedRouteBody{
			SpacingM:       row.SpacingM,
			TotalDistanceM: row.TotalDistanceM,
			PointCount:     row.PointCount,
			BBoxWGS84: domain.BoundingBox{
				MinLat: row.MinLat,
				MinLon: row.MinLon,
				MaxLat: row.MaxLat,
				MaxLon: row.MaxLon,
			},
			Points: points,
		},
		SourceRawHash: row.SourceRawHash,
		CreatedAtUTC:  row.CreatedAtUTC,
	}, nil
}

// List возвращает краткие сведения о маршрутах по фильтру
func (r *routeRepository) List(ctx context.Context, filter repository.RouteFilter) ([]domain.RouteSummary, error) {
	query := `
		SELECT id, name, source, total_distance_m, point_count, created_at_utc
		FROM routes
		WHERE ($1::text[] IS NULL OR source = ANY($1))
		ORDER BY created_at_utc DESC
		LIMIT $2 OFFSET $3`

	summaries := make([]domain.RouteSummary, 0)
	if err := r.db.SelectContext(ctx, &summaries, query,
		sourcesParam(filter.Sources), filter.Limit, filter.Offset); err != nil {
		r.logger.Error("failed to list routes", zap.Error(err))
		return nil, fmt.Errorf("list routes: %w", err)
	}

	return summaries, nil
}

// Count возвращает количество маршрутов по фильтру
func (r *routeRepository) Count(ctx context.Context, filter repository.RouteFilter) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM routes
		WHERE ($1::text[] IS NULL OR source = ANY($1))`

	var count int
	if err := r.db.GetContext(ctx, &count, query, sourcesParam(filter.Sources)); err != nil {
		r.logger.Error("failed to count routes", zap.Error(err))
		return 0, fmt.Errorf("count routes: %w", err)
	}

	return count, nil
}

// sourcesParam - NULL вместо пустого массива, чтобы фильтр отключался в SQL
func sourcesParam(sources []string) interface{} {
	if len(sources) == 0 {
		return nil
	}
	return pq.Array(sources)
}
