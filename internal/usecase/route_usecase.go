package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/route-microservice/internal/domain"
	"github.com/route-microservice/internal/domain/repository"
	apperrors "github.com/route-microservice/internal/pkg/errors"
	"github.com/route-microservice/internal/usecase/dto"
)

// RouteUseCase - use case для приёма, нормализации и выдачи маршрутов
type RouteUseCase struct {
	normalizer *Normalizer
	routeRepo  repository.RouteRepository
	cacheRepo  repository.CacheRepository
	streamRepo repository.StreamRepository
	logger     *zap.Logger
	cacheTTL   time.Duration
}

// NewRouteUseCase - создание нового RouteUseCase
func NewRouteUseCase(
	normalizer *Normalizer,
	routeRepo repository.RouteRepository,
	cacheRepo repository.CacheRepository,
	streamRepo repository.StreamRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *RouteUseCase {
	return &RouteUseCase{
		normalizer: normalizer,
		routeRepo:  routeRepo,
		cacheRepo:  cacheRepo,
		streamRepo: streamRepo,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// CreateRoute валидирует RAW маршрут, нормализует, сохраняет и публикует
// NORMALIZED документ в стрим для downstream-консьюмера
func (uc *RouteUseCase) CreateRoute(ctx context.Context, req dto.CreateRouteRequest) (*dto.CreateRouteResponse, error) {
	routeID := uuid.New()

	normalized, err := uc.normalizer.Normalize(routeID, &req.Raw, req.SpacingM)
	if err != nil {
		uc.logger.Warn("Route rejected",
			zap.String("route_id", routeID.String()),
			zap.Error(err))
		return nil, err
	}

	source := req.Raw.SourceOrDefault()
	if err := uc.routeRepo.Save(ctx, normalized, req.Raw.Properties.Name, source); err != nil {
		uc.logger.Error("Failed to save route",
			zap.String("route_id", routeID.String()),
			zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}

	// Кеш и стрим не должны ронять запрос: маршрут уже сохранён
	if err := uc.cacheRepo.SetRoute(ctx, normalized, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache route",
			zap.String("route_id", routeID.String()),
			zap.Error(err))
	}

	event := domain.RouteNormalizedEvent{
		SubmissionID: routeID,
		RouteID:      &routeID,
		Normalized:   normalized,
	}
	if err := uc.streamRepo.PublishToStream(ctx, domain.StreamRouteNormalized, event); err != nil {
		uc.logger.Error("Failed to publish normalized route",
			zap.String("route_id", routeID.String()),
			zap.String("stream", domain.StreamRouteNormalized),
			zap.Error(err))
		return nil, apperrors.ErrStreamError
	}

	uc.logger.Info("Route normalized",
		zap.String("route_id", routeID.String()),
		zap.String("source", source),
		zap.Float64("total_distance_m", normalized.Normalized.TotalDistanceM),
		zap.Int("point_count", normalized.Normalized.PointCount))

	return &dto.CreateRouteResponse{
		RouteID:    routeID.String(),
		Normalized: *normalized,
	}, nil
}

// GetRoute возвращает NORMALIZED маршрут по ID (cache-aside)
func (uc *RouteUseCase) GetRoute(ctx context.Context, id uuid.UUID) (*domain.NormalizedRoute, error) {
	cached, err := uc.cacheRepo.GetRoute(ctx, id)
	if err != nil {
		uc.logger.Warn("Route cache lookup failed",
			zap.String("route_id", id.String()),
			zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	route, err := uc.routeRepo.GetByID(ctx, id)
	if err != nil {
		uc.logger.Error("Failed to load route",
			zap.String("route_id", id.String()),
			zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}
	if route == nil {
		return nil, apperrors.ErrRouteNotFound
	}

	if err := uc.cacheRepo.SetRoute(ctx, route, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache route",
			zap.String("route_id", id.String()),
			zap.Error(err))
	}

	return route, nil
}

// ListRoutes возвращает краткие сведения о сохранённых маршрутах
func (uc *RouteUseCase) ListRoutes(ctx context.Context, req dto.ListRoutesRequest) (*dto.ListRoutesResponse, error) {
	// Установка значений по умолчанию
	if req.Limit == 0 {
		req.Limit = 20
	}

	filter := repository.RouteFilter{
		Sources: req.Sources,
		Limit:   req.Limit,
		Offset:  req.Offset,
	}

	routes, err := uc.routeRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Error("Failed to list routes", zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}

	total, err := uc.routeRepo.Count(ctx, filter)
	if err != nil {
		uc.logger.Error("Failed to count routes", zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}

	return &dto.ListRoutesResponse{
		Routes: routes,
		Total:  total,
	}, nil
}
