package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/route-microservice/internal/config"
	"github.com/route-microservice/internal/domain"
	"github.com/route-microservice/internal/domain/repository"
	apperrors "github.com/route-microservice/internal/pkg/errors"
	"github.com/route-microservice/internal/usecase"
	"github.com/route-microservice/internal/usecase/dto"
)

func newTestNormalizer() *usecase.Normalizer {
	return usecase.NewNormalizer(config.RouteConfig{
		DefaultSpacingM: 250.0,
		MaxPoints:       2500,
		MinRouteM:       25.0,
		MaxRouteM:       500_000.0,
		MaxSegmentM:     50_000.0,
	})
}

func validCreateRequest() dto.CreateRouteRequest {
	return dto.CreateRouteRequest{
		Raw: domain.RawRouteFeature{
			RouteVersion: "1.0",
			Type:         "Feature",
			Geometry: domain.RawRouteGeometry{
				Type: "LineString",
				Coordinates: [][]float64{
					{-81.0942, 31.9871},
					{-81.0837, 31.9929},
				},
			},
			Properties: domain.RawRouteProperties{
				Source: "mobile",
			},
		},
	}
}

func TestRouteUseCase_CreateRoute(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("success saves, caches and publishes", func(t *testing.T) {
		routeRepo := &MockRouteRepository{}
		cacheRepo := &MockCacheRepository{}
		streamRepo := &MockStreamRepository{}

		routeRepo.On("Save", ctx, mock.AnythingOfType("*domain.NormalizedRoute"), (*string)(nil), "mobile").
			Return(nil)
		cacheRepo.On("SetRoute", ctx, mock.AnythingOfType("*domain.NormalizedRoute"), 10*time.Minute).
			Return(nil)
		streamRepo.On("PublishToStream", ctx, domain.StreamRouteNormalized, mock.AnythingOfType("domain.RouteNormalizedEvent")).
			Return(nil)

		uc := usecase.NewRouteUseCase(newTestNormalizer(), routeRepo, cacheRepo, streamRepo, logger, 10*time.Minute)

		resp, err := uc.CreateRoute(ctx, validCreateRequest())

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, resp.Normalized.RouteID.String(), resp.RouteID)
		assert.Equal(t, "1.0", resp.Normalized.RouteVersion)
		assert.GreaterOrEqual(t, resp.Normalized.Normalized.PointCount, 2)

		routeRepo.AssertExpectations(t)
		cacheRepo.AssertExpectations(t)
		streamRepo.AssertExpectations(t)
	})

	t.Run("version mismatch rejects without side effects", func(t *testing.T) {
		routeRepo := &MockRouteRepository{}
		cacheRepo := &MockCacheRepository{}
		streamRepo := &MockStreamRepository{}

		uc := usecase.NewRouteUseCase(newTestNormalizer(), routeRepo, cacheRepo, streamRepo, logger, 10*time.Minute)

		req := validCreateRequest()
		req.Raw.RouteVersion = "2.0"

		resp, err := uc.CreateRoute(ctx, req)

		require.Error(t, err)
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, apperrors.ErrVersionMismatch)

		routeRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		streamRepo.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("database failure maps to database error", func(t *testing.T) {
		routeRepo := &MockRouteRepository{}
		cacheRepo := &MockCacheRepository{}
		streamRepo := &MockStreamRepository{}

		routeRepo.On("Save", ctx, mock.Anything, (*string)(nil), "mobile").
			Return(errors.New("connection refused"))

		uc := usecase.NewRouteUseCase(newTestNormalizer(), routeRepo, cacheRepo, streamRepo, logger, 10*time.Minute)

		resp, err := uc.CreateRoute(ctx, validCreateRequest())

		require.Error(t, err)
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, apperrors.ErrDatabaseError)
		streamRepo.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stream failure maps to stream error", func(t *testing.T) {
		routeRepo := &MockRouteRepository{}
		cacheRepo := &MockCacheRepository{}
		streamRepo := &MockStreamRepository{}

		routeRepo.On("Save", ctx, mock.Anything, (*string)(nil), "mobile").Return(nil)
		cacheRepo.On("SetRoute", ctx, mock.Anything, mock.Anything).Return(nil)
		streamRepo.On("PublishToStream", ctx, domain.StreamRouteNormalized, mock.Anything).
			Return(errors.New("redis down"))

		uc := usecase.NewRouteUseCase(newTestNormalizer(), routeRepo, cacheRepo, streamRepo, logger, 10*time.Minute)

		resp, err := uc.CreateRoute(ctx, validCreateRequest())

		require.Error(t, err)
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, apperrors.ErrStreamError)
	})

	t.Run("cache failure does not fail the request", func(t *testing.T) {
		routeRepo := &MockRouteRepository{}
		cacheRepo := &MockCacheRepository{}
		streamRepo := &MockStreamRepository{}

		routeRepo.On("Save", ctx, mock.Anything, (*string)(nil), "mobile").Return(nil)
		cacheRepo.On("SetRoute", ctx, mock.Anything, mock.Anything).
			Return(errors.New("redis down"))
		streamRepo.On("PublishToStream", ctx, domain.StreamRouteNormalized, mock.Anything).Return(nil)

		uc := usecase.NewRouteUseCase(newTestNormalizer(), routeRepo, cacheRepo, streamRepo, logger, 10*time.Minute)

		resp, err := uc.CreateRoute(ctx, validCreateRequest())

		require.NoError(t, err)
		require.NotNil(t, resp)
	})
}

func TestRouteUseCase_GetRoute(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	routeID := uuid.New()

	cachedRoute := &domain.NormalizedRoute{
		RouteVersion: "1.0",
		RouteID:      routeID,
		Normalized: domain.NormalizedRouteBody{
			SpacingM:   250,
			PointCount: 2,
		},
	}

	t.Run("cache hit skips repository", func(t *testing.T) {
		routeRepo := &MockRouteRepository{}
		cacheRepo := &MockCacheRepository{}
		streamRepo := &MockStreamRepository{}

		cacheRepo.On("GetRoute", ctx, routeID).Return(cachedRoute, nil)

		uc := usecase.NewRouteUseCase(newTestNormalizer(), routeRepo, cacheRepo, streamRepo, logger, 10*time.Minute)

		route, err := uc.GetRoute(ctx, routeID)

		require.NoError(t, err)
		assert.Equal(t, cachedRoute, route)
		routeRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("cache miss loads from repository and fills cache", func(t *testing.T) {
		routeRepo := &MockRouteRepository{}
		cacheRepo := &MockCacheRepository{}
		streamRepo := &MockStreamRepository{}

		cacheRepo.On("GetRoute", ctx, routeID).Return(nil, nil)
		routeRepo.On("GetByID", ctx, routeID).Return(cachedRoute, nil)
		cacheRepo.On("SetRoute", ctx, cachedRoute, 10*time.Minute).Return(nil)

		uc := usecase.NewRouteUseCase(newTestNormalizer(), routeRepo, cacheRepo, streamRepo, logger, 10*time.Minute)

		route, err := uc.GetRoute(ctx, routeID)

		require.NoError(t, err)
		assert.Equal(t, cachedRoute, route)
		cacheRepo.AssertExpectations(t)
	})

	t.Run("unknown route returns not found", func(t *testing.T) {
		routeRepo := &MockRouteRepository{}
		cacheRepo := &MockCacheRepository{}
		streamRepo := &MockStreamRepository{}

		cacheRepo.On("GetRoute", ctx, routeID).Return(nil, nil)
		routeRepo.On("GetByID", ctx, routeID).Return(nil, nil)

		uc := usecase.NewRouteUseCase(newTestNormalizer(), routeRepo, cacheRepo, streamRepo, logger, 10*time.Minute)

		route, err := uc.GetRoute(ctx, routeID)

		require.Error(t, err)
		assert.Nil(t, route)
		assert.ErrorIs(t, err, apperrors.ErrRouteNotFound)
	})
}

func TestRouteUseCase_ListRoutes(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("uses default limit", func(t *testing.T) {
		routeRepo := &MockRouteRepository{}
		cacheRepo := &MockCacheRepository{}
		streamRepo := &MockStreamRepository{}

		expectedFilter := repository.RouteFilter{Limit: 20}
		summaries := []domain.RouteSummary{
			{RouteID: uuid.New(), Source: "mobile", PointCount: 6},
		}

		routeRepo.On("List", ctx, expectedFilter).Return(summaries, nil)
		routeRepo.On("Count", ctx, expectedFilter).Return(1, nil)

		uc := usecase.NewRouteUseCase(newTestNormalizer(), routeRepo, cacheRepo, streamRepo, logger, 10*time.Minute)

		resp, err := uc.ListRoutes(ctx, dto.ListRoutesRequest{})

		require.NoError(t, err)
		assert.Len(t, resp.Routes, 1)
		assert.Equal(t, 1, resp.Total)
		routeRepo.AssertExpectations(t)
	})

	t.Run("passes source filter", func(t *testing.T) {
		routeRepo := &MockRouteRepository{}
		cacheRepo := &MockCacheRepository{}
		streamRepo := &MockStreamRepository{}

		expectedFilter := repository.RouteFilter{
			Sources: []string{"mobile"},
			Limit:   10,
			Offset:  5,
		}

		routeRepo.On("List", ctx, expectedFilter).Return([]domain.RouteSummary{}, nil)
		routeRepo.On("Count", ctx, expectedFilter).Return(0, nil)

		uc := usecase.NewRouteUseCase(newTestNormalizer(), routeRepo, cacheRepo, streamRepo, logger, 10*time.Minute)

		resp, err := uc.ListRoutes(ctx, dto.ListRoutesRequest{
			Sources: []string{"mobile"},
			Limit:   10,
			Offset:  5,
		})

		require.NoError(t, err)
		assert.Empty(t, resp.Routes)
		routeRepo.AssertExpectations(t)
	})
}

func TestStatsUseCase_GetStatistics(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	stats := &domain.RouteStatistics{
		TotalRoutes:    3,
		TotalDistanceM: 4500,
		AvgPointCount:  7,
		BySource:       map[string]int{"mobile": 3},
	}

	t.Run("cache miss loads from repository", func(t *testing.T) {
		statsRepo := &MockStatsRepository{}
		cacheRepo := &MockCacheRepository{}

		cacheRepo.On("GetStats", ctx).Return(nil, nil)
		statsRepo.On("GetStatistics", ctx).Return(stats, nil)
		cacheRepo.On("SetStats", ctx, stats, time.Minute).Return(nil)

		uc := usecase.NewStatsUseCase(statsRepo, cacheRepo, logger, time.Minute)

		resp, err := uc.GetStatistics(ctx)

		require.NoError(t, err)
		assert.Equal(t, 3, resp.Stats.TotalRoutes)
		statsRepo.AssertExpectations(t)
		cacheRepo.AssertExpectations(t)
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		statsRepo := &MockStatsRepository{}
		cacheRepo := &MockCacheRepository{}

		cacheRepo.On("GetStats", ctx).Return(stats, nil)

		uc := usecase.NewStatsUseCase(statsRepo, cacheRepo, logger, time.Minute)

		resp, err := uc.GetStatistics(ctx)

		require.NoError(t, err)
		assert.Equal(t, stats.TotalRoutes, resp.Stats.TotalRoutes)
		statsRepo.AssertNotCalled(t, "GetStatistics", mock.Anything)
	})
}
