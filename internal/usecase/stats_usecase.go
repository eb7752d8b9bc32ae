package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/route-microservice/internal/domain/repository"
	apperrors "github.com/route-microservice/internal/pkg/errors"
	"github.com/route-microservice/internal/usecase/dto"
)

// StatsUseCase - use case для статистики по маршрутам
type StatsUseCase struct {
	statsRepo repository.StatsRepository
	cacheRepo repository.CacheRepository
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewStatsUseCase - создание нового StatsUseCase
func NewStatsUseCase(
	statsRepo repository.StatsRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *StatsUseCase {
	return &StatsUseCase{
		statsRepo: statsRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// GetStatistics возвращает статистику (с кешированием)
func (uc *StatsUseCase) GetStatistics(ctx context.Context) (*dto.StatsResponse, error) {
	cached, err := uc.cacheRepo.GetStats(ctx)
	if err != nil {
		uc.logger.Warn("Stats cache lookup failed", zap.Error(err))
	}
	if cached != nil {
		return &dto.StatsResponse{Stats: *cached}, nil
	}

	stats, err := uc.statsRepo.GetStatistics(ctx)
	if err != nil {
		uc.logger.Error("Failed to get statistics", zap.Error(err))
		return nil, apperrors.ErrDatabaseError
	}

	if err := uc.cacheRepo.SetStats(ctx, stats, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache statistics", zap.Error(err))
	}

	return &dto.StatsResponse{Stats: *stats}, nil
}
