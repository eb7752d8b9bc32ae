package route

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/route-microservice/internal/domain"
	"github.com/route-microservice/internal/domain/repository"
	apperrors "github.com/route-microservice/internal/pkg/errors"
	"github.com/route-microservice/internal/usecase"
	"github.com/route-microservice/internal/worker"
)

// NormalizeWorker обрабатывает RAW маршруты из стрима асинхронного ингеста:
// нормализует, сохраняет и публикует результат (или терминальную ошибку
// валидации) для downstream-консьюмера
type NormalizeWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	routeRepo    repository.RouteRepository
	normalizer   *usecase.Normalizer
	consumerName string
}

// NewNormalizeWorker создает новый NormalizeWorker
func NewNormalizeWorker(
	streamRepo repository.StreamRepository,
	routeRepo repository.RouteRepository,
	normalizer *usecase.Normalizer,
	consumerGroup string,
	logger *zap.Logger,
) *NormalizeWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &NormalizeWorker{
		BaseWorker:   worker.NewBaseWorker("route-normalize", consumerGroup, logger),
		streamRepo:   streamRepo,
		routeRepo:    routeRepo,
		normalizer:   normalizer,
		consumerName: consumerName,
	}
}

// Start запускает воркер
func (w *NormalizeWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting NormalizeWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.String("stream", domain.StreamRouteSubmit))

	// Создаем consumer group
	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamRouteSubmit, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	msgChan, err := w.streamRepo.ConsumeStream(ctx, domain.StreamRouteSubmit, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-msgChan:
			if !ok {
				logger.Info("Stream channel closed")
				return nil
			}
			if err := w.handleMessage(ctx, msg); err != nil {
				// Инфраструктурная ошибка: сообщение не подтверждаем,
				// оно будет перечитано из pending
				logger.Error("Failed to handle message",
					zap.String("message_id", msg.ID),
					zap.Error(err))
			}
		}
	}
}

// handleMessage обрабатывает одно сообщение. Ошибки валидации терминальны:
// публикуется событие с ошибкой, сообщение подтверждается
func (w *NormalizeWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) error {
	logger := w.Logger()

	var event domain.RouteSubmitEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		logger.Warn("Malformed submit event, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return w.ack(ctx, msg.ID)
	}

	routeID := uuid.New()
	normalized, err := w.normalizer.Normalize(routeID, &event.Raw, event.SpacingM)
	if err != nil {
		return w.publishFailure(ctx, msg, &event, err)
	}

	source := event.Raw.SourceOrDefault()
	if err := w.routeRepo.Save(ctx, normalized, event.Raw.Properties.Name, source); err != nil {
		return fmt.Errorf("save route: %w", err)
	}

	result := domain.RouteNormalizedEvent{
		SubmissionID: event.SubmissionID,
		RouteID:      &routeID,
		Normalized:   normalized,
	}
	if err := w.streamRepo.PublishToStream(ctx, domain.StreamRouteNormalized, result); err != nil {
		return fmt.Errorf("publish normalized route: %w", err)
	}

	logger.Info("Route normalized",
		zap.String("submission_id", event.SubmissionID.String()),
		zap.String("route_id", routeID.String()),
		zap.Float64("total_distance_m", normalized.Normalized.TotalDistanceM),
		zap.Int("point_count", normalized.Normalized.PointCount))

	return w.ack(ctx, msg.ID)
}

// publishFailure публикует терминальную ошибку валидации и подтверждает сообщение
func (w *NormalizeWorker) publishFailure(ctx context.Context, msg domain.StreamMessage, event *domain.RouteSubmitEvent, cause error) error {
	result := domain.RouteNormalizedEvent{
		SubmissionID: event.SubmissionID,
		Error:        cause.Error(),
	}
	if appErr, ok := cause.(*apperrors.AppError); ok {
		result.ErrorCode = appErr.Code
		result.Error = appErr.Message
	}

	if err := w.streamRepo.PublishToStream(ctx, domain.StreamRouteNormalized, result); err != nil {
		return fmt.Errorf("publish failure event: %w", err)
	}

	w.Logger().Warn("Route rejected",
		zap.String("submission_id", event.SubmissionID.String()),
		zap.String("error_code", result.ErrorCode),
		zap.String("error", result.Error))

	return w.ack(ctx, msg.ID)
}

func (w *NormalizeWorker) ack(ctx context.Context, messageID string) error {
	return w.streamRepo.AckMessage(ctx, domain.StreamRouteSubmit, w.ConsumerGroup(), messageID)
}
