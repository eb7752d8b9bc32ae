package route

import (
	"context"
	"encoding/json"
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
	"github.com/route-microservice/internal/usecase"
)

type mockStreamRepository struct {
	mock.Mock
}

func (m *mockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *mockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *mockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *mockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

type mockRouteRepository struct {
	mock.Mock
}

func (m *mockRouteRepository) Save(ctx context.Context, route *domain.NormalizedRoute, name *string, source string) error {
	args := m.Called(ctx, route, name, source)
	return args.Error(0)
}

func (m *mockRouteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.NormalizedRoute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NormalizedRoute), args.Error(1)
}

func (m *mockRouteRepository) List(ctx context.Context, filter repository.RouteFilter) ([]domain.RouteSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RouteSummary), args.Error(1)
}

func (m *mockRouteRepository) Count(ctx context.Context, filter repository.RouteFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func newTestWorker(streamRepo *mockStreamRepository, routeRepo *mockRouteRepository) *NormalizeWorker {
	normalizer := usecase.NewNormalizer(config.RouteConfig{
		DefaultSpacingM: 250.0,
		MaxPoints:       2500,
		MinRouteM:       25.0,
		MaxRouteM:       500_000.0,
		MaxSegmentM:     50_000.0,
	})
	return NewNormalizeWorker(streamRepo, routeRepo, normalizer, "route-normalize-workers", zap.NewNop())
}

func submitMessage(t *testing.T, event domain.RouteSubmitEvent) domain.StreamMessage {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return domain.StreamMessage{ID: "1692000000000-0", Data: string(data)}
}

func validSubmitEvent() domain.RouteSubmitEvent {
	return domain.RouteSubmitEvent{
		SubmissionID: uuid.New(),
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
		},
	}
}

func TestNormalizeWorker_HandleMessage_Success(t *testing.T) {
	ctx := context.Background()
	streamRepo := &mockStreamRepository{}
	routeRepo := &mockRouteRepository{}
	w := newTestWorker(streamRepo, routeRepo)

	event := validSubmitEvent()
	msg := submitMessage(t, event)

	routeRepo.On("Save", ctx, mock.AnythingOfType("*domain.NormalizedRoute"), (*string)(nil), "mobile").
		Return(nil)
	streamRepo.On("PublishToStream", ctx, domain.StreamRouteNormalized,
		mock.MatchedBy(func(data interface{}) bool {
			result, ok := data.(domain.RouteNormalizedEvent)
			return ok && result.IsSuccess() && result.SubmissionID == event.SubmissionID
		})).Return(nil)
	streamRepo.On("AckMessage", ctx, domain.StreamRouteSubmit, "route-normalize-workers", msg.ID).
		Return(nil)

	err := w.handleMessage(ctx, msg)

	require.NoError(t, err)
	routeRepo.AssertExpectations(t)
	streamRepo.AssertExpectations(t)
}

func TestNormalizeWorker_HandleMessage_ValidationFailure(t *testing.T) {
	ctx := context.Background()
	streamRepo := &mockStreamRepository{}
	routeRepo := &mockRouteRepository{}
	w := newTestWorker(streamRepo, routeRepo)

	event := validSubmitEvent()
	event.Raw.RouteVersion = "2.0"
	msg := submitMessage(t, event)

	streamRepo.On("PublishToStream", ctx, domain.StreamRouteNormalized,
		mock.MatchedBy(func(data interface{}) bool {
			result, ok := data.(domain.RouteNormalizedEvent)
			return ok && !result.IsSuccess() &&
				result.ErrorCode == "ROUTE_VERSION_MISMATCH" &&
				result.SubmissionID == event.SubmissionID
		})).Return(nil)
	streamRepo.On("AckMessage", ctx, domain.StreamRouteSubmit, "route-normalize-workers", msg.ID).
		Return(nil)

	err := w.handleMessage(ctx, msg)

	// Ошибка валидации терминальна: событие об ошибке опубликовано,
	// сообщение подтверждено, маршрут не сохраняется
	require.NoError(t, err)
	routeRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	streamRepo.AssertExpectations(t)
}

func TestNormalizeWorker_HandleMessage_MalformedPayload(t *testing.T) {
	ctx := context.Background()
	streamRepo := &mockStreamRepository{}
	routeRepo := &mockRouteRepository{}
	w := newTestWorker(streamRepo, routeRepo)

	msg := domain.StreamMessage{ID: "1692000000001-0", Data: "{not json"}

	streamRepo.On("AckMessage", ctx, domain.StreamRouteSubmit, "route-normalize-workers", msg.ID).
		Return(nil)

	err := w.handleMessage(ctx, msg)

	require.NoError(t, err)
	routeRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	streamRepo.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
	streamRepo.AssertExpectations(t)
}

func TestNormalizeWorker_HandleMessage_SaveFailureNotAcked(t *testing.T) {
	ctx := context.Background()
	streamRepo := &mockStreamRepository{}
	routeRepo := &mockRouteRepository{}
	w := newTestWorker(streamRepo, routeRepo)

	msg := submitMessage(t, validSubmitEvent())

	routeRepo.On("Save", ctx, mock.Anything, (*string)(nil), "mobile").
		Return(errors.New("connection refused"))

	err := w.handleMessage(ctx, msg)

	// Инфраструктурная ошибка: сообщение остаётся в pending для редоставки
	require.Error(t, err)
	streamRepo.AssertNotCalled(t, "AckMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	streamRepo.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
}

func TestNormalizeWorker_StartStop(t *testing.T) {
	streamRepo := &mockStreamRepository{}
	routeRepo := &mockRouteRepository{}
	w := newTestWorker(streamRepo, routeRepo)

	msgChan := make(chan domain.StreamMessage)
	streamRepo.On("CreateConsumerGroup", mock.Anything, domain.StreamRouteSubmit, "route-normalize-workers").
		Return(nil)
	streamRepo.On("ConsumeStream", mock.Anything, domain.StreamRouteSubmit, "route-normalize-workers", mock.AnythingOfType("string")).
		Return((<-chan domain.StreamMessage)(msgChan), nil)

	done := make(chan error, 1)
	go func() {
		done <- w.Start(context.Background())
	}()

	// Даем воркеру подписаться, затем останавливаем
	time.Sleep(50 * time.Millisecond)
	w.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop in time")
	}

	streamRepo.AssertExpectations(t)
}
