package domain

import "github.com/google/uuid"

// Stream names (должны совпадать с boat-ride)
const (
	StreamRouteSubmit     = "stream:route:submit"
	StreamRouteNormalized = "stream:route:normalized"
)

// RouteSubmitEvent - входящее событие с RAW маршрутом (асинхронный ингест)
type RouteSubmitEvent struct {
	SubmissionID uuid.UUID       `json:"submission_id"`
	Raw          RawRouteFeature `json:"raw"`
	SpacingM     *float64        `json:"spacing_m,omitempty"`
}

// RouteNormalizedEvent - результат нормализации для downstream-консьюмера.
// При ошибке Normalized пустой, а ErrorCode/Error описывают причину.
type RouteNormalizedEvent struct {
	SubmissionID uuid.UUID        `json:"submission_id"`
	RouteID      *uuid.UUID       `json:"route_id,omitempty"`
	Normalized   *NormalizedRoute `json:"normalized,omitempty"`
	ErrorCode    string           `json:"error_code,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// IsSuccess проверяет, что нормализация прошла успешно
func (e *RouteNormalizedEvent) IsSuccess() bool {
	return e.Error == "" && e.Normalized != nil
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
