package dto

import "github.com/route-microservice/internal/domain"

// CreateRouteRequest - запрос на создание маршрута.
// Тело запроса - RAW GeoJSON документ, шаг ресемплинга опционален.
type CreateRouteRequest struct {
	Raw      domain.RawRouteFeature `json:"-"`
	SpacingM *float64               `json:"spacing_m,omitempty" validate:"omitempty,gt=0,lte=50000"`
}

// CreateRouteResponse - ответ на создание маршрута
type CreateRouteResponse struct {
	RouteID    string                 `json:"route_id"`
	Normalized domain.NormalizedRoute `json:"normalized"`
}

// ListRoutesRequest - запрос списка маршрутов
type ListRoutesRequest struct {
	Sources []string `json:"sources,omitempty" validate:"omitempty,max=10,dive,min=1,max=40"`
	Limit   int      `json:"limit" validate:"omitempty,min=1,max=100"`
	Offset  int      `json:"offset" validate:"omitempty,min=0"`
}

// ListRoutesResponse - ответ со списком маршрутов
type ListRoutesResponse struct {
	Routes []domain.RouteSummary `json:"routes"`
	Total  int                   `json:"total"`
}

// StatsResponse - ответ со статистикой по маршрутам
type StatsResponse struct {
	Stats domain.RouteStatistics `json:"stats"`
}
