package errors

import "net/http"

// Каталог ошибок контракта Route Spec v1.0.
// Все ошибки валидации терминальны для документа: отдаются вызывающему,
// ретраев нет.
var (
	// ErrVersionMismatch - route_version не совпадает с поддерживаемой версией
	ErrVersionMismatch = New(
		"ROUTE_VERSION_MISMATCH",
		"Unsupported route_version",
		http.StatusBadRequest,
	)

	// ErrRouteShape - неверный type документа или geometry.type
	ErrRouteShape = New(
		"ROUTE_SHAPE_ERROR",
		"Route document has invalid shape",
		http.StatusBadRequest,
	)

	// ErrRouteCoordinates - координаты отсутствуют, неполны или вне диапазона WGS84
	ErrRouteCoordinates = New(
		"ROUTE_COORDINATE_ERROR",
		"Route coordinates are malformed or out of range",
		http.StatusBadRequest,
	)

	// ErrRouteGuardrail - маршрут не проходит sanity-лимиты
	// (схлопывается после де-дупликации, слишком короткий/длинный сегмент или маршрут)
	ErrRouteGuardrail = New(
		"ROUTE_GUARDRAIL_ERROR",
		"Route violates sanity limits",
		http.StatusBadRequest,
	)

	ErrRouteNotFound = New(
		"ROUTE_NOT_FOUND",
		"Route not found",
		http.StatusNotFound,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrStreamError = New(
		"STREAM_ERROR",
		"Stream operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
