package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/route-microservice/internal/pkg/errors"
	"github.com/route-microservice/internal/pkg/utils"
	"github.com/route-microservice/internal/pkg/validator"
	"github.com/route-microservice/internal/usecase"
	"github.com/route-microservice/internal/usecase/dto"
)

// RouteHandler - обработчик для маршрутов
type RouteHandler struct {
	routeUC *usecase.RouteUseCase
	logger  *zap.Logger
}

// NewRouteHandler - создание нового RouteHandler
func NewRouteHandler(routeUC *usecase.RouteUseCase, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{
		routeUC: routeUC,
		logger:  logger,
	}
}

// CreateRoute godoc
// @Summary Создание маршрута
// @Description Принимает RAW GeoJSON маршрут (Feature/LineString, координаты [lon, lat]), валидирует по контракту Route Spec v1.0, нормализует (ресемплинг с равным шагом, дистанции, азимуты) и публикует NORMALIZED документ downstream-консьюмеру.
// @Tags Routes
// @Accept json
// @Produce json
// @Param spacing_m query number false "Шаг ресемплинга в метрах" default(250)
// @Param request body domain.RawRouteFeature true "RAW GeoJSON маршрут"
// @Success 201 {object} utils.SuccessResponse{data=dto.CreateRouteResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/routes [post]
func (h *RouteHandler) CreateRoute(c *fiber.Ctx) error {
	var req dto.CreateRouteRequest
	if err := c.BodyParser(&req.Raw); err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithMessage("Invalid request body"))
	}

	if spacing := c.QueryFloat("spacing_m", 0); spacing > 0 {
		req.SpacingM = &spacing
	}

	// Валидация
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	// Выполнение use case
	result, err := h.routeUC.CreateRoute(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendCreated(c, result)
}

// GetRoute godoc
// @Summary Получение маршрута по ID
// @Description Возвращает NORMALIZED маршрут по его идентификатору
// @Tags Routes
// @Produce json
// @Param id path string true "ID маршрута (UUID)"
// @Success 200 {object} utils.SuccessResponse{data=domain.NormalizedRoute}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/{id} [get]
func (h *RouteHandler) GetRoute(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, apperrors.ErrInvalidRequest.WithMessage("Invalid route ID"))
	}

	route, err := h.routeUC.GetRoute(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, route, nil)
}

// ListRoutes godoc
// @Summary Список маршрутов
// @Description Возвращает краткие сведения о сохранённых маршрутах с пагинацией и фильтром по источнику
// @Tags Routes
// @Produce json
// @Param sources query string false "Источники через запятую (например mobile,import)"
// @Param limit query int false "Максимальное количество результатов" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} utils.SuccessResponse{data=dto.ListRoutesResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/routes [get]
func (h *RouteHandler) ListRoutes(c *fiber.Ctx) error {
	var req dto.ListRoutesRequest
	req.Sources = parseSources(c.Query("sources"))
	req.Limit = c.QueryInt("limit", 20)
	req.Offset = c.QueryInt("offset", 0)

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result, err := h.routeUC.ListRoutes(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:  result.Total,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
}

func parseSources(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
