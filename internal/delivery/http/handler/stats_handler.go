package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/route-microservice/internal/pkg/utils"
	"github.com/route-microservice/internal/usecase"
)

// StatsHandler - обработчик для статистики
type StatsHandler struct {
	statsUC *usecase.StatsUseCase
	logger  *zap.Logger
}

// NewStatsHandler - создание нового StatsHandler
func NewStatsHandler(statsUC *usecase.StatsUseCase, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		statsUC: statsUC,
		logger:  logger,
	}
}

// GetStatistics godoc
// @Summary Статистика по маршрутам
// @Description Возвращает агрегированную статистику по сохранённым маршрутам: количество, суммарная дистанция, среднее число точек, разбивка по источникам
// @Tags Stats
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.StatsResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/stats [get]
func (h *StatsHandler) GetStatistics(c *fiber.Ctx) error {
	result, err := h.statsUC.GetStatistics(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}
