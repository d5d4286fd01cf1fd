package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/services"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
)

type OrderHistoryController struct {
	historyService services.OrderHistoryServiceInterface
	logger         *zap.Logger
}

func NewOrderHistoryController(
	historyService services.OrderHistoryServiceInterface,
	logger *zap.Logger,
) *OrderHistoryController {
	return &OrderHistoryController{
		historyService: historyService,
		logger:         logger,
	}
}

func (c *OrderHistoryController) GetTimeline(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.historyService.GetTimeline(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Order history fetched successfully", http.StatusOK)
}
