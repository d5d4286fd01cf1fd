package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/dto"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/services"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/filestorage"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
)

type OrderController struct {
	orderService services.OrderServiceInterface
	fileStorage  filestorage.FileStorageInterface
	logger       *zap.Logger
}

func NewOrderController(
	orderService services.OrderServiceInterface,
	fileStorage filestorage.FileStorageInterface,
	logger *zap.Logger,
) *OrderController {
	return &OrderController{
		orderService: orderService,
		fileStorage:  fileStorage,
		logger:       logger,
	}
}

// parseIDParam reads the :id path segment shared by every order route.
func parseIDParam(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID")
	}
	return id, nil
}

// bindPayload accepts the body either as plain JSON or as a multipart
// form whose 'data' field holds the JSON, so media uploads and bare
// calls share one DTO path.
func bindPayload(ctx echo.Context, payload interface{}) error {
	if dataString := ctx.FormValue("data"); dataString != "" {
		if err := json.Unmarshal([]byte(dataString), payload); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON in the 'data' field")
		}
	} else if err := ctx.Bind(payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return ctx.Validate(payload)
}

func (c *OrderController) CreateOrder(ctx echo.Context) error {
	var payload dto.CreateOrderDTO
	if err := bindPayload(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.orderService.CreateOrder(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Order created successfully", http.StatusCreated)
}

func (c *OrderController) GetOrders(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, totalCount, err := c.orderService.GetOrders(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Orders fetched successfully", http.StatusOK, totalCount)
}

func (c *OrderController) FindOrder(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.orderService.FindOrder(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Order fetched successfully", http.StatusOK)
}

func (c *OrderController) ApproveOrder(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.ApproveOrderDTO
	if err := bindPayload(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.orderService.ApproveOrder(ctx.Request().Context(), id, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Order approved", http.StatusOK)
}

func (c *OrderController) ConfirmOrder(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.orderService.ConfirmOrder(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Order confirmed", http.StatusOK)
}

func (c *OrderController) ConfirmReply(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.ConfirmReplyDTO
	if err := bindPayload(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.orderService.ConfirmReply(ctx.Request().Context(), id, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Manager reply confirmed", http.StatusOK)
}

func (c *OrderController) UpdateOrderStatus(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateOrderStatusDTO
	if err := bindPayload(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	media, err := collectMedia(ctx, c.fileStorage, uploadContextFor(payload.Status))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.orderService.UpdateOrderStatus(ctx.Request().Context(), id, payload, media); err != nil {
		discardMedia(c.fileStorage, media, c.logger)
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Order status updated", http.StatusOK)
}

func (c *OrderController) DispatchOrder(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.DispatchOrderDTO
	if err := bindPayload(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	media, err := collectMedia(ctx, c.fileStorage, transitMediaContext)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.orderService.DispatchOrder(ctx.Request().Context(), id, payload, media); err != nil {
		discardMedia(c.fileStorage, media, c.logger)
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Order dispatched", http.StatusOK)
}

func (c *OrderController) ConfirmReceived(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.ConfirmReceivedDTO
	if err := bindPayload(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	media, err := collectMedia(ctx, c.fileStorage, transitMediaContext)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.orderService.ConfirmReceived(ctx.Request().Context(), id, payload, media); err != nil {
		discardMedia(c.fileStorage, media, c.logger)
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Order receipt confirmed", http.StatusOK)
}

func (c *OrderController) CloseOrder(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.CloseOrderDTO
	if err := bindPayload(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.orderService.CloseOrder(ctx.Request().Context(), id, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Order closed", http.StatusOK)
}
