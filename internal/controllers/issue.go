package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/dto"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/services"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/filestorage"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
)

type IssueController struct {
	issueService services.IssueServiceInterface
	fileStorage  filestorage.FileStorageInterface
	logger       *zap.Logger
}

func NewIssueController(
	issueService services.IssueServiceInterface,
	fileStorage filestorage.FileStorageInterface,
	logger *zap.Logger,
) *IssueController {
	return &IssueController{
		issueService: issueService,
		fileStorage:  fileStorage,
		logger:       logger,
	}
}

func (c *IssueController) RaiseIssue(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.RaiseIssueDTO
	if err := bindPayload(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.issueService.RaiseIssue(ctx.Request().Context(), id, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Issue raised", http.StatusCreated)
}

func (c *IssueController) ReplyToIssues(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.ReplyIssueDTO
	if err := bindPayload(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.issueService.ReplyToIssues(ctx.Request().Context(), id, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Reply recorded", http.StatusCreated)
}

func (c *IssueController) ReportReceivedIssue(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.CreateReceivedIssueDTO
	if err := bindPayload(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	media, err := collectMedia(ctx, c.fileStorage, issueMediaContext)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.issueService.ReportReceivedIssue(ctx.Request().Context(), id, payload, media); err != nil {
		discardMedia(c.fileStorage, media, c.logger)
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Received-goods issue reported", http.StatusCreated)
}

func (c *IssueController) GetConversation(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.issueService.GetConversation(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Issue conversation fetched successfully", http.StatusOK)
}

func (c *IssueController) GetReceivedIssues(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.issueService.GetReceivedIssues(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Received-goods issues fetched successfully", http.StatusOK)
}
