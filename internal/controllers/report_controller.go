package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/dto"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/entities"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/services"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

// ExportOrderRegister streams the order register as an xlsx workbook.
// `format=json` returns the raw rows instead, for clients that render
// their own tables.
func (c *ReportController) ExportOrderRegister(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var filter dto.OrderReportFilterDTO
	if err := ctx.Bind(&filter); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters"), c.logger)
	}
	format := strings.ToLower(ctx.QueryParam("format"))

	rows, err := c.reportService.GetOrderRegister(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if format == "json" {
		return utils.SuccessResponse(ctx, rows, "Order register fetched successfully", http.StatusOK)
	}
	return c.respondWithXLSX(ctx, rows)
}

var registerHeaders = []string{
	"Order #", "Branch", "Requester", "Status", "Total items", "Total value",
	"Requested at", "Approved at", "Dispatched at", "Received at", "Closed at",
}

func registerRowToSlice(row entities.ReportRow) []interface{} {
	const stamp = "02.01.2006 15:04"
	fmtPtr := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(stamp)
	}

	return []interface{}{
		row.OrderNumber, row.BranchName, row.RequesterName, row.Status,
		row.TotalItems, row.TotalValue,
		row.RequestedAt.Format(stamp), fmtPtr(row.ApprovedAt), fmtPtr(row.DispatchedAt),
		fmtPtr(row.ReceivedAt), fmtPtr(row.ClosedAt),
	}
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, rows []entities.ReportRow) error {
	f := excelize.NewFile()
	sheet := "Order register"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &registerHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "K1", style)

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := registerRowToSlice(row)
		f.SetSheetRow(sheet, cell, &values)
	}
	f.SetColWidth(sheet, "A", "C", 24)
	f.SetColWidth(sheet, "D", "D", 26)
	f.SetColWidth(sheet, "G", "K", 18)

	fileName := fmt.Sprintf("order_register_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
