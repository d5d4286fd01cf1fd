package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/controllers"
)

func runReportRouter(secureGroup *echo.Group, reportCtrl *controllers.ReportController) {
	{
		secureGroup.GET("/reports/orders/export", reportCtrl.ExportOrderRegister)
	}
}
