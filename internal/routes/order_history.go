package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/controllers"
)

func runOrderHistoryRouter(secureGroup *echo.Group, historyCtrl *controllers.OrderHistoryController) {
	{
		secureGroup.GET("/orders/:id/history", historyCtrl.GetTimeline)
	}
}
