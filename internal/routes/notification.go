package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/controllers"
)

func runNotificationRouter(secureGroup *echo.Group, notificationCtrl *controllers.NotificationController) {
	{
		secureGroup.GET("/notifications", notificationCtrl.GetMyNotifications)
		secureGroup.PUT("/notifications/:id/read", notificationCtrl.MarkRead)
	}
}
