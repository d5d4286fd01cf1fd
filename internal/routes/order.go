package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/controllers"
)

func runOrderRouter(secureGroup *echo.Group, orderCtrl *controllers.OrderController) {
	{
		secureGroup.POST("/orders", orderCtrl.CreateOrder)
		secureGroup.GET("/orders", orderCtrl.GetOrders)
		secureGroup.GET("/orders/:id", orderCtrl.FindOrder)
		secureGroup.PUT("/orders/:id/approve", orderCtrl.ApproveOrder)
		secureGroup.PUT("/orders/:id/confirm", orderCtrl.ConfirmOrder)
		secureGroup.PUT("/orders/:id/status", orderCtrl.UpdateOrderStatus)
		secureGroup.PUT("/orders/:id/dispatch", orderCtrl.DispatchOrder)
		secureGroup.PUT("/orders/:id/confirm-received", orderCtrl.ConfirmReceived)
		secureGroup.PUT("/orders/:id/close", orderCtrl.CloseOrder)
		secureGroup.PUT("/orders/:id/confirm-reply", orderCtrl.ConfirmReply)
	}
}
