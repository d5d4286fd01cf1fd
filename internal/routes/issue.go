package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/controllers"
)

func runIssueRouter(secureGroup *echo.Group, issueCtrl *controllers.IssueController) {
	{
		secureGroup.POST("/orders/:id/issues", issueCtrl.RaiseIssue)
		secureGroup.POST("/orders/:id/issues/reply", issueCtrl.ReplyToIssues)
		secureGroup.POST("/orders/:id/received-issues", issueCtrl.ReportReceivedIssue)
		secureGroup.GET("/orders/:id/issues", issueCtrl.GetConversation)
		secureGroup.GET("/orders/:id/received-issues", issueCtrl.GetReceivedIssues)
	}
}
