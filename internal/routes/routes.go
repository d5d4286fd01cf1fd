package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/controllers"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/listeners"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/repositories"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/scheduler"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/services"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/stockledger"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/config"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/eventbus"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/filestorage"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/middleware"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/service"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/workhours"
)

// InitRouter builds every repository, service and controller, subscribes
// the notification listener and mounts all routes under /api. It returns
// the auto-close scheduler so main can own its start/stop lifecycle.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	logger *zap.Logger,
	cfg *config.Config,
) *scheduler.AutoCloseScheduler {
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger.Named("auth"))

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Server.UploadsDir)
	if err != nil {
		logger.Fatal("failed to create the file storage", zap.Error(err))
	}

	txManager := repositories.NewTxManager(dbConn)
	bus := eventbus.New(logger.Named("eventbus"))

	orderRepo := repositories.NewOrderRepository(dbConn, logger.Named("order-repo"))
	trackingRepo := repositories.NewTrackingRepository(dbConn)
	historyRepo := repositories.NewOrderHistoryRepository(dbConn)
	issueRepo := repositories.NewIssueRepository(dbConn)
	notificationRepo := repositories.NewNotificationRepository(dbConn)
	userRepo := repositories.NewUserRepository(dbConn)
	branchRepo := repositories.NewBranchRepository(dbConn)
	reportRepo := repositories.NewReportRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	ledger := stockledger.NewPostgresLedger(dbConn)

	orderService := services.NewOrderService(
		txManager, orderRepo, trackingRepo, historyRepo, branchRepo, ledger, bus,
		workhours.Default(), cfg.Scheduler.AutoCloseAfterHours, logger.Named("order"),
	)
	issueService := services.NewIssueService(
		txManager, orderRepo, issueRepo, historyRepo, ledger, bus, logger.Named("issue"),
	)
	historyService := services.NewOrderHistoryService(orderRepo, historyRepo, logger.Named("history"))
	notificationService := services.NewNotificationService(notificationRepo, logger.Named("notification"))
	reportService := services.NewReportService(reportRepo, logger.Named("report"))

	listener := listeners.NewNotificationListener(notificationRepo, userRepo, cacheRepo, logger.Named("listener"))
	listener.Register(bus)

	orderCtrl := controllers.NewOrderController(orderService, fileStorage, logger.Named("order"))
	issueCtrl := controllers.NewIssueController(issueService, fileStorage, logger.Named("issue"))
	historyCtrl := controllers.NewOrderHistoryController(historyService, logger.Named("history"))
	notificationCtrl := controllers.NewNotificationController(notificationService, logger.Named("notification"))
	reportCtrl := controllers.NewReportController(reportService, logger.Named("report"))

	secureGroup := api.Group("", authMW.Auth)

	runOrderRouter(secureGroup, orderCtrl)
	runIssueRouter(secureGroup, issueCtrl)
	runOrderHistoryRouter(secureGroup, historyCtrl)
	runNotificationRouter(secureGroup, notificationCtrl)
	runReportRouter(secureGroup, reportCtrl)

	return scheduler.NewAutoCloseScheduler(orderService, cfg.Scheduler.SweepInterval, logger.Named("scheduler"))
}
