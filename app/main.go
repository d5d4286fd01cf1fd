package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/routes"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/config"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/database/postgresql"
	apperrors "github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/errors"
	applogger "github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/logger"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/middleware"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/service"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/validation"
)

func main() {
	logger := applogger.NewLogger()
	defer logger.Sync()

	cfg := config.New()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Internal server error", err, nil)
				utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.RequestLogger(logger.Named("http")))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{"Content-Disposition"},
	}))

	// Stored media is served straight off the disk.
	absUploads, err := filepath.Abs(cfg.Server.UploadsDir)
	if err != nil {
		logger.Fatal("failed to resolve the uploads directory", zap.Error(err))
	}
	e.Static("/uploads", absUploads)

	dbConn := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbConn.Close()

	if err := postgresql.RunMigrations(cfg.Postgres.DSN); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("failed to connect to Redis",
			zap.Error(err), zap.String("address", cfg.Redis.Address))
	}

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, logger.Named("jwt"))

	autoClose := routes.InitRouter(e, dbConn, redisClient, jwtSvc, logger, cfg)
	autoClose.Start()

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// Stop the sweep first so no close races the draining requests.
	autoClose.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}
