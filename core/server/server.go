package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-outlook-starter/core/cache"
	"go-outlook-starter/core/config"
	"go-outlook-starter/core/crypto"
	"go-outlook-starter/core/database"
	"go-outlook-starter/core/eventbus"
	"go-outlook-starter/core/logger"
	"go-outlook-starter/core/middleware"
	"go-outlook-starter/core/storage"
	"go-outlook-starter/modules/auth"
	"go-outlook-starter/modules/calendar"
	"go-outlook-starter/modules/calendar/tasks"
	"go-outlook-starter/modules/email"
	"go-outlook-starter/modules/outlook"
	outlookController "go-outlook-starter/modules/outlook/controller"
	outlookRouter "go-outlook-starter/modules/outlook/router"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Run boots the whole application and blocks until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.Server.LogLevel)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	stateCache, err := cache.NewCache(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer stateCache.Close()

	encrypter, err := buildEncrypter(cfg.Crypto.TokenKey)
	if err != nil {
		return err
	}

	attachments, err := storage.NewS3AttachmentStore(context.Background(), cfg.AWS)
	if err != nil {
		return err
	}

	bus := eventbus.NewInProcessBus()
	integration := outlook.NewIntegration(cfg.Microsoft)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	taskClient := asynq.NewClient(redisOpt)
	defer taskClient.Close()

	e := echo.New()
	e.HideBanner = true
	mw := middleware.NewMiddleware()
	e.Use(echoMiddleware.Recover())
	e.Use(mw.RequestID())
	e.Use(mw.MockUser())

	calendarModule := calendar.Init(e, db, bus, integration, encrypter, taskClient)
	email.Init(e, bus, integration, calendarModule.Service, attachments)
	auth.Init(e, bus, integration, stateCache, cfg.Crypto.StateSecret)

	webhookCtrl := outlookController.NewWebhookController(bus)
	outlookRouter.NewWebhookRouter(webhookCtrl).Setup(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	taskServer := asynq.NewServer(redisOpt, asynq.Config{Concurrency: 2})
	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeTokenRefresh, tasks.NewTokenRefreshHandler(calendarModule.Service))
	go func() {
		if err := taskServer.Run(mux); err != nil {
			logger.Error("Server:TaskServer:Error", "error", err)
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("Server starting", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Start:Error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	taskServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// buildEncrypter degrades to plaintext storage with a warning when no key is
// configured, which keeps local setups one environment variable lighter.
func buildEncrypter(base64Key string) (crypto.Encrypter, error) {
	if base64Key == "" {
		logger.Warn("TOKEN_ENCRYPTION_KEY not set; storing tokens unencrypted")
		return crypto.Noop{}, nil
	}
	enc, err := crypto.NewFromBase64Key(base64Key)
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_ENCRYPTION_KEY: %w", err)
	}
	return enc, nil
}
