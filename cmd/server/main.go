package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/config"
	"github.com/SAP-F-2025/training-service/internal/handlers"
	"github.com/SAP-F-2025/training-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/session"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/SAP-F-2025/training-service/internal/validator"
	"github.com/SAP-F-2025/training-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := utils.NewBaseLogger(os.Stdout, cfg.IsProduction())
	slog.SetDefault(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.AutoMigrate(db); err != nil {
		return err
	}

	var redisClient *redis.Client
	cacheService := cache.NewNoopCache()
	if cfg.RedisEnabled {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, "training:", logger)
	} else {
		logger.Warn("Redis disabled: sessions are kept in memory and reports are not cached")
	}

	sessions := session.New(session.Options{
		Lifetime: cfg.SessionLifetime,
		Secure:   cfg.IsProduction(),
		Redis:    redisClient,
	})

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	serviceManager := services.NewServiceManager(
		postgres.NewRepository(db),
		cacheService,
		publisher,
		logger,
		validator.New(),
		services.ServiceOptions{
			DefaultUserPassword: cfg.DefaultUserPassword,
			ReportCacheTTL:      cfg.ReportCacheTTL,
		},
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handlerLogger := utils.NewSlogLogger(logger)
	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(handlerLogger))
	handlers.NewHandlerManager(serviceManager, sessions, handlerLogger).SetupRoutes(router)

	csrf := handlers.CSRF([]byte(cfg.SessionSecret), cfg.TrustedOrigins, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           sessions.LoadAndSave(csrf(router)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("Shutting down server", "timeout", cfg.ShutdownTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
