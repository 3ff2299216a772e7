package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/macropulse/macropulse-go/internal/api"
	"github.com/macropulse/macropulse-go/internal/cache"
	"github.com/macropulse/macropulse-go/internal/config"
	"github.com/macropulse/macropulse-go/internal/database"
	"github.com/macropulse/macropulse-go/internal/fred"
	"github.com/macropulse/macropulse-go/internal/services"
	"github.com/macropulse/macropulse-go/internal/store"
	"github.com/macropulse/macropulse-go/internal/telemetry"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	// Local overrides; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Redis is an optimization, not a dependency: without it every read
	// goes straight to the origin.
	var redis *database.RedisClient
	if r, err := database.NewRedisConnection(cfg.Redis); err != nil {
		logger.WithError(err).Warn("Redis unavailable, running without cache")
	} else {
		redis = r
		defer redis.Close()
	}

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.WithError(err).Warn("Telemetry shutdown failed")
		}
	}()

	observationStore := store.NewObservationStore(db.Pool, cfg.Sync.BatchSize, logger)
	if err := observationStore.EnsureSchema(ctx); err != nil {
		logger.Fatalf("Failed to ensure schema: %v", err)
	}

	client := fred.NewClient(cfg.FRED, logger)
	seriesCache := cache.New(redis, logger)

	syncService := services.NewSyncService(observationStore, client, seriesCache, cfg.Sync, logger)
	analysisService := services.NewAnalysisService(cfg.Analysis)
	qualityService := services.NewQualityService(observationStore, cfg.Quality, logger)
	metricsService := services.NewMetricsService(client, observationStore, seriesCache, syncService, analysisService, cfg.Cache, logger)

	scheduler := services.NewScheduler(syncService, qualityService, cfg.Scheduler, logger)
	if err := scheduler.Start(ctx); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(otelgin.Middleware(telemetry.ServiceName))
	api.SetupRoutes(router, db, redis, metricsService, qualityService)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
