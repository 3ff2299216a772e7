package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/macropulse/macropulse-go/internal/api/handlers"
	"github.com/macropulse/macropulse-go/internal/database"
	"github.com/macropulse/macropulse-go/internal/services"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// SetupRoutes registers the health endpoint and the versioned API surface.
// redis may be nil when the process runs without a cache.
func SetupRoutes(
	router *gin.Engine,
	db *database.PostgresDB,
	redis *database.RedisClient,
	metrics *services.MetricsService,
	quality *services.QualityService,
) {
	router.GET("/health", healthCheck(db, redis))

	metricsHandler := handlers.NewMetricsHandler(metrics)
	analysisHandler := handlers.NewAnalysisHandler(metrics)
	qualityHandler := handlers.NewQualityHandler(quality)

	v1 := router.Group("/api/v1")
	{
		m := v1.Group("/metrics")
		{
			m.GET("/current", metricsHandler.GetCurrent)
			m.GET("/:code/historical", metricsHandler.GetHistorical)
			m.GET("/:code/analysis", analysisHandler.GetAnalysis)
			m.POST("/refresh", metricsHandler.Refresh)
		}

		q := v1.Group("/quality")
		{
			q.GET("/report", qualityHandler.GetReport)
		}
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Services: Services{
				Database: "ok",
				Redis:    "ok",
			},
		}

		if err := db.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Database = "error"
			response.Status = "degraded"
		}

		if redis == nil {
			response.Services.Redis = "disabled"
		} else if err := redis.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Redis = "error"
			response.Status = "degraded"
		}

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}
