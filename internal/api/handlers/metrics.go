package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/macropulse/macropulse-go/internal/models"
	"github.com/macropulse/macropulse-go/internal/services"
)

type MetricsHandler struct {
	metrics *services.MetricsService
}

func NewMetricsHandler(metrics *services.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// CurrentValuesResponse wraps the latest value of every configured series.
type CurrentValuesResponse struct {
	Data      []models.CurrentValue `json:"data"`
	Total     int                   `json:"total"`
	Timestamp time.Time             `json:"timestamp"`
}

// GetCurrent handles GET /api/v1/metrics/current
func (h *MetricsHandler) GetCurrent(c *gin.Context) {
	values := h.metrics.GetAllCurrent(c.Request.Context())
	c.JSON(http.StatusOK, CurrentValuesResponse{
		Data:      values,
		Total:     len(values),
		Timestamp: time.Now().UTC(),
	})
}

// GetHistorical handles GET /api/v1/metrics/:code/historical?start&end
func (h *MetricsHandler) GetHistorical(c *gin.Context) {
	code := c.Param("code")

	var start, end time.Time
	if s := c.Query("start"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date, expected YYYY-MM-DD"})
			return
		}
		start = parsed
	}
	if e := c.Query("end"); e != "" {
		parsed, err := time.Parse("2006-01-02", e)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date, expected YYYY-MM-DD"})
			return
		}
		end = parsed
	}

	series, err := h.metrics.GetHistorical(c.Request.Context(), code, start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// RefreshRequest optionally narrows a refresh to one series.
type RefreshRequest struct {
	Code string `json:"code"`
}

// RefreshResponse reports the per-series sync outcomes.
type RefreshResponse struct {
	Results   map[string]models.SyncResult `json:"results"`
	Timestamp time.Time                    `json:"timestamp"`
}

// Refresh handles POST /api/v1/metrics/refresh
func (h *MetricsHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	results, err := h.metrics.Refresh(c.Request.Context(), req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, RefreshResponse{
		Results:   results,
		Timestamp: time.Now().UTC(),
	})
}
