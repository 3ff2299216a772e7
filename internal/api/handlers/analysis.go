package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/macropulse/macropulse-go/internal/services"
)

type AnalysisHandler struct {
	metrics *services.MetricsService
}

func NewAnalysisHandler(metrics *services.MetricsService) *AnalysisHandler {
	return &AnalysisHandler{metrics: metrics}
}

// GetAnalysis handles GET /api/v1/metrics/:code/analysis
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	result, err := h.metrics.Analyze(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
