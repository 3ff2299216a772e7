package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/macropulse/macropulse-go/internal/services"
)

type QualityHandler struct {
	quality *services.QualityService
}

func NewQualityHandler(quality *services.QualityService) *QualityHandler {
	return &QualityHandler{quality: quality}
}

// GetReport handles GET /api/v1/quality/report
func (h *QualityHandler) GetReport(c *gin.Context) {
	report := h.quality.RunAll(c.Request.Context())
	c.JSON(http.StatusOK, report)
}
