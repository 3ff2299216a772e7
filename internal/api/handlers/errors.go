package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/macropulse/macropulse-go/internal/utils"
)

// writeError maps the error taxonomy onto HTTP statuses: invalid input is
// the caller's fault (400, or 404 for unknown series), transient upstream
// failures surface as 502, storage failures as 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch utils.KindOf(err) {
	case utils.KindInvalid:
		status = http.StatusBadRequest
		if strings.Contains(err.Error(), "unknown series") {
			status = http.StatusNotFound
		}
	case utils.KindTransient:
		status = http.StatusBadGateway
	case utils.KindStorage, utils.KindCache:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
