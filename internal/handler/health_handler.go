package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfdigest/internal/service"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	convertService service.ConvertService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(convertService service.ConvertService) *HealthHandler {
	return &HealthHandler{convertService: convertService}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	converters := h.convertService.Converters()
	if len(converters) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "no converters configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "converters": converters})
}
