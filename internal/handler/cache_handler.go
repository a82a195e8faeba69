package handler

import (
	"github.com/gin-gonic/gin"

	"pdfdigest/internal/service"
)

// CacheHandler handles cache administration endpoints.
type CacheHandler struct {
	convertService service.ConvertService
}

// NewCacheHandler creates a new CacheHandler.
func NewCacheHandler(convertService service.ConvertService) *CacheHandler {
	return &CacheHandler{convertService: convertService}
}

// Stats handles GET /api/v1/cache/stats
func (h *CacheHandler) Stats(c *gin.Context) {
	RespondOK(c, h.convertService.CacheStats(c.Request.Context()))
}

// Invalidate handles DELETE /api/v1/cache. An optional "processor" query
// parameter restricts invalidation to one processor's entries.
func (h *CacheHandler) Invalidate(c *gin.Context) {
	removed, err := h.convertService.InvalidateCache(c.Request.Context(), c.Query("processor"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"removed": removed})
}
