package router

import (
	"github.com/gin-gonic/gin"

	"pdfdigest/internal/handler"
	"pdfdigest/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	convertH *handler.ConvertHandler,
	cacheH *handler.CacheHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Conversion routes
	v1.POST("/convert", convertH.Convert)
	v1.POST("/tables/extract", convertH.ExtractTables)

	// Cache administration
	v1.GET("/cache/stats", cacheH.Stats)
	v1.DELETE("/cache", cacheH.Invalidate)

	return r
}
