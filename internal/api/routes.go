package api

import (
	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/veracity/infrastructure/gin"
	"github.com/jonesrussell/veracity/internal/config"
	"github.com/jonesrussell/veracity/internal/telemetry"
)

// SetupServiceRoutes configures service-specific API routes (not health routes).
// Health routes are handled by the infrastructure gin package.
func SetupServiceRoutes(router *gin.Engine, handler *Handler, cfg *config.Config, tp *telemetry.Provider) {
	router.GET("/metrics", gin.WrapH(tp.Handler()))

	// API routes - protected with JWT when a secret is configured
	api := infragin.ProtectedGroup(router, "/api", cfg.Auth.JWTSecret)

	text := api.Group("/text")
	text.POST("/detect", handler.DetectText)             // POST /api/text/detect
	text.POST("/batch-detect", handler.DetectTextBatch)  // POST /api/text/batch-detect
	text.GET("/stats", handler.TextStats)                // GET /api/text/stats

	image := api.Group("/image")
	image.POST("/detect", handler.DetectImage)            // POST /api/image/detect
	image.POST("/batch-detect", handler.DetectImageBatch) // POST /api/image/batch-detect
	image.GET("/stats", handler.ImageStats)               // GET /api/image/stats

	analysis := api.Group("/analysis")
	analysis.POST("/comprehensive", handler.Comprehensive) // POST /api/analysis/comprehensive
	analysis.GET("/dashboard", handler.Dashboard)          // GET /api/analysis/dashboard
	analysis.GET("/trends", handler.Trends)                // GET /api/analysis/trends
}
