package http

import (
	"github.com/gin-gonic/gin"

	"github.com/Darksun1310/forensic-persona-linker/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	limited := router.Group("")
	if cfg.RateLimit.PerIP > 0 {
		limited.Use(RateLimitMiddleware(NewIPRateLimiter(cfg.RateLimit.PerIP)))
	}

	// Path the original clients post to
	limited.POST("/predict", handler.Predict)

	v1 := limited.Group("/api/v1")
	{
		v1.POST("/linker/predict", handler.Predict)
		v1.POST("/vendors/compare", handler.CompareVendors)
	}

	return router
}
