package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"slack-relay-api/internal/config"
	"slack-relay-api/internal/middleware"
	"slack-relay-api/internal/services"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	RelayService    services.RelayService
	DeliveryService services.DeliveryService
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	relayHandler := NewRelayHandler(config.RelayService)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		journal := "disabled"
		if config.DeliveryService != nil {
			journal = "enabled"
		}
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "slack-relay-api",
			"version": "1.0.0",
			"journal": journal,
		})
	})

	// Component-shaped relay endpoints at the root
	router.POST("/", relayHandler.Relay)
	router.POST("/relay", relayHandler.Relay)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/relay", relayHandler.Relay)

		// Journal routes are only mounted when a journal is configured
		if config.DeliveryService != nil {
			deliveryHandler := NewDeliveryHandler(config.DeliveryService)

			deliveries := v1.Group("/deliveries")
			{
				deliveries.GET("", deliveryHandler.ListDeliveries)
				deliveries.GET("/statistics", deliveryHandler.GetDeliveryStatistics)
				deliveries.GET("/:id", deliveryHandler.GetDelivery)
				deliveries.POST("/:id/replay", deliveryHandler.ReplayDelivery)
				deliveries.POST("/replay-failed", deliveryHandler.ReplayFailedDeliveries)
			}
		}
	}
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, cfg *config.Config) {
	// Request ID and correlation ID
	router.Use(middleware.RequestID())
	router.Use(middleware.CorrelationID())

	// CORS
	router.Use(middleware.CORS())

	// Security headers
	router.Use(middleware.SecurityHeaders())

	// Request size limit
	router.Use(middleware.RequestSizeLimit(cfg.MaxRequestBytes))

	// Content type validation for POST requests
	router.Use(middleware.ContentTypeValidation("application/json"))

	// Request validation
	router.Use(middleware.RequestValidation())

	// Rate limiting
	router.Use(middleware.RateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

	// Structured logging
	router.Use(middleware.StructuredLogger())

	// Performance monitoring (log requests over 1 second)
	router.Use(middleware.PerformanceMonitor(time.Second))

	// Audit logging
	router.Use(middleware.AuditLogger())

	// Error tracking
	router.Use(middleware.ErrorTracker())

	// Enhanced error handling
	router.Use(middleware.EnhancedErrorHandler())
}

// SetupDevelopmentRoutes adds development-only routes
func SetupDevelopmentRoutes(router *gin.Engine, cfg *config.Config) {
	dev := router.Group("/dev")
	{
		// Configuration info
		dev.GET("/config", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"environment":       cfg.Environment,
				"journal_enabled":   cfg.Journal.Enabled,
				"webhook_timeout":   cfg.Webhook.TimeoutSeconds,
				"max_request_bytes": cfg.MaxRequestBytes,
				"api_version":       "1.0.1",
				"swagger_url":       "/swagger/index.html",
			})
		})
	}
}
