package routes

import (
	"crypto_tracker_backend/controllers"
	"crypto_tracker_backend/middleware"
	"crypto_tracker_backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes sets up all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, store *services.DataStore, refresh *services.RefreshService, statusHub *services.RealtimeStatusService) {
	indicatorController := controllers.NewIndicatorController(store)
	adminController := controllers.NewAdminController(db, refresh)

	// API v1 group
	api := router.Group("/api/v1")
	{
		// Indicator read contracts consumed by the dashboard
		indicators := api.Group("/indicators")
		{
			indicators.GET("", indicatorController.GetIndicators)
			indicators.GET("/:name/latest", indicatorController.GetLatest)
			indicators.GET("/:name/history", indicatorController.GetHistory)
			indicators.GET("/:name/status", indicatorController.GetStatus)
		}

		// Operator endpoints
		admin := api.Group("/admin")
		{
			admin.POST("/login", middleware.LoginRateLimitMiddleware(), adminController.Login)

			protected := admin.Group("")
			protected.Use(middleware.JWTAuthMiddleware())
			{
				protected.POST("/refresh", adminController.TriggerRefresh)
			}
		}
	}

	// Live refresh status stream
	router.GET("/ws/status", statusHub.ServeWS)
}
