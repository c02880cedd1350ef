package routes

import (
	"github.com/gin-gonic/gin"

	"studiofinder_backend/internal/handlers"
	"studiofinder_backend/internal/logger"
)

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
) {
	api := ginRouter.Group("/api")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.SignupHandler.RegisterRoutes(api)
		appHandlers.WebhookHandler.RegisterRoutes(api)
		appHandlers.StudioHandler.RegisterRoutes(api)
		appHandlers.AdminHandler.RegisterRoutes(api)
		appHandlers.CampaignHandler.RegisterRoutes(api)
		appHandlers.CommunityHandler.RegisterRoutes(api)
	}

	appHandlers.SystemHandler.RegisterRoutes(ginRouter, api)

	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}
