package holds

import (
	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupHoldRoutes configures the authenticated hold routes
func SetupHoldRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	holds := rg.Group("/holds")
	holds.Use(middleware.JWTAuthWithConfig(cfg))
	{
		holds.POST("", controller.CreateHold)           // POST /api/v1/holds
		holds.GET("", controller.ListUserHolds)         // GET /api/v1/holds
		holds.GET("/:holdId", controller.GetHold)       // GET /api/v1/holds/:holdId
		holds.DELETE("/:holdId", controller.CancelHold) // DELETE /api/v1/holds/:holdId
	}
}
