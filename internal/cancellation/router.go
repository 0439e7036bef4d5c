package cancellation

import (
	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupCancellationRoutes configures the authenticated cancellation routes
func SetupCancellationRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuthWithConfig(cfg))
	{
		bookings.POST("/:bookingId/cancel", controller.CancelSeats) // POST /api/v1/bookings/:bookingId/cancel
	}

	users := rg.Group("/users")
	users.Use(middleware.JWTAuthWithConfig(cfg))
	{
		users.GET("/cancellations", controller.ListUserCancellations) // GET /api/v1/users/cancellations
	}
}
