package ledger

import (
	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupLedgerRoutes configures the authenticated refund ledger routes
func SetupLedgerRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	users := rg.Group("/users")
	users.Use(middleware.JWTAuthWithConfig(cfg))
	{
		users.GET("/refunds", controller.ListUserRefunds) // GET /api/v1/users/refunds
	}

	refunds := rg.Group("/refunds")
	refunds.Use(middleware.JWTAuthWithConfig(cfg))
	{
		refunds.POST("/:entryId/settle", controller.SettleRefund) // POST /api/v1/refunds/:entryId/settle
	}
}
