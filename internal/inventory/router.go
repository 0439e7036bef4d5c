package inventory

import (
	"github.com/gin-gonic/gin"
)

// SetupInventoryRoutes configures the public seat map routes
func SetupInventoryRoutes(rg *gin.RouterGroup, controller *Controller) {
	concerts := rg.Group("/concerts")
	{
		concerts.GET("/:concertId/seats", controller.ListSeatMap) // GET /api/v1/concerts/:concertId/seats
	}
}
