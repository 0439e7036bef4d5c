package inventory

import (
	"errors"
	"net/http"

	"boxoffice/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) ListSeatMap(ctx *gin.Context) {
	concertID := ctx.Param("concertId")
	if concertID == "" {
		response.Error(ctx, http.StatusBadRequest, "Concert ID is required", "missing concert ID")
		return
	}

	rows, err := c.service.ListSeatMap(ctx.Request.Context(), concertID)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrConcertNotFound) {
			statusCode = http.StatusNotFound
		}
		response.Error(ctx, statusCode, "Failed to list seats", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Seats retrieved successfully", rows)
}
