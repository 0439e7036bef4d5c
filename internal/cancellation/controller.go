package cancellation

import (
	"errors"
	"net/http"

	"boxoffice/internal/bookings"
	"boxoffice/internal/shared/middleware"
	"boxoffice/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) CancelSeats(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Authentication required", "missing user context")
		return
	}

	var req CancelSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	view, err := c.service.CancelSeats(ctx.Request.Context(), userID, ctx.Param("bookingId"), req)
	if err != nil {
		response.Error(ctx, statusForCancellationError(err), "Failed to cancel seats", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Seats cancelled successfully", view)
}

func (c *Controller) ListUserCancellations(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Authentication required", "missing user context")
		return
	}

	views, err := c.service.ListUserCancellations(ctx.Request.Context(), userID)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list cancellations", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Cancellations retrieved successfully", views)
}

func statusForCancellationError(err error) int {
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, bookings.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidReason),
		errors.Is(err, ErrEmptySelection),
		errors.Is(err, ErrSeatsNotInBooking),
		errors.Is(err, ErrTooLateToCancel):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
