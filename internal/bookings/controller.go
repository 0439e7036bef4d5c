package bookings

import (
	"errors"
	"net/http"

	"boxoffice/internal/holds"
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

func (c *Controller) ConfirmBooking(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Authentication required", "missing user context")
		return
	}

	var req ConfirmBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	view, err := c.service.ConfirmBooking(ctx.Request.Context(), userID, req)
	if err != nil {
		response.Error(ctx, statusForBookingError(err), "Failed to confirm booking", err.Error())
		return
	}

	response.Success(ctx, http.StatusCreated, "Booking confirmed successfully", view)
}

func (c *Controller) GetBooking(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Authentication required", "missing user context")
		return
	}

	view, err := c.service.GetBooking(ctx.Request.Context(), ctx.Param("bookingId"), userID)
	if err != nil {
		response.Error(ctx, statusForBookingError(err), "Failed to get booking", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Booking retrieved successfully", view)
}

func (c *Controller) GetUserBookings(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Authentication required", "missing user context")
		return
	}

	views, err := c.service.GetUserBookings(ctx.Request.Context(), userID)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list bookings", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Bookings retrieved successfully", views)
}

func statusForBookingError(err error) int {
	switch {
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, holds.ErrHoldNotFound):
		return http.StatusNotFound
	case errors.Is(err, holds.ErrHoldExpired):
		return http.StatusGone
	case errors.Is(err, ErrNotOwner), errors.Is(err, holds.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, holds.ErrAlreadyConfirmed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
