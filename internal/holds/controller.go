package holds

import (
	"errors"
	"net/http"

	"boxoffice/internal/inventory"
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

func (c *Controller) CreateHold(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Authentication required", "missing user context")
		return
	}

	var req CreateHoldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	view, err := c.service.CreateHold(ctx.Request.Context(), userID, req)
	if err != nil {
		if conflict, ok := inventory.AsConflict(err); ok {
			response.Error(ctx, http.StatusConflict, "Some seats are no longer available", conflict.Error())
			return
		}
		response.Error(ctx, statusForHoldError(err), "Failed to create hold", err.Error())
		return
	}

	response.Success(ctx, http.StatusCreated, "Hold created successfully", view)
}

func (c *Controller) GetHold(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Authentication required", "missing user context")
		return
	}

	view, err := c.service.GetHold(ctx.Request.Context(), ctx.Param("holdId"), userID)
	if err != nil {
		response.Error(ctx, statusForHoldError(err), "Failed to get hold", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Hold retrieved successfully", view)
}

func (c *Controller) CancelHold(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Authentication required", "missing user context")
		return
	}

	if err := c.service.CancelHold(ctx.Request.Context(), ctx.Param("holdId"), userID); err != nil {
		response.Error(ctx, statusForHoldError(err), "Failed to cancel hold", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Hold cancelled successfully", nil)
}

func (c *Controller) ListUserHolds(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Authentication required", "missing user context")
		return
	}

	views, err := c.service.ListUserHolds(ctx.Request.Context(), userID)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list holds", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Holds retrieved successfully", views)
}

func statusForHoldError(err error) int {
	switch {
	case errors.Is(err, ErrHoldNotFound), errors.Is(err, inventory.ErrConcertNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrHoldExpired):
		return http.StatusGone
	case errors.Is(err, ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyConfirmed):
		return http.StatusConflict
	case errors.Is(err, ErrEmptySelection), errors.Is(err, ErrTooManySeats):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
