package ledger

import (
	"errors"
	"net/http"

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

func (c *Controller) ListUserRefunds(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "Authentication required", "missing user context")
		return
	}

	// ?status=pending narrows to unsettled obligations.
	var entries []RefundEntry
	var err error
	if ctx.Query("status") == "pending" {
		entries, err = c.service.ListPending(ctx.Request.Context(), userID)
	} else {
		entries, err = c.service.ListUserRefunds(ctx.Request.Context(), userID)
	}
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list refunds", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Refunds retrieved successfully", entries)
}

func (c *Controller) SettleRefund(ctx *gin.Context) {
	entry, err := c.service.Settle(ctx.Request.Context(), ctx.Param("entryId"))
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, ErrEntryNotFound) {
			statusCode = http.StatusNotFound
		}
		response.Error(ctx, statusCode, "Failed to settle refund", err.Error())
		return
	}

	response.Success(ctx, http.StatusOK, "Refund settled successfully", entry)
}
