package cancellation

import "boxoffice/internal/inventory"

// CancelSeatsRequest is the payload for POST /bookings/:bookingId/cancel.
type CancelSeatsRequest struct {
	Seats  []inventory.SeatRef `json:"seats" binding:"required,dive"`
	Reason string              `json:"reason" binding:"required"`
}
