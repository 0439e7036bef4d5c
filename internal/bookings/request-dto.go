package bookings

// ConfirmBookingRequest is the payload for POST /bookings/confirm.
type ConfirmBookingRequest struct {
	HoldID string `json:"hold_id" binding:"required,uuid"`
}
