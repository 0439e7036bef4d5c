package holds

import "boxoffice/internal/inventory"

// CreateHoldRequest is the payload for POST /holds.
type CreateHoldRequest struct {
	ConcertID string              `json:"concert_id" binding:"required,uuid"`
	Seats     []inventory.SeatRef `json:"seats" binding:"required,dive"`
}
