package cancellation

import "time"

// CancellationView is the client-facing shape of a cancellation record.
type CancellationView struct {
	ID               string    `json:"id"`
	BookingID        string    `json:"booking_id"`
	Reason           string    `json:"reason"`
	Seats            []string  `json:"seats"`
	DeductionPercent int       `json:"deduction_percent"`
	SubtotalCents    int64     `json:"subtotal_cents"`
	RefundCents      int64     `json:"refund_cents"`
	CreatedAt        time.Time `json:"created_at"`
}
