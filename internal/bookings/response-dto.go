package bookings

import "time"

// BookingView is the client-facing shape of a booking.
type BookingView struct {
	ID          string            `json:"id"`
	BookingRef  string            `json:"booking_ref"`
	ConcertID   string            `json:"concert_id"`
	Status      string            `json:"status"`
	AmountCents int64             `json:"amount_cents"`
	Seats       []BookingSeatView `json:"seats"`
	CreatedAt   time.Time         `json:"created_at"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`
}

// BookingSeatView is one seat in a booking.
type BookingSeatView struct {
	Row         string     `json:"row"`
	SeatNo      int        `json:"seat_no"`
	PriceCents  int64      `json:"price_cents"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}
