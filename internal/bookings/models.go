package bookings

import (
	"time"

	"boxoffice/internal/inventory"

	"github.com/google/uuid"
)

// Booking statuses. A booking stays CONFIRMED while at least one of its
// seats is still live; it becomes CANCELLED once every seat is cancelled.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Booking is the durable record produced by confirming a hold. AmountCents
// is the sum of the seat prices at confirmation time and never changes
// afterwards; refunds are tracked in the ledger, not by editing the booking.
type Booking struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingRef  string     `gorm:"uniqueIndex;not null" json:"booking_ref"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	ConcertID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"concert_id"`
	HoldID      uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"hold_id"`
	AmountCents int64      `gorm:"not null" json:"amount_cents"`
	Status      string     `gorm:"type:varchar(20);check:status IN ('CONFIRMED', 'CANCELLED');default:'CONFIRMED'" json:"status"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Seats []BookingSeat `json:"seats,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// BookingSeat is one seat inside a booking with the price it was sold at.
// CancelledAt is set when the seat is cancelled individually.
type BookingSeat struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"booking_id"`
	RowLabel    string     `gorm:"not null" json:"row"`
	SeatNumber  int        `gorm:"not null" json:"seat_no"`
	PriceCents  int64      `gorm:"not null" json:"price_cents"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for BookingSeat
func (BookingSeat) TableName() string {
	return "booking_seats"
}

func (bs *BookingSeat) Ref() inventory.SeatRef {
	return inventory.SeatRef{Row: bs.RowLabel, SeatNo: bs.SeatNumber}
}

func (bs *BookingSeat) IsCancelled() bool {
	return bs.CancelledAt != nil
}

// LiveSeats returns the seats that have not been cancelled.
func (b *Booking) LiveSeats() []BookingSeat {
	var live []BookingSeat
	for _, seat := range b.Seats {
		if !seat.IsCancelled() {
			live = append(live, seat)
		}
	}
	return live
}
