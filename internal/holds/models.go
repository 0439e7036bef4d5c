package holds

import (
	"time"

	"boxoffice/internal/inventory"

	"github.com/google/uuid"
)

// Hold states. ACTIVE is the only non-terminal state; a hold never
// transitions back to ACTIVE.
const (
	HoldActive    = "ACTIVE"
	HoldConfirmed = "CONFIRMED"
	HoldExpired   = "EXPIRED"
	HoldCancelled = "CANCELLED"
)

// Hold is a time-boxed exclusive claim on a set of seats pending confirmation.
type Hold struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConcertID uuid.UUID `gorm:"type:uuid;index;not null" json:"concert_id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	State     string    `gorm:"type:varchar(20);check:state IN ('ACTIVE', 'CONFIRMED', 'EXPIRED', 'CANCELLED');default:'ACTIVE'" json:"state"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Seats []HoldSeat `json:"seats,omitempty" gorm:"foreignKey:HoldID;constraint:OnDelete:CASCADE;"`
}

// HoldSeat records one seat address claimed by a hold.
type HoldSeat struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	HoldID     uuid.UUID `gorm:"type:uuid;index;not null" json:"hold_id"`
	RowLabel   string    `gorm:"not null" json:"row"`
	SeatNumber int       `gorm:"not null" json:"seat_no"`
}

// TableName sets the table name for Hold
func (Hold) TableName() string {
	return "holds"
}

// TableName sets the table name for HoldSeat
func (HoldSeat) TableName() string {
	return "hold_seats"
}

func (h *Hold) IsActive() bool {
	return h.State == HoldActive
}

func (h *Hold) IsTerminal() bool {
	return h.State != HoldActive
}

// LapsedAt reports whether the TTL has run out at the given instant. The
// hold may still read ACTIVE in storage until the sweep or a lazy read
// performs the transition.
func (h *Hold) LapsedAt(now time.Time) bool {
	return now.After(h.ExpiresAt)
}

// SeatRefs returns the claimed seat addresses.
func (h *Hold) SeatRefs() []inventory.SeatRef {
	refs := make([]inventory.SeatRef, 0, len(h.Seats))
	for _, seat := range h.Seats {
		refs = append(refs, inventory.SeatRef{Row: seat.RowLabel, SeatNo: seat.SeatNumber})
	}
	return refs
}
