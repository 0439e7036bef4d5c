package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Seat statuses. A seat is HELD only while an unexpired hold references it;
// CANCELLED seats are policy-released and never revert to AVAILABLE on their own.
const (
	SeatAvailable = "AVAILABLE"
	SeatHeld      = "HELD"
	SeatConfirmed = "CONFIRMED"
	SeatCancelled = "CANCELLED"
)

// Concert is the event a seat map belongs to. Directory browsing lives in a
// separate service; the engine only needs the date for refund tiering.
type Concert struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Venue     string    `json:"venue"`
	EventDate time.Time `gorm:"index;not null" json:"event_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Seats []Seat `json:"seats,omitempty" gorm:"foreignKey:ConcertID;constraint:OnDelete:CASCADE;"`
}

// Seat is the authoritative per-seat record. HoldID tags the owning hold
// while the seat is HELD; the claim/commit/release transitions clear or
// check it so a stale release can never touch someone else's claim.
type Seat struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConcertID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"concert_id"`
	RowLabel       string     `gorm:"not null" json:"row"`
	SeatNumber     int        `gorm:"not null" json:"seat_no"`
	BasePriceCents int64      `gorm:"not null" json:"base_price_cents"`
	Status         string     `gorm:"type:varchar(20);check:status IN ('AVAILABLE', 'HELD', 'CONFIRMED', 'CANCELLED');default:'AVAILABLE'" json:"status"`
	HoldID         *uuid.UUID `gorm:"type:uuid;index" json:"hold_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName sets the table name for Concert
func (Concert) TableName() string {
	return "concerts"
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

func (s *Seat) IsAvailable() bool {
	return s.Status == SeatAvailable
}

func (s *Seat) Ref() SeatRef {
	return SeatRef{Row: s.RowLabel, SeatNo: s.SeatNumber}
}

// SeatRef addresses a seat within a concert by row and number.
type SeatRef struct {
	Row    string `json:"row" binding:"required"`
	SeatNo int    `json:"seat_no" binding:"required,min=1"`
}

func (r SeatRef) String() string {
	return fmt.Sprintf("%s-%d", r.Row, r.SeatNo)
}

// Dedupe removes duplicate refs while preserving order.
func Dedupe(refs []SeatRef) []SeatRef {
	seen := make(map[SeatRef]struct{}, len(refs))
	out := refs[:0]
	for _, ref := range refs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}
