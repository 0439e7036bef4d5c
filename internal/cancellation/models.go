package cancellation

import (
	"time"

	"github.com/google/uuid"
)

// Accepted cancellation reasons. The reason is recorded for reporting and
// does not change the refund math.
const (
	ReasonPlanChanged     = "PLAN_CHANGED"
	ReasonBookedByMistake = "BOOKED_BY_MISTAKE"
	ReasonHealthIssue     = "HEALTH_ISSUE"
	ReasonOther           = "OTHER"
)

var validReasons = map[string]bool{
	ReasonPlanChanged:     true,
	ReasonBookedByMistake: true,
	ReasonHealthIssue:     true,
	ReasonOther:           true,
}

// CancellationRecord captures one cancellation request: which seats, why,
// and the refund math that was applied. SubtotalCents is the sum of the
// cancelled seats' sale prices; RefundCents is what the user is owed after
// the deduction.
type CancellationRecord struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID        uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	UserID           uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Reason           string    `gorm:"type:varchar(30);not null" json:"reason"`
	DeductionPercent int       `gorm:"not null" json:"deduction_percent"`
	SubtotalCents    int64     `gorm:"not null" json:"subtotal_cents"`
	RefundCents      int64     `gorm:"not null" json:"refund_cents"`
	CreatedAt        time.Time `json:"created_at"`

	Seats []CancellationSeat `json:"seats,omitempty" gorm:"foreignKey:CancellationID;constraint:OnDelete:CASCADE;"`
}

// CancellationSeat is one seat released by a cancellation, with the price it
// contributed to the subtotal.
type CancellationSeat struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CancellationID uuid.UUID `gorm:"type:uuid;index;not null" json:"cancellation_id"`
	RowLabel       string    `gorm:"not null" json:"row"`
	SeatNumber     int       `gorm:"not null" json:"seat_no"`
	PriceCents     int64     `gorm:"not null" json:"price_cents"`
}

// TableName sets the table name for CancellationRecord
func (CancellationRecord) TableName() string {
	return "cancellation_records"
}

// TableName sets the table name for CancellationSeat
func (CancellationSeat) TableName() string {
	return "cancellation_seats"
}

func IsValidReason(reason string) bool {
	return validReasons[reason]
}
