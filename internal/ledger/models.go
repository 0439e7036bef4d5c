package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Refund entry statuses. Entries are written PENDING by the cancellation
// flow and settled later by the payments side.
const (
	RefundPending = "PENDING"
	RefundSettled = "SETTLED"
)

// RefundEntry is one refund obligation owed to a user. Amounts are minor
// currency units; the ledger is append-only and an entry's amount never
// changes after it is written.
type RefundEntry struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CancellationID uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"cancellation_id"`
	BookingID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"booking_id"`
	UserID         uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	AmountCents    int64      `gorm:"not null" json:"amount_cents"`
	Status         string     `gorm:"type:varchar(20);check:status IN ('PENDING', 'SETTLED');default:'PENDING'" json:"status"`
	SettledAt      *time.Time `json:"settled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName sets the table name for RefundEntry
func (RefundEntry) TableName() string {
	return "refund_entries"
}
