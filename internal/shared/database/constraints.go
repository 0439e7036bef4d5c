package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds database constraints the claim/commit transactions rely on.
func MigrateConstraints(db *gorm.DB) error {
	// One physical seat per concert address. The claim transaction locks
	// these rows FOR UPDATE, so the unique index is what makes the
	// per-seat critical section well-defined.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_seats_concert_row_number
		ON seats (concert_id, row_label, seat_number);
	`).Error
	if err != nil {
		return err
	}

	// A booking may reference a given seat address at most once; this backs
	// the cancel-at-most-once rule for (booking, seat) pairs.
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_booking_seats_unique
		ON booking_seats (booking_id, row_label, seat_number);
	`).Error
	if err != nil {
		return err
	}

	// Sweep scans ACTIVE holds by expiry.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_holds_state_expires_at
		ON holds (state, expires_at);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
