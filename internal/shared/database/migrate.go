package database

import (
	"boxoffice/internal/bookings"
	"boxoffice/internal/cancellation"
	"boxoffice/internal/holds"
	"boxoffice/internal/inventory"
	"boxoffice/internal/ledger"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&inventory.Concert{},
		&inventory.Seat{},
		&holds.Hold{},
		&holds.HoldSeat{},
		&bookings.Booking{},
		&bookings.BookingSeat{},
		&cancellation.CancellationRecord{},
		&cancellation.CancellationSeat{},
		&ledger.RefundEntry{},
	); err != nil {
		return err
	}

	return MigrateConstraints(db)
}
