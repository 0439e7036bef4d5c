package bookings

import "errors"

var (
	// ErrBookingNotFound means no booking exists under the given ID.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrNotOwner means the caller is not the user who owns the booking.
	ErrNotOwner = errors.New("booking belongs to a different user")
)
