package holds

import "errors"

var (
	// ErrHoldNotFound distinguishes "never existed" from a timed-out hold,
	// so the client can tell the user which happened.
	ErrHoldNotFound = errors.New("hold not found")

	// ErrHoldExpired covers both a lapsed TTL and any other non-confirmable
	// terminal state.
	ErrHoldExpired = errors.New("hold has expired")

	// ErrNotOwner means the caller is not the user who created the hold.
	ErrNotOwner = errors.New("hold belongs to a different user")

	// ErrAlreadyConfirmed means the hold was already converted to a booking.
	ErrAlreadyConfirmed = errors.New("hold already confirmed")

	// ErrEmptySelection means the request named no seats.
	ErrEmptySelection = errors.New("no seats selected")
)
