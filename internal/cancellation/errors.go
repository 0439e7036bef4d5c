package cancellation

import "errors"

var (
	// ErrTooLateToCancel means the concert has already started or passed.
	ErrTooLateToCancel = errors.New("too late to cancel")

	// ErrInvalidReason means the reason is not one of the accepted values.
	ErrInvalidReason = errors.New("invalid cancellation reason")

	// ErrEmptySelection means the request named no seats.
	ErrEmptySelection = errors.New("no seats selected")

	// ErrSeatsNotInBooking means a named seat is not a live seat of the
	// booking: it either never belonged to it or was already cancelled.
	ErrSeatsNotInBooking = errors.New("seats not in booking")
)
