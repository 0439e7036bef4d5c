package inventory

import (
	"errors"
	"fmt"
	"strings"
)

var ErrConcertNotFound = errors.New("concert not found")

// ConflictError reports a failed all-or-nothing claim or commit. It names
// the specific contended seats so the client can re-render availability.
type ConflictError struct {
	ContendedSeats []SeatRef
}

func (e *ConflictError) Error() string {
	names := make([]string, 0, len(e.ContendedSeats))
	for _, ref := range e.ContendedSeats {
		names = append(names, ref.String())
	}
	return fmt.Sprintf("seats not available: %s", strings.Join(names, ", "))
}

// AsConflict unwraps a ConflictError if err carries one.
func AsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
