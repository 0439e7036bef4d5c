package holds

import "time"

// HoldView is the client-facing shape of a hold. TTLSeconds is the remaining
// lifetime at the moment of the response, zero once the hold is no longer
// ACTIVE.
type HoldView struct {
	ID         string    `json:"id"`
	ConcertID  string    `json:"concert_id"`
	State      string    `json:"state"`
	Seats      []string  `json:"seats"`
	ExpiresAt  time.Time `json:"expires_at"`
	TTLSeconds int       `json:"ttl_seconds"`
	CreatedAt  time.Time `json:"created_at"`
}
