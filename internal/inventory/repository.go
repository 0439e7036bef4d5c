package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Concert / seat map
	CreateConcert(ctx context.Context, concert *Concert) error
	GetConcert(ctx context.Context, id uuid.UUID) (*Concert, error)
	CreateSeats(ctx context.Context, seats []Seat) error
	ListSeats(ctx context.Context, concertID uuid.UUID) ([]Seat, error)
	GetSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef) ([]Seat, error)

	// State transitions. Claim and commit are all-or-nothing: either every
	// addressed seat transitions, or none do and a ConflictError names the
	// seats that stood in the way.
	ClaimSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef, holdID uuid.UUID) error
	ReleaseSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef, holdID uuid.UUID) error
	CommitSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef, holdID uuid.UUID) error
	CancelSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateConcert(ctx context.Context, concert *Concert) error {
	return r.db.WithContext(ctx).Create(concert).Error
}

func (r *repository) GetConcert(ctx context.Context, id uuid.UUID) (*Concert, error) {
	var concert Concert
	err := r.db.WithContext(ctx).First(&concert, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConcertNotFound
		}
		return nil, fmt.Errorf("failed to get concert: %w", err)
	}
	return &concert, nil
}

func (r *repository) CreateSeats(ctx context.Context, seats []Seat) error {
	return r.db.WithContext(ctx).Create(&seats).Error
}

func (r *repository) ListSeats(ctx context.Context, concertID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("concert_id = ?", concertID).
		Order("row_label ASC, seat_number ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("concert_id = ?", concertID).
		Where("(row_label, seat_number) IN ?", refPairs(refs)).
		Find(&seats).Error
	return seats, err
}

// ClaimSeats transitions AVAILABLE -> HELD for every ref, tagged with holdID.
// The addressed rows are locked FOR UPDATE inside one transaction, so two
// concurrent claims racing for the same seat serialize on the row lock and
// the loser observes a non-AVAILABLE status. All-or-nothing by rollback.
func (r *repository) ClaimSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef, holdID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seats, err := lockSeats(tx, concertID, refs)
		if err != nil {
			return err
		}

		contended := contendedRefs(refs, seats, func(s *Seat) bool { return s.IsAvailable() })
		if len(contended) > 0 {
			return &ConflictError{ContendedSeats: contended}
		}

		return tx.Model(&Seat{}).
			Where("id IN ?", seatIDs(seats)).
			Updates(map[string]interface{}{"status": SeatHeld, "hold_id": holdID}).Error
	})
}

// ReleaseSeats transitions HELD -> AVAILABLE only for seats tagged with
// holdID. Seats already confirmed, or claimed by a different hold, are left
// untouched; a stale or duplicate release is therefore a no-op.
func (r *repository) ReleaseSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef, holdID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&Seat{}).
		Where("concert_id = ?", concertID).
		Where("(row_label, seat_number) IN ?", refPairs(refs)).
		Where("status = ? AND hold_id = ?", SeatHeld, holdID).
		Updates(map[string]interface{}{"status": SeatAvailable, "hold_id": nil}).Error
}

// CommitSeats transitions HELD -> CONFIRMED only if every ref is currently
// held under holdID; otherwise the transaction rolls back without effect.
func (r *repository) CommitSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef, holdID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seats, err := lockSeats(tx, concertID, refs)
		if err != nil {
			return err
		}

		contended := contendedRefs(refs, seats, func(s *Seat) bool {
			return s.Status == SeatHeld && s.HoldID != nil && *s.HoldID == holdID
		})
		if len(contended) > 0 {
			return &ConflictError{ContendedSeats: contended}
		}

		return tx.Model(&Seat{}).
			Where("id IN ?", seatIDs(seats)).
			Updates(map[string]interface{}{"status": SeatConfirmed, "hold_id": nil}).Error
	})
}

// CancelSeats transitions CONFIRMED -> CANCELLED. The caller has already
// authorized the cancellation against the owning booking.
func (r *repository) CancelSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef) error {
	return r.db.WithContext(ctx).Model(&Seat{}).
		Where("concert_id = ?", concertID).
		Where("(row_label, seat_number) IN ?", refPairs(refs)).
		Where("status = ?", SeatConfirmed).
		Update("status", SeatCancelled).Error
}

// lockSeats loads the addressed seats FOR UPDATE.
func lockSeats(tx *gorm.DB, concertID uuid.UUID, refs []SeatRef) ([]Seat, error) {
	var seats []Seat
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("concert_id = ?", concertID).
		Where("(row_label, seat_number) IN ?", refPairs(refs)).
		Find(&seats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock seats: %w", err)
	}
	return seats, nil
}

// contendedRefs returns the refs that are missing from the loaded set or
// fail the eligibility check.
func contendedRefs(refs []SeatRef, seats []Seat, eligible func(*Seat) bool) []SeatRef {
	byRef := make(map[SeatRef]*Seat, len(seats))
	for i := range seats {
		byRef[seats[i].Ref()] = &seats[i]
	}

	var contended []SeatRef
	for _, ref := range refs {
		seat, ok := byRef[ref]
		if !ok || !eligible(seat) {
			contended = append(contended, ref)
		}
	}
	return contended
}

func refPairs(refs []SeatRef) [][]interface{} {
	pairs := make([][]interface{}, 0, len(refs))
	for _, ref := range refs {
		pairs = append(pairs, []interface{}{ref.Row, ref.SeatNo})
	}
	return pairs
}

func seatIDs(seats []Seat) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(seats))
	for _, seat := range seats {
		ids = append(ids, seat.ID)
	}
	return ids
}
