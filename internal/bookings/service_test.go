package bookings

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"boxoffice/internal/holds"
	"boxoffice/internal/inventory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHoldService confirms a hold exactly once, like the real hold manager's
// compare-and-set.
type fakeHoldService struct {
	mu   sync.Mutex
	hold *holds.Hold
}

func (f *fakeHoldService) ConfirmHold(_ context.Context, holdID, userID uuid.UUID) (*holds.Hold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hold == nil || f.hold.ID != holdID {
		return nil, holds.ErrHoldNotFound
	}
	if f.hold.UserID != userID {
		return nil, holds.ErrNotOwner
	}
	switch f.hold.State {
	case holds.HoldConfirmed:
		return nil, holds.ErrAlreadyConfirmed
	case holds.HoldExpired, holds.HoldCancelled:
		return nil, holds.ErrHoldExpired
	}
	f.hold.State = holds.HoldConfirmed
	copied := *f.hold
	return &copied, nil
}

func (f *fakeHoldService) GetConfirmed(_ context.Context, holdID, userID uuid.UUID) (*holds.Hold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hold == nil || f.hold.ID != holdID {
		return nil, holds.ErrHoldNotFound
	}
	if f.hold.UserID != userID {
		return nil, holds.ErrNotOwner
	}
	if f.hold.State != holds.HoldConfirmed {
		return nil, holds.ErrHoldExpired
	}
	copied := *f.hold
	return &copied, nil
}

type fakeSeatPricer struct {
	prices map[inventory.SeatRef]int64
}

func (f *fakeSeatPricer) GetSeats(_ context.Context, concertID uuid.UUID, refs []inventory.SeatRef) ([]inventory.Seat, error) {
	var seats []inventory.Seat
	for _, ref := range refs {
		seats = append(seats, inventory.Seat{
			ConcertID:      concertID,
			RowLabel:       ref.Row,
			SeatNumber:     ref.SeatNo,
			BasePriceCents: f.prices[ref],
			Status:         inventory.SeatConfirmed,
		})
	}
	return seats, nil
}

type fakeBookingRepo struct {
	mu          sync.Mutex
	bookings    map[uuid.UUID]*Booking
	failCreates int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*Booking)}
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreates > 0 {
		r.failCreates--
		return errors.New("insert failed")
	}
	stored := *booking
	stored.Seats = append([]BookingSeat(nil), booking.Seats...)
	r.bookings[booking.ID] = &stored
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *stored
	copied.Seats = append([]BookingSeat(nil), stored.Seats...)
	return &copied, nil
}

func (r *fakeBookingRepo) GetByHoldID(_ context.Context, holdID uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.bookings {
		if stored.HoldID == holdID {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (r *fakeBookingRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, stored := range r.bookings {
		if stored.UserID == userID {
			out = append(out, *stored)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) MarkSeatsCancelled(_ context.Context, bookingID uuid.UUID, refs []inventory.SeatRef, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[bookingID]
	if !ok {
		return ErrBookingNotFound
	}
	wanted := make(map[inventory.SeatRef]bool, len(refs))
	for _, ref := range refs {
		wanted[ref] = true
	}
	for i := range stored.Seats {
		if wanted[stored.Seats[i].Ref()] && stored.Seats[i].CancelledAt == nil {
			t := at
			stored.Seats[i].CancelledAt = &t
		}
	}
	return nil
}

func (r *fakeBookingRepo) MarkCancelled(_ context.Context, bookingID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bookings[bookingID]
	if !ok {
		return ErrBookingNotFound
	}
	t := at
	stored.Status = BookingCancelled
	stored.CancelledAt = &t
	return nil
}

func (r *fakeBookingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

func newBookingFixture(state string) (Service, *fakeBookingRepo, *holds.Hold) {
	userID := uuid.New()
	hold := &holds.Hold{
		ID:        uuid.New(),
		ConcertID: uuid.New(),
		UserID:    userID,
		State:     state,
		ExpiresAt: time.Now().Add(5 * time.Minute),
		Seats: []holds.HoldSeat{
			{RowLabel: "A", SeatNumber: 1},
			{RowLabel: "A", SeatNumber: 2},
		},
	}
	repo := newFakeBookingRepo()
	pricer := &fakeSeatPricer{prices: map[inventory.SeatRef]int64{
		{Row: "A", SeatNo: 1}: 12000,
		{Row: "A", SeatNo: 2}: 12000,
	}}
	return NewService(repo, &fakeHoldService{hold: hold}, pricer), repo, hold
}

func TestConfirmBooking(t *testing.T) {
	svc, repo, hold := newBookingFixture(holds.HoldActive)

	view, err := svc.ConfirmBooking(context.Background(), hold.UserID, ConfirmBookingRequest{HoldID: hold.ID.String()})
	require.NoError(t, err)

	assert.Equal(t, BookingConfirmed, view.Status)
	assert.Equal(t, int64(24000), view.AmountCents)
	assert.Len(t, view.Seats, 2)
	assert.Regexp(t, regexp.MustCompile(`^CNB-\d{8}-[A-Z]{6}$`), view.BookingRef)
	assert.Equal(t, 1, repo.count())
}

func TestConfirmBookingTwiceCreatesOneBooking(t *testing.T) {
	svc, repo, hold := newBookingFixture(holds.HoldActive)

	_, err := svc.ConfirmBooking(context.Background(), hold.UserID, ConfirmBookingRequest{HoldID: hold.ID.String()})
	require.NoError(t, err)

	_, err = svc.ConfirmBooking(context.Background(), hold.UserID, ConfirmBookingRequest{HoldID: hold.ID.String()})
	assert.ErrorIs(t, err, holds.ErrAlreadyConfirmed)
	assert.Equal(t, 1, repo.count())
}

func TestConfirmBookingRetriesAfterCreateFailure(t *testing.T) {
	svc, repo, hold := newBookingFixture(holds.HoldActive)
	repo.failCreates = 1

	// The hold flips to CONFIRMED but the booking insert fails underneath.
	_, err := svc.ConfirmBooking(context.Background(), hold.UserID, ConfirmBookingRequest{HoldID: hold.ID.String()})
	require.Error(t, err)
	assert.Zero(t, repo.count())

	// The retry rebuilds the missing booking from the confirmed hold instead
	// of reporting the hold as already confirmed.
	view, err := svc.ConfirmBooking(context.Background(), hold.UserID, ConfirmBookingRequest{HoldID: hold.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, BookingConfirmed, view.Status)
	assert.Equal(t, int64(24000), view.AmountCents)
	assert.Equal(t, 1, repo.count())

	// With the booking in place, further confirms are duplicates again.
	_, err = svc.ConfirmBooking(context.Background(), hold.UserID, ConfirmBookingRequest{HoldID: hold.ID.String()})
	assert.ErrorIs(t, err, holds.ErrAlreadyConfirmed)
	assert.Equal(t, 1, repo.count())
}

func TestConfirmBookingExpiredHold(t *testing.T) {
	svc, repo, hold := newBookingFixture(holds.HoldExpired)

	_, err := svc.ConfirmBooking(context.Background(), hold.UserID, ConfirmBookingRequest{HoldID: hold.ID.String()})
	assert.ErrorIs(t, err, holds.ErrHoldExpired)
	assert.Zero(t, repo.count())
}

func TestConfirmBookingWrongUser(t *testing.T) {
	svc, repo, hold := newBookingFixture(holds.HoldActive)

	_, err := svc.ConfirmBooking(context.Background(), uuid.New(), ConfirmBookingRequest{HoldID: hold.ID.String()})
	assert.ErrorIs(t, err, holds.ErrNotOwner)
	assert.Zero(t, repo.count())
}

func TestGetBookingOwnership(t *testing.T) {
	svc, _, hold := newBookingFixture(holds.HoldActive)

	view, err := svc.ConfirmBooking(context.Background(), hold.UserID, ConfirmBookingRequest{HoldID: hold.ID.String()})
	require.NoError(t, err)

	got, err := svc.GetBooking(context.Background(), view.ID, hold.UserID)
	require.NoError(t, err)
	assert.Equal(t, view.BookingRef, got.BookingRef)

	_, err = svc.GetBooking(context.Background(), view.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.GetBooking(context.Background(), uuid.New().String(), hold.UserID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
