package cancellation

import (
	"context"
	"sync"
	"testing"
	"time"

	"boxoffice/internal/bookings"
	"boxoffice/internal/inventory"
	"boxoffice/internal/ledger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookingStore struct {
	mu      sync.Mutex
	booking *bookings.Booking
}

func (f *fakeBookingStore) GetByID(_ context.Context, id uuid.UUID) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.booking == nil || f.booking.ID != id {
		return nil, bookings.ErrBookingNotFound
	}
	copied := *f.booking
	copied.Seats = append([]bookings.BookingSeat(nil), f.booking.Seats...)
	return &copied, nil
}

func (f *fakeBookingStore) MarkSeatsCancelled(_ context.Context, bookingID uuid.UUID, refs []inventory.SeatRef, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[inventory.SeatRef]bool, len(refs))
	for _, ref := range refs {
		wanted[ref] = true
	}
	for i := range f.booking.Seats {
		if wanted[f.booking.Seats[i].Ref()] && f.booking.Seats[i].CancelledAt == nil {
			t := at
			f.booking.Seats[i].CancelledAt = &t
		}
	}
	return nil
}

func (f *fakeBookingStore) MarkCancelled(_ context.Context, bookingID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := at
	f.booking.Status = bookings.BookingCancelled
	f.booking.CancelledAt = &t
	return nil
}

type fakeSeatCanceller struct {
	concert   *inventory.Concert
	cancelled []inventory.SeatRef
}

func (f *fakeSeatCanceller) GetConcert(_ context.Context, concertID uuid.UUID) (*inventory.Concert, error) {
	if concertID != f.concert.ID {
		return nil, inventory.ErrConcertNotFound
	}
	return f.concert, nil
}

func (f *fakeSeatCanceller) CancelSeats(_ context.Context, _ uuid.UUID, refs []inventory.SeatRef) error {
	f.cancelled = append(f.cancelled, refs...)
	return nil
}

type fakeRefundLedger struct {
	entries []*ledger.RefundEntry
}

func (f *fakeRefundLedger) Record(_ context.Context, cancellationID, bookingID, userID uuid.UUID, amountCents int64) (*ledger.RefundEntry, error) {
	entry := &ledger.RefundEntry{
		ID:             uuid.New(),
		CancellationID: cancellationID,
		BookingID:      bookingID,
		UserID:         userID,
		AmountCents:    amountCents,
		Status:         ledger.RefundPending,
	}
	f.entries = append(f.entries, entry)
	return entry, nil
}

type fakeCancellationRepo struct {
	records []*CancellationRecord
}

func (r *fakeCancellationRepo) Create(_ context.Context, record *CancellationRecord) error {
	r.records = append(r.records, record)
	return nil
}

func (r *fakeCancellationRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]CancellationRecord, error) {
	var out []CancellationRecord
	for _, record := range r.records {
		if record.UserID == userID {
			out = append(out, *record)
		}
	}
	return out, nil
}

type cancelFixture struct {
	service *service
	store   *fakeBookingStore
	seats   *fakeSeatCanceller
	refunds *fakeRefundLedger
	repo    *fakeCancellationRepo
	userID  uuid.UUID
	clock   time.Time
}

// newCancelFixture builds a confirmed booking of A-1 and A-2 at 100.00 each
// plus B-1 at 50.00, with the concert 30 days away.
func newCancelFixture(t *testing.T) *cancelFixture {
	t.Helper()
	clock := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	concert := &inventory.Concert{
		ID:        uuid.New(),
		Title:     "Test Concert",
		EventDate: clock.AddDate(0, 0, 30),
	}
	userID := uuid.New()
	booking := &bookings.Booking{
		ID:          uuid.New(),
		BookingRef:  "CNB-20260901-ABCDEF",
		UserID:      userID,
		ConcertID:   concert.ID,
		HoldID:      uuid.New(),
		AmountCents: 25000,
		Status:      bookings.BookingConfirmed,
		Seats: []bookings.BookingSeat{
			{RowLabel: "A", SeatNumber: 1, PriceCents: 10000},
			{RowLabel: "A", SeatNumber: 2, PriceCents: 10000},
			{RowLabel: "B", SeatNumber: 1, PriceCents: 5000},
		},
	}

	fx := &cancelFixture{
		store:   &fakeBookingStore{booking: booking},
		seats:   &fakeSeatCanceller{concert: concert},
		refunds: &fakeRefundLedger{},
		repo:    &fakeCancellationRepo{},
		userID:  userID,
		clock:   clock,
	}
	svc := NewService(fx.repo, fx.store, fx.seats, fx.refunds, testSchedule()).(*service)
	svc.now = func() time.Time { return fx.clock }
	fx.service = svc
	return fx
}

func (fx *cancelFixture) cancel(t *testing.T, refs []inventory.SeatRef, reason string) (*CancellationView, error) {
	t.Helper()
	return fx.service.CancelSeats(context.Background(), fx.userID, fx.store.booking.ID.String(), CancelSeatsRequest{
		Seats:  refs,
		Reason: reason,
	})
}

func TestCancelSeatsPartial(t *testing.T) {
	fx := newCancelFixture(t)

	view, err := fx.cancel(t, []inventory.SeatRef{{Row: "A", SeatNo: 1}}, ReasonPlanChanged)
	require.NoError(t, err)

	// 30 days out lands in the most generous tier: 25% deduction.
	assert.Equal(t, 25, view.DeductionPercent)
	assert.Equal(t, int64(10000), view.SubtotalCents)
	assert.Equal(t, int64(7500), view.RefundCents)
	assert.Equal(t, []string{"A-1"}, view.Seats)

	// Seat released in inventory, marked in the booking, refund recorded.
	assert.Equal(t, []inventory.SeatRef{{Row: "A", SeatNo: 1}}, fx.seats.cancelled)
	require.Len(t, fx.refunds.entries, 1)
	assert.Equal(t, int64(7500), fx.refunds.entries[0].AmountCents)

	// The booking itself survives a partial cancellation.
	assert.Equal(t, bookings.BookingConfirmed, fx.store.booking.Status)
}

func TestCancelSeatsFullCancelsBooking(t *testing.T) {
	fx := newCancelFixture(t)

	view, err := fx.cancel(t, []inventory.SeatRef{
		{Row: "A", SeatNo: 1},
		{Row: "A", SeatNo: 2},
		{Row: "B", SeatNo: 1},
	}, ReasonBookedByMistake)
	require.NoError(t, err)

	assert.Equal(t, int64(25000), view.SubtotalCents)
	assert.Equal(t, int64(18750), view.RefundCents)
	assert.Equal(t, bookings.BookingCancelled, fx.store.booking.Status)
	assert.NotNil(t, fx.store.booking.CancelledAt)
}

func TestCancelSeatsTwiceRejected(t *testing.T) {
	fx := newCancelFixture(t)

	_, err := fx.cancel(t, []inventory.SeatRef{{Row: "A", SeatNo: 1}}, ReasonPlanChanged)
	require.NoError(t, err)

	_, err = fx.cancel(t, []inventory.SeatRef{{Row: "A", SeatNo: 1}}, ReasonPlanChanged)
	assert.ErrorIs(t, err, ErrSeatsNotInBooking)

	// No second refund for the same seat.
	assert.Len(t, fx.refunds.entries, 1)
}

func TestCancelSeatsValidation(t *testing.T) {
	fx := newCancelFixture(t)

	_, err := fx.cancel(t, []inventory.SeatRef{{Row: "A", SeatNo: 1}}, "FELT_LIKE_IT")
	assert.ErrorIs(t, err, ErrInvalidReason)

	_, err = fx.cancel(t, nil, ReasonOther)
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = fx.cancel(t, []inventory.SeatRef{{Row: "Z", SeatNo: 99}}, ReasonOther)
	assert.ErrorIs(t, err, ErrSeatsNotInBooking)

	// Nothing was touched by the rejected requests.
	assert.Empty(t, fx.seats.cancelled)
	assert.Empty(t, fx.refunds.entries)
}

func TestCancelSeatsWrongUser(t *testing.T) {
	fx := newCancelFixture(t)

	_, err := fx.service.CancelSeats(context.Background(), uuid.New(), fx.store.booking.ID.String(), CancelSeatsRequest{
		Seats:  []inventory.SeatRef{{Row: "A", SeatNo: 1}},
		Reason: ReasonOther,
	})
	assert.ErrorIs(t, err, bookings.ErrNotOwner)
}

func TestCancelSeatsAfterEvent(t *testing.T) {
	fx := newCancelFixture(t)
	fx.clock = fx.seats.concert.EventDate.Add(time.Hour)

	_, err := fx.cancel(t, []inventory.SeatRef{{Row: "A", SeatNo: 1}}, ReasonHealthIssue)
	assert.ErrorIs(t, err, ErrTooLateToCancel)
	assert.Empty(t, fx.seats.cancelled)
	assert.Empty(t, fx.refunds.entries)
}

func TestCancelSeatsCloseToEventKeepsFloorRounding(t *testing.T) {
	fx := newCancelFixture(t)
	// Two days out: 90% deduction. 5000 * 10 / 100 = 500 exactly; B-1 plus
	// A-1 gives 15000 * 10 / 100 = 1500.
	fx.clock = fx.seats.concert.EventDate.AddDate(0, 0, -2)

	view, err := fx.cancel(t, []inventory.SeatRef{
		{Row: "A", SeatNo: 1},
		{Row: "B", SeatNo: 1},
	}, ReasonOther)
	require.NoError(t, err)

	assert.Equal(t, 90, view.DeductionPercent)
	assert.Equal(t, int64(1500), view.RefundCents)
}

func TestListUserCancellations(t *testing.T) {
	fx := newCancelFixture(t)

	_, err := fx.cancel(t, []inventory.SeatRef{{Row: "A", SeatNo: 1}}, ReasonPlanChanged)
	require.NoError(t, err)
	_, err = fx.cancel(t, []inventory.SeatRef{{Row: "B", SeatNo: 1}}, ReasonOther)
	require.NoError(t, err)

	views, err := fx.service.ListUserCancellations(context.Background(), fx.userID)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}
