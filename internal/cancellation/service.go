package cancellation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"boxoffice/internal/bookings"
	"boxoffice/internal/inventory"
	"boxoffice/internal/ledger"
	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

// BookingStore is the slice of the booking layer cancellation depends on.
type BookingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error)
	MarkSeatsCancelled(ctx context.Context, bookingID uuid.UUID, refs []inventory.SeatRef, at time.Time) error
	MarkCancelled(ctx context.Context, bookingID uuid.UUID, at time.Time) error
}

// SeatCanceller releases confirmed seats back out of the saleable pool.
type SeatCanceller interface {
	GetConcert(ctx context.Context, concertID uuid.UUID) (*inventory.Concert, error)
	CancelSeats(ctx context.Context, concertID uuid.UUID, refs []inventory.SeatRef) error
}

// RefundLedger records what the cancellation owes the user.
type RefundLedger interface {
	Record(ctx context.Context, cancellationID, bookingID, userID uuid.UUID, amountCents int64) (*ledger.RefundEntry, error)
}

type Service interface {
	CancelSeats(ctx context.Context, userID uuid.UUID, bookingID string, req CancelSeatsRequest) (*CancellationView, error)
	ListUserCancellations(ctx context.Context, userID uuid.UUID) ([]CancellationView, error)
}

type service struct {
	repo         Repository
	bookingStore BookingStore
	seats        SeatCanceller
	refundLedger RefundLedger
	schedule     Schedule
	now          func() time.Time

	// bookingLocks serializes concurrent cancellations of the same booking,
	// so two requests for overlapping seats can't both pass the live-seat
	// check.
	bookingLocks sync.Map
}

func NewService(repo Repository, bookingStore BookingStore, seats SeatCanceller, refundLedger RefundLedger, schedule Schedule) Service {
	return &service{
		repo:         repo,
		bookingStore: bookingStore,
		seats:        seats,
		refundLedger: refundLedger,
		schedule:     schedule,
		now:          time.Now,
	}
}

func (s *service) CancelSeats(ctx context.Context, userID uuid.UUID, bookingID string, req CancelSeatsRequest) (*CancellationView, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, bookings.ErrBookingNotFound
	}

	if !IsValidReason(req.Reason) {
		return nil, ErrInvalidReason
	}
	refs := inventory.Dedupe(req.Seats)
	if len(refs) == 0 {
		return nil, ErrEmptySelection
	}

	unlock := s.lockBooking(id)
	defer unlock()

	booking, err := s.bookingStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, bookings.ErrNotOwner
	}

	// Every named seat must be a live seat of this booking. A seat that was
	// already cancelled does not qualify a second time.
	liveByRef := make(map[inventory.SeatRef]*bookings.BookingSeat)
	for i := range booking.Seats {
		seat := &booking.Seats[i]
		if !seat.IsCancelled() {
			liveByRef[seat.Ref()] = seat
		}
	}
	var subtotal int64
	selected := make([]*bookings.BookingSeat, 0, len(refs))
	for _, ref := range refs {
		seat, ok := liveByRef[ref]
		if !ok {
			return nil, ErrSeatsNotInBooking
		}
		selected = append(selected, seat)
		subtotal += seat.PriceCents
	}

	concert, err := s.seats.GetConcert(ctx, booking.ConcertID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	deduction, err := s.schedule.DeductionFor(now, concert.EventDate)
	if err != nil {
		return nil, err
	}
	refund := RefundAmount(subtotal, deduction)

	if err := s.seats.CancelSeats(ctx, booking.ConcertID, refs); err != nil {
		return nil, fmt.Errorf("failed to cancel seats: %w", err)
	}
	if err := s.bookingStore.MarkSeatsCancelled(ctx, booking.ID, refs, now); err != nil {
		return nil, fmt.Errorf("failed to mark booking seats cancelled: %w", err)
	}
	if len(selected) == len(booking.LiveSeats()) {
		if err := s.bookingStore.MarkCancelled(ctx, booking.ID, now); err != nil {
			return nil, fmt.Errorf("failed to mark booking cancelled: %w", err)
		}
	}

	record := &CancellationRecord{
		ID:               uuid.New(),
		BookingID:        booking.ID,
		UserID:           userID,
		Reason:           req.Reason,
		DeductionPercent: deduction,
		SubtotalCents:    subtotal,
		RefundCents:      refund,
	}
	for _, seat := range selected {
		record.Seats = append(record.Seats, CancellationSeat{
			CancellationID: record.ID,
			RowLabel:       seat.RowLabel,
			SeatNumber:     seat.SeatNumber,
			PriceCents:     seat.PriceCents,
		})
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create cancellation record: %w", err)
	}

	if _, err := s.refundLedger.Record(ctx, record.ID, booking.ID, userID, refund); err != nil {
		return nil, fmt.Errorf("failed to record refund: %w", err)
	}

	logger.GetDefault().LogSeatsCancelled(ctx, booking.ID.String(), len(refs), deduction, refund)
	return toView(record), nil
}

func (s *service) ListUserCancellations(ctx context.Context, userID uuid.UUID) ([]CancellationView, error) {
	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cancellations: %w", err)
	}

	views := make([]CancellationView, 0, len(records))
	for i := range records {
		views = append(views, *toView(&records[i]))
	}
	return views, nil
}

func (s *service) lockBooking(bookingID uuid.UUID) func() {
	value, _ := s.bookingLocks.LoadOrStore(bookingID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func toView(record *CancellationRecord) *CancellationView {
	view := &CancellationView{
		ID:               record.ID.String(),
		BookingID:        record.BookingID.String(),
		Reason:           record.Reason,
		DeductionPercent: record.DeductionPercent,
		SubtotalCents:    record.SubtotalCents,
		RefundCents:      record.RefundCents,
		CreatedAt:        record.CreatedAt,
	}
	for _, seat := range record.Seats {
		view.Seats = append(view.Seats, inventory.SeatRef{Row: seat.RowLabel, SeatNo: seat.SeatNumber}.String())
	}
	return view
}
