package bookings

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"boxoffice/internal/holds"
	"boxoffice/internal/inventory"
	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

// HoldService is the slice of the hold manager bookings depend on. The hold
// confirm carries all the race handling; bookings only record the result.
type HoldService interface {
	ConfirmHold(ctx context.Context, holdID, userID uuid.UUID) (*holds.Hold, error)
	GetConfirmed(ctx context.Context, holdID, userID uuid.UUID) (*holds.Hold, error)
}

// SeatPricer resolves seat addresses to their priced inventory rows.
type SeatPricer interface {
	GetSeats(ctx context.Context, concertID uuid.UUID, refs []inventory.SeatRef) ([]inventory.Seat, error)
}

type Service interface {
	ConfirmBooking(ctx context.Context, userID uuid.UUID, req ConfirmBookingRequest) (*BookingView, error)
	GetBooking(ctx context.Context, bookingID string, userID uuid.UUID) (*BookingView, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingView, error)
}

type service struct {
	repo        Repository
	holdService HoldService
	seatPricer  SeatPricer
}

func NewService(repo Repository, holdService HoldService, seatPricer SeatPricer) Service {
	return &service{
		repo:        repo,
		holdService: holdService,
		seatPricer:  seatPricer,
	}
}

// ConfirmBooking converts an ACTIVE hold into a booking. The hold confirm is
// the single gate: it succeeds exactly once per hold, so at most one booking
// is ever created for a hold regardless of how many confirms race.
func (s *service) ConfirmBooking(ctx context.Context, userID uuid.UUID, req ConfirmBookingRequest) (*BookingView, error) {
	holdID, err := uuid.Parse(req.HoldID)
	if err != nil {
		return nil, holds.ErrHoldNotFound
	}

	hold, err := s.holdService.ConfirmHold(ctx, holdID, userID)
	if errors.Is(err, holds.ErrAlreadyConfirmed) {
		// A duplicate confirm, unless the booking insert failed after the
		// hold flipped on an earlier attempt. In that case the hold is
		// CONFIRMED with no booking row, so rebuild the booking from the
		// hold instead of leaving the retry permanently stuck.
		if _, getErr := s.repo.GetByHoldID(ctx, holdID); getErr == nil {
			return nil, holds.ErrAlreadyConfirmed
		} else if !errors.Is(getErr, ErrBookingNotFound) {
			return nil, getErr
		}
		hold, err = s.holdService.GetConfirmed(ctx, holdID, userID)
	}
	if err != nil {
		return nil, err
	}

	refs := hold.SeatRefs()
	seats, err := s.seatPricer.GetSeats(ctx, hold.ConcertID, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to price seats: %w", err)
	}
	priceByRef := make(map[inventory.SeatRef]int64, len(seats))
	for _, seat := range seats {
		priceByRef[seat.Ref()] = seat.BasePriceCents
	}

	bookingRef, err := s.generateBookingReference()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	booking := &Booking{
		ID:         uuid.New(),
		BookingRef: bookingRef,
		UserID:     userID,
		ConcertID:  hold.ConcertID,
		HoldID:     hold.ID,
		Status:     BookingConfirmed,
	}
	for _, ref := range refs {
		price := priceByRef[ref]
		booking.AmountCents += price
		booking.Seats = append(booking.Seats, BookingSeat{
			BookingID:  booking.ID,
			RowLabel:   ref.Row,
			SeatNumber: ref.SeatNo,
			PriceCents: price,
		})
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	logger.GetDefault().LogBookingConfirmed(ctx, booking.ID.String(), hold.ID.String(), userID.String(), booking.AmountCents)
	return toView(booking), nil
}

func (s *service) GetBooking(ctx context.Context, bookingID string, userID uuid.UUID) (*BookingView, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrNotOwner
	}
	return toView(booking), nil
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID) ([]BookingView, error) {
	bookings, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	views := make([]BookingView, 0, len(bookings))
	for i := range bookings {
		views = append(views, *toView(&bookings[i]))
	}
	return views, nil
}

// generateBookingReference generates a unique booking reference
func (s *service) generateBookingReference() (string, error) {
	timestamp := time.Now().Format("20060102")

	// Generate 6 random uppercase letters
	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("CNB-%s-%s", timestamp, string(randomPart)), nil
}

func toView(booking *Booking) *BookingView {
	view := &BookingView{
		ID:          booking.ID.String(),
		BookingRef:  booking.BookingRef,
		ConcertID:   booking.ConcertID.String(),
		Status:      booking.Status,
		AmountCents: booking.AmountCents,
		CreatedAt:   booking.CreatedAt,
		CancelledAt: booking.CancelledAt,
	}
	for _, seat := range booking.Seats {
		view.Seats = append(view.Seats, BookingSeatView{
			Row:         seat.RowLabel,
			SeatNo:      seat.SeatNumber,
			PriceCents:  seat.PriceCents,
			CancelledAt: seat.CancelledAt,
		})
	}
	return view
}
