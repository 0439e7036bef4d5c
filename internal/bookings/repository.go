package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boxoffice/internal/inventory"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByHoldID(ctx context.Context, holdID uuid.UUID) (*Booking, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]Booking, error)

	// MarkSeatsCancelled stamps CancelledAt on the named seats.
	MarkSeatsCancelled(ctx context.Context, bookingID uuid.UUID, refs []inventory.SeatRef, at time.Time) error

	// MarkCancelled flips the booking itself to CANCELLED.
	MarkCancelled(ctx context.Context, bookingID uuid.UUID, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) GetByHoldID(ctx context.Context, holdID uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		First(&booking, "hold_id = ?", holdID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking by hold: %w", err)
	}
	return &booking, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) MarkSeatsCancelled(ctx context.Context, bookingID uuid.UUID, refs []inventory.SeatRef, at time.Time) error {
	pairs := make([][]interface{}, 0, len(refs))
	for _, ref := range refs {
		pairs = append(pairs, []interface{}{ref.Row, ref.SeatNo})
	}
	return r.db.WithContext(ctx).Model(&BookingSeat{}).
		Where("booking_id = ?", bookingID).
		Where("(row_label, seat_number) IN ?", pairs).
		Where("cancelled_at IS NULL").
		Update("cancelled_at", at).Error
}

func (r *repository) MarkCancelled(ctx context.Context, bookingID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]interface{}{"status": BookingCancelled, "cancelled_at": at}).Error
}
