package holds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateHold(ctx context.Context, hold *Hold) error
	GetHold(ctx context.Context, id uuid.UUID) (*Hold, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Hold, error)

	// UpdateStateIf performs a compare-and-set on the hold state. It reports
	// whether this call made the transition; a false return with a nil error
	// means another actor got there first.
	UpdateStateIf(ctx context.Context, id uuid.UUID, fromState, toState string) (bool, error)

	// ListExpiredActive returns ACTIVE holds whose TTL ran out at or before
	// the cutoff, seats preloaded, bounded by limit.
	ListExpiredActive(ctx context.Context, cutoff time.Time, limit int) ([]Hold, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateHold(ctx context.Context, hold *Hold) error {
	return r.db.WithContext(ctx).Create(hold).Error
}

func (r *repository) GetHold(ctx context.Context, id uuid.UUID) (*Hold, error) {
	var hold Hold
	err := r.db.WithContext(ctx).
		Preload("Seats").
		First(&hold, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, fmt.Errorf("failed to get hold: %w", err)
	}
	return &hold, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Hold, error) {
	var holds []Hold
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&holds).Error
	return holds, err
}

func (r *repository) UpdateStateIf(ctx context.Context, id uuid.UUID, fromState, toState string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Hold{}).
		Where("id = ? AND state = ?", id, fromState).
		Updates(map[string]interface{}{"state": toState, "updated_at": time.Now()})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update hold state: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListExpiredActive(ctx context.Context, cutoff time.Time, limit int) ([]Hold, error) {
	var holds []Hold
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("state = ? AND expires_at <= ?", HoldActive, cutoff).
		Order("expires_at ASC").
		Limit(limit).
		Find(&holds).Error
	return holds, err
}
