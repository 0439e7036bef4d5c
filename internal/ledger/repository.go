package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrEntryNotFound means no refund entry exists under the given ID.
var ErrEntryNotFound = errors.New("refund entry not found")

type Repository interface {
	Create(ctx context.Context, entry *RefundEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*RefundEntry, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]RefundEntry, error)
	ListPendingByUser(ctx context.Context, userID uuid.UUID) ([]RefundEntry, error)

	// SettleIf flips PENDING -> SETTLED. Reports whether this call made the
	// transition.
	SettleIf(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *RefundEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*RefundEntry, error) {
	var entry RefundEntry
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get refund entry: %w", err)
	}
	return &entry, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]RefundEntry, error) {
	var entries []RefundEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) ListPendingByUser(ctx context.Context, userID uuid.UUID) ([]RefundEntry, error) {
	var entries []RefundEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, RefundPending).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) SettleIf(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&RefundEntry{}).
		Where("id = ? AND status = ?", id, RefundPending).
		Updates(map[string]interface{}{"status": RefundSettled, "settled_at": at})
	if result.Error != nil {
		return false, fmt.Errorf("failed to settle refund entry: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
