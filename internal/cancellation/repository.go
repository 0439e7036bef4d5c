package cancellation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, record *CancellationRecord) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]CancellationRecord, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, record *CancellationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]CancellationRecord, error) {
	var records []CancellationRecord
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}
