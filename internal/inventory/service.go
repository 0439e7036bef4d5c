package inventory

import (
	"context"
	"fmt"

	"boxoffice/internal/shared/config"
	"boxoffice/pkg/cache"
	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	// Seat map
	GetConcert(ctx context.Context, concertID uuid.UUID) (*Concert, error)
	ListSeatMap(ctx context.Context, concertID string) ([]RowView, error)
	GetSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef) ([]Seat, error)

	// State transitions (hold/booking/cancellation flow)
	ClaimSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef, holdID uuid.UUID) error
	ReleaseSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef, holdID uuid.UUID) error
	CommitSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef, holdID uuid.UUID) error
	CancelSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef) error
}

type service struct {
	repo         Repository
	config       *config.Config
	cacheService cache.Service
}

func NewService(repo Repository, cfg *config.Config) *service {
	return &service{
		repo:   repo,
		config: cfg,
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) GetConcert(ctx context.Context, concertID uuid.UUID) (*Concert, error) {
	return s.repo.GetConcert(ctx, concertID)
}

// ListSeatMap returns the seat map grouped by row. Read-only: it reflects
// committed state and never mutates anything, so it is safe to cache briefly.
func (s *service) ListSeatMap(ctx context.Context, concertID string) ([]RowView, error) {
	concertUUID, err := uuid.Parse(concertID)
	if err != nil {
		return nil, fmt.Errorf("invalid concert ID: %w", err)
	}

	cacheKey := cache.SeatMapKey(concertID)
	if s.cacheService != nil {
		var cached []RowView
		if err := s.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	if _, err := s.repo.GetConcert(ctx, concertUUID); err != nil {
		return nil, err
	}

	seats, err := s.repo.ListSeats(ctx, concertUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}

	rows := groupByRow(seats)

	if s.cacheService != nil {
		if err := s.cacheService.Set(ctx, cacheKey, rows, s.config.Redis.CacheTTL); err != nil {
			logger.GetDefault().Debug("failed to cache seat map", "concert_id", concertID, "error", err)
		}
	}

	return rows, nil
}

func (s *service) GetSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef) ([]Seat, error) {
	return s.repo.GetSeats(ctx, concertID, refs)
}

func (s *service) ClaimSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef, holdID uuid.UUID) error {
	if err := s.repo.ClaimSeats(ctx, concertID, refs, holdID); err != nil {
		return err
	}
	s.invalidateSeatMap(ctx, concertID)
	return nil
}

func (s *service) ReleaseSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef, holdID uuid.UUID) error {
	if err := s.repo.ReleaseSeats(ctx, concertID, refs, holdID); err != nil {
		return err
	}
	s.invalidateSeatMap(ctx, concertID)
	return nil
}

func (s *service) CommitSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef, holdID uuid.UUID) error {
	if err := s.repo.CommitSeats(ctx, concertID, refs, holdID); err != nil {
		return err
	}
	s.invalidateSeatMap(ctx, concertID)
	return nil
}

func (s *service) CancelSeats(ctx context.Context, concertID uuid.UUID, refs []SeatRef) error {
	if err := s.repo.CancelSeats(ctx, concertID, refs); err != nil {
		return err
	}
	s.invalidateSeatMap(ctx, concertID)
	return nil
}

func (s *service) invalidateSeatMap(ctx context.Context, concertID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, cache.SeatMapKey(concertID.String())); err != nil {
		logger.GetDefault().Debug("failed to invalidate seat map cache", "concert_id", concertID.String(), "error", err)
	}
}

// groupByRow folds the ordered seat list into per-row views. Base price is
// uniform within a row, so the row carries it once.
func groupByRow(seats []Seat) []RowView {
	var rows []RowView
	for _, seat := range seats {
		if len(rows) == 0 || rows[len(rows)-1].RowID != seat.RowLabel {
			rows = append(rows, RowView{
				RowID:          seat.RowLabel,
				BasePriceCents: seat.BasePriceCents,
			})
		}
		row := &rows[len(rows)-1]
		row.Seats = append(row.Seats, SeatView{
			SeatNo: seat.SeatNumber,
			Status: seat.Status,
		})
	}
	return rows
}
