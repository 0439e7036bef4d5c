package holds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boxoffice/internal/inventory"
	"boxoffice/internal/shared/config"
	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

// ErrTooManySeats is returned when a hold request exceeds the configured cap.
var ErrTooManySeats = errors.New("too many seats in one hold")

// SeatService is the slice of the inventory service holds depend on.
// Declared here to avoid coupling holds to the full inventory surface.
type SeatService interface {
	GetConcert(ctx context.Context, concertID uuid.UUID) (*inventory.Concert, error)
	ClaimSeats(ctx context.Context, concertID uuid.UUID, refs []inventory.SeatRef, holdID uuid.UUID) error
	ReleaseSeats(ctx context.Context, concertID uuid.UUID, refs []inventory.SeatRef, holdID uuid.UUID) error
	CommitSeats(ctx context.Context, concertID uuid.UUID, refs []inventory.SeatRef, holdID uuid.UUID) error
}

type Service interface {
	CreateHold(ctx context.Context, userID uuid.UUID, req CreateHoldRequest) (*HoldView, error)
	GetHold(ctx context.Context, holdID string, userID uuid.UUID) (*HoldView, error)
	CancelHold(ctx context.Context, holdID string, userID uuid.UUID) error
	ListUserHolds(ctx context.Context, userID uuid.UUID) ([]HoldView, error)

	// ConfirmHold finalizes an ACTIVE hold and commits its seats. Used by
	// the booking flow; returns the confirmed hold with seats loaded.
	ConfirmHold(ctx context.Context, holdID, userID uuid.UUID) (*Hold, error)

	// GetConfirmed loads a hold that already reached CONFIRMED, with seats.
	// The booking flow uses it to rebuild a booking whose insert failed
	// after the confirm went through.
	GetConfirmed(ctx context.Context, holdID, userID uuid.UUID) (*Hold, error)

	// ExpireLapsed sweeps ACTIVE holds whose TTL ran out, releasing their
	// seats. Returns how many holds this call expired.
	ExpireLapsed(ctx context.Context) (int, error)
}

type service struct {
	repo        Repository
	seatService SeatService
	gate        Gate
	config      *config.Config
	now         func() time.Time
}

func NewService(repo Repository, seatService SeatService, gate Gate, cfg *config.Config) Service {
	return &service{
		repo:        repo,
		seatService: seatService,
		gate:        gate,
		config:      cfg,
		now:         time.Now,
	}
}

func (s *service) CreateHold(ctx context.Context, userID uuid.UUID, req CreateHoldRequest) (*HoldView, error) {
	concertID, err := uuid.Parse(req.ConcertID)
	if err != nil {
		return nil, fmt.Errorf("invalid concert ID: %w", err)
	}

	refs := inventory.Dedupe(req.Seats)
	if len(refs) == 0 {
		return nil, ErrEmptySelection
	}
	if len(refs) > s.config.Holds.MaxSeatsPerHold {
		return nil, ErrTooManySeats
	}

	if _, err := s.seatService.GetConcert(ctx, concertID); err != nil {
		return nil, err
	}

	holdID := uuid.New()
	ttl := s.config.Holds.TTL

	// Fast path: reject claims that another instance has already marked,
	// before taking any row locks. Gate failures are non-fatal; the database
	// claim below decides for real.
	if s.gate != nil {
		taken, err := s.gate.TryMark(ctx, concertID, refs, holdID, ttl)
		if err != nil {
			logger.GetDefault().Warn("hold gate unavailable, falling through to database", "error", err)
		} else if len(taken) > 0 {
			return nil, &inventory.ConflictError{ContendedSeats: taken}
		}
	}

	if err := s.seatService.ClaimSeats(ctx, concertID, refs, holdID); err != nil {
		s.clearGate(ctx, concertID, refs, holdID)
		return nil, err
	}

	hold := &Hold{
		ID:        holdID,
		ConcertID: concertID,
		UserID:    userID,
		State:     HoldActive,
		ExpiresAt: s.now().Add(ttl),
	}
	for _, ref := range refs {
		hold.Seats = append(hold.Seats, HoldSeat{HoldID: holdID, RowLabel: ref.Row, SeatNumber: ref.SeatNo})
	}

	if err := s.repo.CreateHold(ctx, hold); err != nil {
		// Roll the claim back so the seats don't sit HELD under a hold that
		// was never recorded.
		if relErr := s.seatService.ReleaseSeats(ctx, concertID, refs, holdID); relErr != nil {
			logger.GetDefault().Error("failed to release seats after hold create failure",
				"hold_id", holdID.String(), "error", relErr)
		}
		s.clearGate(ctx, concertID, refs, holdID)
		return nil, fmt.Errorf("failed to create hold: %w", err)
	}

	logger.GetDefault().LogHoldCreated(ctx, holdID.String(), concertID.String(), userID.String(), len(refs), hold.ExpiresAt)
	return s.toView(hold), nil
}

func (s *service) GetHold(ctx context.Context, holdID string, userID uuid.UUID) (*HoldView, error) {
	id, err := uuid.Parse(holdID)
	if err != nil {
		return nil, ErrHoldNotFound
	}

	hold, err := s.repo.GetHold(ctx, id)
	if err != nil {
		return nil, err
	}
	if hold.UserID != userID {
		return nil, ErrNotOwner
	}

	// Lazy expiry: a lapsed hold reads EXPIRED even if the sweep hasn't
	// reached it yet.
	if hold.IsActive() && hold.LapsedAt(s.now()) {
		if err := s.expireHold(ctx, hold); err != nil {
			return nil, err
		}
	}

	return s.toView(hold), nil
}

func (s *service) CancelHold(ctx context.Context, holdID string, userID uuid.UUID) error {
	id, err := uuid.Parse(holdID)
	if err != nil {
		return ErrHoldNotFound
	}

	hold, err := s.repo.GetHold(ctx, id)
	if err != nil {
		return err
	}
	if hold.UserID != userID {
		return ErrNotOwner
	}

	switch hold.State {
	case HoldCancelled, HoldExpired:
		// Cancelling a hold that is already gone is a no-op.
		return nil
	case HoldConfirmed:
		return ErrAlreadyConfirmed
	}

	swapped, err := s.repo.UpdateStateIf(ctx, hold.ID, HoldActive, HoldCancelled)
	if err != nil {
		return err
	}
	if !swapped {
		// Someone else moved the hold out of ACTIVE between our read and the
		// swap. Re-read to decide whether that outcome is a conflict.
		current, err := s.repo.GetHold(ctx, hold.ID)
		if err != nil {
			return err
		}
		if current.State == HoldConfirmed {
			return ErrAlreadyConfirmed
		}
		return nil
	}

	if err := s.seatService.ReleaseSeats(ctx, hold.ConcertID, hold.SeatRefs(), hold.ID); err != nil {
		// Reopen the hold so a retried cancel, or the sweep once the TTL runs
		// out, picks the release back up. The seat guard (status=HELD AND
		// hold_id) keeps the retry idempotent.
		if _, revertErr := s.repo.UpdateStateIf(ctx, hold.ID, HoldCancelled, HoldActive); revertErr != nil {
			logger.GetDefault().Error("failed to reopen hold after release failure",
				"hold_id", hold.ID.String(), "error", revertErr)
		}
		return fmt.Errorf("failed to release seats: %w", err)
	}
	s.clearGate(ctx, hold.ConcertID, hold.SeatRefs(), hold.ID)
	return nil
}

func (s *service) ListUserHolds(ctx context.Context, userID uuid.UUID) ([]HoldView, error) {
	held, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holds: %w", err)
	}

	now := s.now()
	views := make([]HoldView, 0, len(held))
	for i := range held {
		hold := &held[i]
		if hold.IsActive() && hold.LapsedAt(now) {
			if err := s.expireHold(ctx, hold); err != nil {
				return nil, err
			}
		}
		views = append(views, *s.toView(hold))
	}
	return views, nil
}

// ConfirmHold flips the hold to CONFIRMED before committing any seats. The
// state swap is the linearization point against the expiry sweep: whichever
// of confirm and sweep wins the swap owns the seats' fate, and the loser
// backs off without touching them.
func (s *service) ConfirmHold(ctx context.Context, holdID, userID uuid.UUID) (*Hold, error) {
	hold, err := s.repo.GetHold(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if hold.UserID != userID {
		return nil, ErrNotOwner
	}

	switch hold.State {
	case HoldConfirmed:
		return nil, ErrAlreadyConfirmed
	case HoldExpired, HoldCancelled:
		return nil, ErrHoldExpired
	}

	if hold.LapsedAt(s.now()) {
		if err := s.expireHold(ctx, hold); err != nil {
			return nil, err
		}
		return nil, ErrHoldExpired
	}

	swapped, err := s.repo.UpdateStateIf(ctx, hold.ID, HoldActive, HoldConfirmed)
	if err != nil {
		return nil, err
	}
	if !swapped {
		current, err := s.repo.GetHold(ctx, hold.ID)
		if err != nil {
			return nil, err
		}
		if current.State == HoldConfirmed {
			return nil, ErrAlreadyConfirmed
		}
		return nil, ErrHoldExpired
	}

	if err := s.seatService.CommitSeats(ctx, hold.ConcertID, hold.SeatRefs(), hold.ID); err != nil {
		return nil, fmt.Errorf("failed to commit seats: %w", err)
	}
	s.clearGate(ctx, hold.ConcertID, hold.SeatRefs(), hold.ID)

	hold.State = HoldConfirmed
	return hold, nil
}

func (s *service) GetConfirmed(ctx context.Context, holdID, userID uuid.UUID) (*Hold, error) {
	hold, err := s.repo.GetHold(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if hold.UserID != userID {
		return nil, ErrNotOwner
	}
	if hold.State != HoldConfirmed {
		return nil, ErrHoldExpired
	}
	return hold, nil
}

func (s *service) ExpireLapsed(ctx context.Context) (int, error) {
	lapsed, err := s.repo.ListExpiredActive(ctx, s.now(), 100)
	if err != nil {
		return 0, fmt.Errorf("failed to list lapsed holds: %w", err)
	}

	expired := 0
	for i := range lapsed {
		hold := &lapsed[i]
		if err := s.expireHold(ctx, hold); err != nil {
			logger.GetDefault().Error("failed to expire hold", "hold_id", hold.ID.String(), "error", err)
			continue
		}
		if hold.State == HoldExpired {
			expired++
		}
	}
	return expired, nil
}

// expireHold moves an ACTIVE hold to EXPIRED and releases its seats. The
// compare-and-set gates the release: only the caller that wins the swap
// releases, so a hold's seats are released at most once no matter how many
// sweepers and lazy reads race over it. On return the hold carries the state
// it actually ended in.
func (s *service) expireHold(ctx context.Context, hold *Hold) error {
	swapped, err := s.repo.UpdateStateIf(ctx, hold.ID, HoldActive, HoldExpired)
	if err != nil {
		return err
	}
	if !swapped {
		current, err := s.repo.GetHold(ctx, hold.ID)
		if err != nil {
			return err
		}
		hold.State = current.State
		return nil
	}
	hold.State = HoldExpired

	if err := s.seatService.ReleaseSeats(ctx, hold.ConcertID, hold.SeatRefs(), hold.ID); err != nil {
		// Reopen the hold so the next sweep retries the release; a terminal
		// hold would never be scanned again and its seats would stay HELD
		// forever. The seat guard (status=HELD AND hold_id) keeps the retry
		// idempotent, and a lapsed ACTIVE hold can only be re-expired, never
		// confirmed.
		if reverted, revertErr := s.repo.UpdateStateIf(ctx, hold.ID, HoldExpired, HoldActive); revertErr != nil {
			logger.GetDefault().Error("failed to reopen hold after release failure",
				"hold_id", hold.ID.String(), "error", revertErr)
		} else if reverted {
			hold.State = HoldActive
		}
		return fmt.Errorf("failed to release seats: %w", err)
	}
	s.clearGate(ctx, hold.ConcertID, hold.SeatRefs(), hold.ID)

	logger.GetDefault().LogHoldExpired(ctx, hold.ID.String(), len(hold.Seats))
	return nil
}

func (s *service) clearGate(ctx context.Context, concertID uuid.UUID, refs []inventory.SeatRef, holdID uuid.UUID) {
	if s.gate == nil {
		return
	}
	if err := s.gate.Clear(ctx, concertID, refs, holdID); err != nil {
		logger.GetDefault().Warn("failed to clear hold gate marks", "hold_id", holdID.String(), "error", err)
	}
}

func (s *service) toView(hold *Hold) *HoldView {
	view := &HoldView{
		ID:        hold.ID.String(),
		ConcertID: hold.ConcertID.String(),
		State:     hold.State,
		ExpiresAt: hold.ExpiresAt,
		CreatedAt: hold.CreatedAt,
	}
	for _, seat := range hold.Seats {
		view.Seats = append(view.Seats, inventory.SeatRef{Row: seat.RowLabel, SeatNo: seat.SeatNumber}.String())
	}
	if hold.IsActive() {
		if remaining := hold.ExpiresAt.Sub(s.now()); remaining > 0 {
			view.TTLSeconds = int(remaining.Seconds())
		}
	}
	return view
}
