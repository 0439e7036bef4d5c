package ledger

import (
	"context"
	"fmt"
	"time"

	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	// Record writes one PENDING refund entry. Zero-amount cancellations
	// still get an entry so the audit trail is complete.
	Record(ctx context.Context, cancellationID, bookingID, userID uuid.UUID, amountCents int64) (*RefundEntry, error)

	// ListUserRefunds returns every refund entry for the user; ListPending
	// narrows to unsettled obligations, the list the user presents at the
	// redemption point.
	ListUserRefunds(ctx context.Context, userID uuid.UUID) ([]RefundEntry, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]RefundEntry, error)

	// Settle marks a PENDING entry SETTLED. Idempotent: settling a settled
	// entry is a no-op.
	Settle(ctx context.Context, entryID string) (*RefundEntry, error)
}

type service struct {
	repo     Repository
	producer RefundProducer
}

// NewService wires the ledger. producer may be nil when Kafka is disabled;
// entries are still persisted and only the feed is skipped.
func NewService(repo Repository, producer RefundProducer) Service {
	return &service{repo: repo, producer: producer}
}

func (s *service) Record(ctx context.Context, cancellationID, bookingID, userID uuid.UUID, amountCents int64) (*RefundEntry, error) {
	entry := &RefundEntry{
		ID:             uuid.New(),
		CancellationID: cancellationID,
		BookingID:      bookingID,
		UserID:         userID,
		AmountCents:    amountCents,
		Status:         RefundPending,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record refund entry: %w", err)
	}

	if s.producer != nil {
		// The entry is already durable; a publish failure is an operational
		// problem, not a reason to fail the cancellation.
		if err := s.producer.PublishRefund(ctx, entry); err != nil {
			logger.GetDefault().Error("failed to publish refund obligation",
				"entry_id", entry.ID.String(), "error", err)
		}
	}

	return entry, nil
}

func (s *service) ListUserRefunds(ctx context.Context, userID uuid.UUID) ([]RefundEntry, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list refund entries: %w", err)
	}
	return entries, nil
}

func (s *service) ListPending(ctx context.Context, userID uuid.UUID) ([]RefundEntry, error) {
	entries, err := s.repo.ListPendingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending refund entries: %w", err)
	}
	return entries, nil
}

func (s *service) Settle(ctx context.Context, entryID string) (*RefundEntry, error) {
	id, err := uuid.Parse(entryID)
	if err != nil {
		return nil, ErrEntryNotFound
	}

	if _, err := s.repo.SettleIf(ctx, id, time.Now()); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
