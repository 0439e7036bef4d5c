package holds

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"boxoffice/internal/inventory"
	"boxoffice/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHoldRepo keeps holds in memory with the same CAS semantics as the
// Postgres repository.
type fakeHoldRepo struct {
	mu    sync.Mutex
	holds map[uuid.UUID]*Hold
}

func newFakeHoldRepo() *fakeHoldRepo {
	return &fakeHoldRepo{holds: make(map[uuid.UUID]*Hold)}
}

func (r *fakeHoldRepo) CreateHold(_ context.Context, hold *Hold) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *hold
	stored.Seats = append([]HoldSeat(nil), hold.Seats...)
	r.holds[hold.ID] = &stored
	return nil
}

func (r *fakeHoldRepo) GetHold(_ context.Context, id uuid.UUID) (*Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.holds[id]
	if !ok {
		return nil, ErrHoldNotFound
	}
	copied := *stored
	copied.Seats = append([]HoldSeat(nil), stored.Seats...)
	return &copied, nil
}

func (r *fakeHoldRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Hold
	for _, hold := range r.holds {
		if hold.UserID == userID {
			copied := *hold
			copied.Seats = append([]HoldSeat(nil), hold.Seats...)
			out = append(out, copied)
		}
	}
	return out, nil
}

func (r *fakeHoldRepo) UpdateStateIf(_ context.Context, id uuid.UUID, fromState, toState string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.holds[id]
	if !ok || stored.State != fromState {
		return false, nil
	}
	stored.State = toState
	return true, nil
}

func (r *fakeHoldRepo) ListExpiredActive(_ context.Context, cutoff time.Time, limit int) ([]Hold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Hold
	for _, hold := range r.holds {
		if hold.State == HoldActive && !hold.ExpiresAt.After(cutoff) && len(out) < limit {
			copied := *hold
			copied.Seats = append([]HoldSeat(nil), hold.Seats...)
			out = append(out, copied)
		}
	}
	return out, nil
}

// fakeSeatService mirrors the inventory contract: claims and commits are
// all-or-nothing, releases only touch seats owned by the releasing hold.
type fakeSeatService struct {
	mu           sync.Mutex
	concert      *inventory.Concert
	held         map[inventory.SeatRef]uuid.UUID
	confirmed    map[inventory.SeatRef]uuid.UUID
	releases     int
	failReleases int
}

func newFakeSeatService() *fakeSeatService {
	return &fakeSeatService{
		concert: &inventory.Concert{
			ID:        uuid.New(),
			Title:     "Test Concert",
			EventDate: time.Now().AddDate(0, 0, 30),
		},
		held:      make(map[inventory.SeatRef]uuid.UUID),
		confirmed: make(map[inventory.SeatRef]uuid.UUID),
	}
}

func (f *fakeSeatService) GetConcert(_ context.Context, concertID uuid.UUID) (*inventory.Concert, error) {
	if concertID != f.concert.ID {
		return nil, inventory.ErrConcertNotFound
	}
	return f.concert, nil
}

func (f *fakeSeatService) ClaimSeats(_ context.Context, _ uuid.UUID, refs []inventory.SeatRef, holdID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var contended []inventory.SeatRef
	for _, ref := range refs {
		if _, taken := f.held[ref]; taken {
			contended = append(contended, ref)
		} else if _, sold := f.confirmed[ref]; sold {
			contended = append(contended, ref)
		}
	}
	if len(contended) > 0 {
		return &inventory.ConflictError{ContendedSeats: contended}
	}
	for _, ref := range refs {
		f.held[ref] = holdID
	}
	return nil
}

func (f *fakeSeatService) ReleaseSeats(_ context.Context, _ uuid.UUID, refs []inventory.SeatRef, holdID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReleases > 0 {
		f.failReleases--
		return errors.New("connection reset")
	}
	for _, ref := range refs {
		if owner, ok := f.held[ref]; ok && owner == holdID {
			delete(f.held, ref)
			f.releases++
		}
	}
	return nil
}

func (f *fakeSeatService) CommitSeats(_ context.Context, _ uuid.UUID, refs []inventory.SeatRef, holdID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ref := range refs {
		if owner, ok := f.held[ref]; !ok || owner != holdID {
			return &inventory.ConflictError{ContendedSeats: []inventory.SeatRef{ref}}
		}
	}
	for _, ref := range refs {
		delete(f.held, ref)
		f.confirmed[ref] = holdID
	}
	return nil
}

func (f *fakeSeatService) heldCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.held)
}

type holdFixture struct {
	service *service
	repo    *fakeHoldRepo
	seats   *fakeSeatService
	userID  uuid.UUID
	clock   time.Time
}

func newHoldFixture(t *testing.T) *holdFixture {
	t.Helper()
	cfg := &config.Config{
		Holds: config.HoldConfig{
			TTL:             300 * time.Second,
			SweepInterval:   5 * time.Second,
			MaxSeatsPerHold: 10,
		},
	}
	repo := newFakeHoldRepo()
	seats := newFakeSeatService()

	fx := &holdFixture{
		repo:   repo,
		seats:  seats,
		userID: uuid.New(),
		clock:  time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	svc := NewService(repo, seats, nil, cfg).(*service)
	svc.now = func() time.Time { return fx.clock }
	fx.service = svc
	return fx
}

func (fx *holdFixture) advance(d time.Duration) {
	fx.clock = fx.clock.Add(d)
}

func (fx *holdFixture) createHold(t *testing.T, refs ...inventory.SeatRef) *HoldView {
	t.Helper()
	if len(refs) == 0 {
		refs = []inventory.SeatRef{{Row: "A", SeatNo: 1}, {Row: "A", SeatNo: 2}}
	}
	view, err := fx.service.CreateHold(context.Background(), fx.userID, CreateHoldRequest{
		ConcertID: fx.seats.concert.ID.String(),
		Seats:     refs,
	})
	require.NoError(t, err)
	return view
}

func TestCreateHold(t *testing.T) {
	fx := newHoldFixture(t)

	view := fx.createHold(t)

	assert.Equal(t, HoldActive, view.State)
	assert.Equal(t, []string{"A-1", "A-2"}, view.Seats)
	assert.Equal(t, 300, view.TTLSeconds)
	assert.Equal(t, 2, fx.seats.heldCount())
}

func TestCreateHoldDeduplicatesSeats(t *testing.T) {
	fx := newHoldFixture(t)

	view := fx.createHold(t,
		inventory.SeatRef{Row: "B", SeatNo: 3},
		inventory.SeatRef{Row: "B", SeatNo: 3},
		inventory.SeatRef{Row: "B", SeatNo: 4},
	)

	assert.Equal(t, []string{"B-3", "B-4"}, view.Seats)
	assert.Equal(t, 2, fx.seats.heldCount())
}

func TestCreateHoldConflictNamesContendedSeats(t *testing.T) {
	fx := newHoldFixture(t)
	fx.createHold(t, inventory.SeatRef{Row: "A", SeatNo: 1})

	otherUser := uuid.New()
	_, err := fx.service.CreateHold(context.Background(), otherUser, CreateHoldRequest{
		ConcertID: fx.seats.concert.ID.String(),
		Seats: []inventory.SeatRef{
			{Row: "A", SeatNo: 1},
			{Row: "A", SeatNo: 2},
		},
	})

	conflict, ok := inventory.AsConflict(err)
	require.True(t, ok, "expected a conflict error, got %v", err)
	assert.Equal(t, []inventory.SeatRef{{Row: "A", SeatNo: 1}}, conflict.ContendedSeats)

	// The losing request must not keep any seats.
	assert.Equal(t, 1, fx.seats.heldCount())
}

func TestCreateHoldValidation(t *testing.T) {
	fx := newHoldFixture(t)

	_, err := fx.service.CreateHold(context.Background(), fx.userID, CreateHoldRequest{
		ConcertID: fx.seats.concert.ID.String(),
		Seats:     nil,
	})
	assert.ErrorIs(t, err, ErrEmptySelection)

	var tooMany []inventory.SeatRef
	for i := 1; i <= 11; i++ {
		tooMany = append(tooMany, inventory.SeatRef{Row: "A", SeatNo: i})
	}
	_, err = fx.service.CreateHold(context.Background(), fx.userID, CreateHoldRequest{
		ConcertID: fx.seats.concert.ID.String(),
		Seats:     tooMany,
	})
	assert.ErrorIs(t, err, ErrTooManySeats)

	_, err = fx.service.CreateHold(context.Background(), fx.userID, CreateHoldRequest{
		ConcertID: uuid.New().String(),
		Seats:     []inventory.SeatRef{{Row: "A", SeatNo: 1}},
	})
	assert.ErrorIs(t, err, inventory.ErrConcertNotFound)
}

func TestGetHoldLazyExpiry(t *testing.T) {
	fx := newHoldFixture(t)
	view := fx.createHold(t)

	fx.advance(301 * time.Second)

	got, err := fx.service.GetHold(context.Background(), view.ID, fx.userID)
	require.NoError(t, err)
	assert.Equal(t, HoldExpired, got.State)
	assert.Zero(t, got.TTLSeconds)
	assert.Equal(t, 0, fx.seats.heldCount(), "expired hold must release its seats")
}

func TestGetHoldOwnership(t *testing.T) {
	fx := newHoldFixture(t)
	view := fx.createHold(t)

	_, err := fx.service.GetHold(context.Background(), view.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = fx.service.GetHold(context.Background(), uuid.New().String(), fx.userID)
	assert.ErrorIs(t, err, ErrHoldNotFound)
}

func TestConfirmHold(t *testing.T) {
	fx := newHoldFixture(t)
	view := fx.createHold(t)
	holdID := uuid.MustParse(view.ID)

	hold, err := fx.service.ConfirmHold(context.Background(), holdID, fx.userID)
	require.NoError(t, err)
	assert.Equal(t, HoldConfirmed, hold.State)
	assert.Len(t, fx.seats.confirmed, 2)
	assert.Equal(t, 0, fx.seats.heldCount())

	// A second confirm reports the earlier success instead of repeating it.
	_, err = fx.service.ConfirmHold(context.Background(), holdID, fx.userID)
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestConfirmHoldAfterTTL(t *testing.T) {
	fx := newHoldFixture(t)
	view := fx.createHold(t)
	holdID := uuid.MustParse(view.ID)

	fx.advance(301 * time.Second)

	_, err := fx.service.ConfirmHold(context.Background(), holdID, fx.userID)
	assert.ErrorIs(t, err, ErrHoldExpired)
	assert.Empty(t, fx.seats.confirmed)
	assert.Equal(t, 0, fx.seats.heldCount())
}

func TestConfirmHoldWrongUser(t *testing.T) {
	fx := newHoldFixture(t)
	view := fx.createHold(t)

	_, err := fx.service.ConfirmHold(context.Background(), uuid.MustParse(view.ID), uuid.New())
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestCancelHold(t *testing.T) {
	fx := newHoldFixture(t)
	view := fx.createHold(t)

	require.NoError(t, fx.service.CancelHold(context.Background(), view.ID, fx.userID))
	assert.Equal(t, 0, fx.seats.heldCount())

	// Cancelling again is a no-op, not an error.
	assert.NoError(t, fx.service.CancelHold(context.Background(), view.ID, fx.userID))

	// The freed seats can be claimed by someone else.
	_, err := fx.service.CreateHold(context.Background(), uuid.New(), CreateHoldRequest{
		ConcertID: fx.seats.concert.ID.String(),
		Seats:     []inventory.SeatRef{{Row: "A", SeatNo: 1}},
	})
	assert.NoError(t, err)
}

func TestCancelHoldAfterConfirm(t *testing.T) {
	fx := newHoldFixture(t)
	view := fx.createHold(t)

	_, err := fx.service.ConfirmHold(context.Background(), uuid.MustParse(view.ID), fx.userID)
	require.NoError(t, err)

	err = fx.service.CancelHold(context.Background(), view.ID, fx.userID)
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
	assert.Len(t, fx.seats.confirmed, 2, "cancel after confirm must not touch seats")
}

func TestExpireLapsedReleasesExactlyOnce(t *testing.T) {
	fx := newHoldFixture(t)
	fx.createHold(t, inventory.SeatRef{Row: "A", SeatNo: 1})
	fx.createHold(t, inventory.SeatRef{Row: "A", SeatNo: 2})

	fx.advance(301 * time.Second)

	expired, err := fx.service.ExpireLapsed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, expired)
	assert.Equal(t, 0, fx.seats.heldCount())
	assert.Equal(t, 2, fx.seats.releases)

	// Running the sweep again finds nothing left to do.
	expired, err = fx.service.ExpireLapsed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.Equal(t, 2, fx.seats.releases, "seats must not be released twice")
}

func TestExpireLapsedRetriesAfterReleaseFailure(t *testing.T) {
	fx := newHoldFixture(t)
	view := fx.createHold(t, inventory.SeatRef{Row: "A", SeatNo: 1})

	fx.advance(301 * time.Second)

	// The release fails after the hold already flipped to EXPIRED. The hold
	// must reopen so the next sweep retries, instead of leaving the seat
	// stuck HELD under a terminal hold.
	fx.seats.failReleases = 1
	expired, err := fx.service.ExpireLapsed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.Equal(t, 1, fx.seats.heldCount())

	stored, err := fx.repo.GetHold(context.Background(), uuid.MustParse(view.ID))
	require.NoError(t, err)
	assert.Equal(t, HoldActive, stored.State, "failed expiry must stay visible to the sweep")

	expired, err = fx.service.ExpireLapsed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, 0, fx.seats.heldCount())
}

func TestCancelHoldRetriesAfterReleaseFailure(t *testing.T) {
	fx := newHoldFixture(t)
	view := fx.createHold(t, inventory.SeatRef{Row: "A", SeatNo: 1})

	fx.seats.failReleases = 1
	err := fx.service.CancelHold(context.Background(), view.ID, fx.userID)
	require.Error(t, err)
	assert.Equal(t, 1, fx.seats.heldCount())

	// The failed cancel reopened the hold, so a retry completes the release.
	require.NoError(t, fx.service.CancelHold(context.Background(), view.ID, fx.userID))
	assert.Equal(t, 0, fx.seats.heldCount())
}

func TestExpireLapsedSkipsLiveHolds(t *testing.T) {
	fx := newHoldFixture(t)
	fx.createHold(t, inventory.SeatRef{Row: "A", SeatNo: 1})
	fx.advance(200 * time.Second)
	fx.createHold(t, inventory.SeatRef{Row: "A", SeatNo: 2})

	fx.advance(101 * time.Second)

	expired, err := fx.service.ExpireLapsed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, 1, fx.seats.heldCount(), "unexpired hold keeps its seat")
}
