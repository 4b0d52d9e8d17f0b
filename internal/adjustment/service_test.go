package adjustment

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tempora-hr/tempora/internal/timeclock"
)

type memoryRequestStore struct {
	requests map[uuid.UUID]Request
}

func newMemoryRequestStore() *memoryRequestStore {
	return &memoryRequestStore{requests: make(map[uuid.UUID]Request)}
}

func (m *memoryRequestStore) CreateRequest(ctx context.Context, in SubmitInput, kind timeclock.PunchKind) (Request, error) {
	punchID := in.PunchID
	req := Request{
		ID:              uuid.New(),
		UserID:          in.UserID,
		PunchID:         &punchID,
		ProposedInstant: in.ProposedInstant,
		Kind:            kind,
		Reason:          in.Reason,
		Status:          StatusPending,
		CreatedAt:       time.Now(),
	}
	m.requests[req.ID] = req
	return req, nil
}

func (m *memoryRequestStore) GetRequest(ctx context.Context, id uuid.UUID) (Request, error) {
	req, ok := m.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (m *memoryRequestStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]Request, error) {
	var result []Request
	for _, req := range m.requests {
		if req.UserID == userID {
			result = append(result, req)
		}
	}
	return result, nil
}

func (m *memoryRequestStore) ListPending(ctx context.Context, excludeUserID uuid.UUID) ([]Request, error) {
	var result []Request
	for _, req := range m.requests {
		if req.Status == StatusPending && req.UserID != excludeUserID {
			result = append(result, req)
		}
	}
	return result, nil
}

func (m *memoryRequestStore) DecideRequest(ctx context.Context, id uuid.UUID, status Status, reviewerID uuid.UUID, decidedAt time.Time, note string) (bool, error) {
	req, ok := m.requests[id]
	if !ok || req.Status != StatusPending {
		return false, nil
	}
	req.Status = status
	req.ReviewerID = &reviewerID
	req.DecidedAt = &decidedAt
	req.ReviewerNote = note
	m.requests[id] = req
	return true, nil
}

type memoryPunchStore struct {
	punches map[uuid.UUID]timeclock.Punch
}

func newMemoryPunchStore() *memoryPunchStore {
	return &memoryPunchStore{punches: make(map[uuid.UUID]timeclock.Punch)}
}

func (m *memoryPunchStore) GetPunch(ctx context.Context, id uuid.UUID) (timeclock.Punch, error) {
	p, ok := m.punches[id]
	if !ok {
		return timeclock.Punch{}, timeclock.ErrNotFound
	}
	return p, nil
}

func (m *memoryPunchStore) UpdateInstant(ctx context.Context, id uuid.UUID, instant time.Time) (bool, error) {
	p, ok := m.punches[id]
	if !ok {
		return false, nil
	}
	p.Instant = instant
	m.punches[id] = p
	return true, nil
}

type stubAuthorizer struct {
	allowed map[uuid.UUID]bool
}

func (a stubAuthorizer) IsManagerOf(ctx context.Context, reviewerID, requesterID uuid.UUID) (bool, error) {
	return a.allowed[reviewerID], nil
}

type recordingQueue struct {
	months []time.Time
}

func (q *recordingQueue) EnqueueBalanceRecompute(ctx context.Context, userID uuid.UUID, month time.Time) error {
	q.months = append(q.months, month)
	return nil
}

type fixture struct {
	service   *Service
	store     *memoryRequestStore
	punches   *memoryPunchStore
	queue     *recordingQueue
	loc       *time.Location
	userID    uuid.UUID
	manager   uuid.UUID
	stranger  uuid.UUID
	punchID   uuid.UUID
	oldPunch  time.Time
	beforeNow time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	f := &fixture{
		store:    newMemoryRequestStore(),
		punches:  newMemoryPunchStore(),
		queue:    &recordingQueue{},
		userID:   uuid.New(),
		manager:  uuid.New(),
		stranger: uuid.New(),
	}
	f.loc = loc
	f.oldPunch = time.Date(2025, time.March, 3, 8, 30, 0, 0, loc)
	f.beforeNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, loc)

	punch := timeclock.Punch{
		ID:      uuid.New(),
		UserID:  f.userID,
		Instant: f.oldPunch,
		Kind:    timeclock.KindIn,
	}
	f.punchID = punch.ID
	f.punches.punches[punch.ID] = punch

	f.service = NewService(f.store, f.punches, stubAuthorizer{allowed: map[uuid.UUID]bool{f.manager: true}}, slog.Default(), loc)
	f.service.WithQueue(f.queue)
	f.service.WithNow(func() time.Time { return f.beforeNow })
	return f
}

func (f *fixture) submit(t *testing.T) Request {
	t.Helper()
	req, err := f.service.Submit(context.Background(), SubmitInput{
		UserID:          f.userID,
		PunchID:         f.punchID,
		ProposedInstant: f.oldPunch.Add(-30 * time.Minute),
		Reason:          "forgot to punch on arrival",
	})
	require.NoError(t, err)
	return req
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)

	req := f.submit(t)
	require.Equal(t, StatusPending, req.Status)
	require.Equal(t, timeclock.KindIn, req.Kind, "kind copies from the target punch")
	require.NotNil(t, req.PunchID)

	mine, err := f.service.ListMine(context.Background(), f.userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Submit(context.Background(), SubmitInput{
		UserID:          f.userID,
		PunchID:         f.punchID,
		ProposedInstant: f.oldPunch.Add(time.Hour),
		Reason:          "   ",
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.service.Submit(context.Background(), SubmitInput{
		UserID:          f.userID,
		PunchID:         uuid.New(),
		ProposedInstant: f.oldPunch.Add(time.Hour),
		Reason:          "wrong punch id",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitRejectsForeignPunch(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Submit(context.Background(), SubmitInput{
		UserID:          f.stranger,
		PunchID:         f.punchID,
		ProposedInstant: f.oldPunch.Add(time.Hour),
		Reason:          "not my punch",
	})
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestDecideApprovalRewritesPunch(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t)

	decided, err := f.service.Decide(context.Background(), DecideInput{
		ReviewerID: f.manager,
		RequestID:  req.ID,
		Approve:    true,
	})
	require.NoError(t, err)
	require.Equal(t, StatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedAt)
	require.Equal(t, f.manager, *decided.ReviewerID)

	punch, err := f.punches.GetPunch(context.Background(), f.punchID)
	require.NoError(t, err)
	require.True(t, punch.Instant.Equal(req.ProposedInstant), "approval rewrites the punch instant")

	require.Len(t, f.queue.months, 1, "old and new instants share a month, one recompute")
}

func TestDecideRejectionLeavesPunchAlone(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t)

	decided, err := f.service.Decide(context.Background(), DecideInput{
		ReviewerID: f.manager,
		RequestID:  req.ID,
		Approve:    false,
		Note:       "no evidence for the claimed arrival",
	})
	require.NoError(t, err)
	require.Equal(t, StatusRejected, decided.Status)

	punch, err := f.punches.GetPunch(context.Background(), f.punchID)
	require.NoError(t, err)
	require.True(t, punch.Instant.Equal(f.oldPunch))
	require.Empty(t, f.queue.months)
}

func TestDecideRejectionRequiresNote(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t)

	_, err := f.service.Decide(context.Background(), DecideInput{
		ReviewerID: f.manager,
		RequestID:  req.ID,
		Approve:    false,
		Note:       "  ",
	})
	require.ErrorIs(t, err, ErrValidation)

	stored, err := f.store.GetRequest(context.Background(), req.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, stored.Status)
}

func TestDecideUnauthorizedReviewer(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t)

	_, err := f.service.Decide(context.Background(), DecideInput{
		ReviewerID: f.stranger,
		RequestID:  req.ID,
		Approve:    true,
	})
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestDecideTwiceFails(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t)

	_, err := f.service.Decide(context.Background(), DecideInput{
		ReviewerID: f.manager,
		RequestID:  req.ID,
		Approve:    true,
	})
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), DecideInput{
		ReviewerID: f.manager,
		RequestID:  req.ID,
		Approve:    false,
		Note:       "changed my mind",
	})
	require.ErrorIs(t, err, ErrNotPending)
}

func TestDecideApprovalWithVanishedPunch(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t)

	// The target punch disappears between submission and decision.
	delete(f.punches.punches, f.punchID)

	decided, err := f.service.Decide(context.Background(), DecideInput{
		ReviewerID: f.manager,
		RequestID:  req.ID,
		Approve:    true,
	})
	require.NoError(t, err, "approval succeeds even when the target is gone")
	require.Equal(t, StatusApproved, decided.Status)
	require.Empty(t, f.queue.months, "nothing mutated, nothing to recompute")
}

func TestDecideEnqueuesBothMonthsOnCrossMonthMove(t *testing.T) {
	f := newFixture(t)

	req, err := f.service.Submit(context.Background(), SubmitInput{
		UserID:          f.userID,
		PunchID:         f.punchID,
		ProposedInstant: f.oldPunch.AddDate(0, -1, 0),
		Reason:          "punched in the wrong month entirely",
	})
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), DecideInput{
		ReviewerID: f.manager,
		RequestID:  req.ID,
		Approve:    true,
	})
	require.NoError(t, err)
	require.Len(t, f.queue.months, 2, "source and destination months both recompute")
}

func TestDecideEnqueueMonthUsesLocalBoundary(t *testing.T) {
	f := newFixture(t)

	// 2025-04-01T01:00Z is still March 31st in America/Sao_Paulo. The
	// recompute month follows the configured local day, not the
	// proposed instant's own offset.
	proposed := time.Date(2025, time.April, 1, 1, 0, 0, 0, time.UTC)
	req, err := f.service.Submit(context.Background(), SubmitInput{
		UserID:          f.userID,
		PunchID:         f.punchID,
		ProposedInstant: proposed,
		Reason:          "left late on the last day of the month",
	})
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), DecideInput{
		ReviewerID: f.manager,
		RequestID:  req.ID,
		Approve:    true,
	})
	require.NoError(t, err)

	require.Len(t, f.queue.months, 1, "old and proposed instants share the local month")
	require.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, f.loc), f.queue.months[0])
}

func TestListPendingExcludesReviewerOwn(t *testing.T) {
	f := newFixture(t)
	f.submit(t)

	pending, err := f.service.ListPendingForReviewer(context.Background(), f.manager)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	pending, err = f.service.ListPendingForReviewer(context.Background(), f.userID)
	require.NoError(t, err)
	require.Empty(t, pending)
}
