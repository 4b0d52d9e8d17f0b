package adjustment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-hr/tempora/internal/timeclock"
)

// RequestStore abstracts request persistence for the service.
type RequestStore interface {
	CreateRequest(ctx context.Context, in SubmitInput, kind timeclock.PunchKind) (Request, error)
	GetRequest(ctx context.Context, id uuid.UUID) (Request, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Request, error)
	ListPending(ctx context.Context, excludeUserID uuid.UUID) ([]Request, error)
	DecideRequest(ctx context.Context, id uuid.UUID, status Status, reviewerID uuid.UUID, decidedAt time.Time, note string) (bool, error)
}

// PunchStore is the slice of the punch log the workflow touches.
type PunchStore interface {
	GetPunch(ctx context.Context, id uuid.UUID) (timeclock.Punch, error)
	UpdateInstant(ctx context.Context, id uuid.UUID, instant time.Time) (bool, error)
}

// Authorizer resolves the management relationship between reviewer and
// requester.
type Authorizer interface {
	IsManagerOf(ctx context.Context, reviewerID, requesterID uuid.UUID) (bool, error)
}

// Enqueuer schedules a balance recomputation after a decision. The
// decision itself never recomputes synchronously; a balance read
// before the task runs can be stale relative to the correction.
type Enqueuer interface {
	EnqueueBalanceRecompute(ctx context.Context, userID uuid.UUID, month time.Time) error
}

// Service governs the adjustment request state machine.
type Service struct {
	store   RequestStore
	punches PunchStore
	authz   Authorizer
	queue   Enqueuer
	logger  *slog.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewService constructs a Service instance. The location defines the
// month boundary for recompute scheduling, matching the accounting
// engine's local day.
func NewService(store RequestStore, punches PunchStore, authz Authorizer, logger *slog.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:   store,
		punches: punches,
		authz:   authz,
		logger:  logger,
		loc:     loc,
		now:     time.Now,
	}
}

// WithQueue attaches a best-effort recompute enqueuer.
func (s *Service) WithQueue(queue Enqueuer) {
	s.queue = queue
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Submit creates a pending request to move one of the user's own
// punches to a new instant. The punch kind is copied from the target.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Request, error) {
	if err := in.Validate(); err != nil {
		return Request{}, err
	}
	punch, err := s.punches.GetPunch(ctx, in.PunchID)
	if err != nil {
		if errors.Is(err, timeclock.ErrNotFound) {
			return Request{}, ErrNotFound
		}
		return Request{}, err
	}
	if punch.UserID != in.UserID {
		return Request{}, ErrNotOwner
	}
	in.Reason = strings.TrimSpace(in.Reason)
	return s.store.CreateRequest(ctx, in, punch.Kind)
}

// ListMine returns the user's own requests.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]Request, error) {
	return s.store.ListByUser(ctx, userID)
}

// ListPendingForReviewer returns the pending requests awaiting a
// reviewer, excluding the reviewer's own.
func (s *Service) ListPendingForReviewer(ctx context.Context, reviewerID uuid.UUID) ([]Request, error) {
	return s.store.ListPending(ctx, reviewerID)
}

// Decide transitions a pending request to approved or rejected. On
// approval the target punch's instant is rewritten with the proposed
// instant, but only when the punch still exists; a vanished target is
// a silent no-op on the mutation, not a failure. Rejection requires a
// non-empty reviewer note. The pending check is a conditional update
// in the store, so a concurrent second decision observes ErrNotPending.
func (s *Service) Decide(ctx context.Context, in DecideInput) (Request, error) {
	if !in.Approve && strings.TrimSpace(in.Note) == "" {
		return Request{}, ErrReasonInvalid("rejection requires a reviewer justification")
	}

	req, err := s.store.GetRequest(ctx, in.RequestID)
	if err != nil {
		return Request{}, err
	}

	allowed, err := s.authz.IsManagerOf(ctx, in.ReviewerID, req.UserID)
	if err != nil {
		return Request{}, err
	}
	if !allowed {
		return Request{}, ErrNotAuthorized
	}

	if req.Status != StatusPending {
		return Request{}, ErrNotPending
	}

	status := StatusRejected
	if in.Approve {
		status = StatusApproved
	}
	decidedAt := s.now()
	note := strings.TrimSpace(in.Note)

	transitioned, err := s.store.DecideRequest(ctx, req.ID, status, in.ReviewerID, decidedAt, note)
	if err != nil {
		return Request{}, err
	}
	if !transitioned {
		// Lost the race against another decision.
		return Request{}, ErrNotPending
	}

	req.Status = status
	req.ReviewerID = &in.ReviewerID
	req.DecidedAt = &decidedAt
	req.ReviewerNote = note

	if in.Approve && req.PunchID != nil {
		s.applyApproval(ctx, req)
	}
	return req, nil
}

func (s *Service) applyApproval(ctx context.Context, req Request) {
	var months []time.Time
	if punch, err := s.punches.GetPunch(ctx, *req.PunchID); err == nil {
		months = append(months, punch.Instant)
	}

	mutated, err := s.punches.UpdateInstant(ctx, *req.PunchID, req.ProposedInstant)
	if err != nil {
		s.logger.Error("apply approved adjustment", slog.Any("error", err), slog.String("request_id", req.ID.String()))
		return
	}
	if !mutated {
		// Target punch no longer exists; the approval stands but
		// nothing is rewritten.
		s.logger.Warn("approved adjustment target punch missing",
			slog.String("request_id", req.ID.String()),
			slog.String("punch_id", req.PunchID.String()))
		return
	}

	months = append(months, req.ProposedInstant)
	s.enqueueRecomputes(ctx, req.UserID, months)
}

func (s *Service) enqueueRecomputes(ctx context.Context, userID uuid.UUID, instants []time.Time) {
	if s.queue == nil {
		return
	}
	seen := make(map[string]struct{}, len(instants))
	for _, instant := range instants {
		local := instant.In(s.loc)
		month := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, s.loc)
		key := month.Format("2006-01")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if err := s.queue.EnqueueBalanceRecompute(ctx, userID, month); err != nil {
			s.logger.Warn("enqueue balance recompute", slog.Any("error", err), slog.String("month", key))
		}
	}
}
