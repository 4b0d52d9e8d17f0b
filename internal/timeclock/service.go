package timeclock

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PunchStore abstracts punch persistence for the service.
type PunchStore interface {
	CreatePunch(ctx context.Context, in RegisterInput, instant time.Time) (Punch, error)
	GetPunch(ctx context.Context, id uuid.UUID) (Punch, error)
	ListPunches(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Punch, error)
	UpdateInstant(ctx context.Context, id uuid.UUID, instant time.Time) (bool, error)
}

// Service wraps punch registration and day-scoped reads.
type Service struct {
	store PunchStore
	loc   *time.Location
	now   func() time.Time
}

// NewService constructs a Service instance. The location defines the
// local day boundary.
func NewService(store PunchStore, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store: store,
		loc:   loc,
		now:   time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Register appends a punch at the current instant.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Punch, error) {
	if err := in.Validate(); err != nil {
		return Punch{}, err
	}
	return s.store.CreatePunch(ctx, in, s.now().In(s.loc))
}

// TodayPunches returns the user's punches within the current local day.
func (s *Service) TodayPunches(ctx context.Context, userID uuid.UUID) ([]Punch, error) {
	from := s.startOfDay(s.now())
	return s.store.ListPunches(ctx, userID, from, from.AddDate(0, 0, 1))
}

// MonthPunches returns the user's punches within the calendar month.
func (s *Service) MonthPunches(ctx context.Context, userID uuid.UUID, month time.Time) ([]Punch, error) {
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, s.loc)
	return s.store.ListPunches(ctx, userID, from, from.AddDate(0, 1, 0))
}

// NextAction derives the expected next punch kind from today's log: the
// first punch of a day is always an "in", and kinds alternate after
// that.
func (s *Service) NextAction(ctx context.Context, userID uuid.UUID) (PunchKind, error) {
	punches, err := s.TodayPunches(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(punches) == 0 {
		return KindIn, nil
	}
	return punches[len(punches)-1].Kind.Opposite(), nil
}

// ClockedIn reports whether the user's last punch today was an "in".
func (s *Service) ClockedIn(ctx context.Context, userID uuid.UUID) (bool, error) {
	punches, err := s.TodayPunches(ctx, userID)
	if err != nil {
		return false, err
	}
	return len(punches) > 0 && punches[len(punches)-1].Kind == KindIn, nil
}

func (s *Service) startOfDay(t time.Time) time.Time {
	local := t.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}
