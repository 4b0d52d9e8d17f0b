package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-hr/tempora/internal/timeclock"
)

// PunchSource reads the raw punch log.
type PunchSource interface {
	ListPunches(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]timeclock.Punch, error)
}

// PolicySource resolves the expected-minutes policy per employee.
type PolicySource interface {
	ExpectedDailyMinutes(ctx context.Context, userID uuid.UUID) (int, error)
}

// BalanceStore persists monthly balances.
type BalanceStore interface {
	UpsertMonthlyBalance(ctx context.Context, userID uuid.UUID, month time.Time, totals MonthTotals) (MonthlyBalance, error)
	GetMonthlyBalance(ctx context.Context, userID uuid.UUID, month time.Time) (MonthlyBalance, error)
}

// Recorder counts recompute outcomes for observability.
type Recorder interface {
	ObserveRecompute(outcome string)
}

// Service recomputes monthly balances from the raw punch log. The
// computation is stateless and idempotent: recomputing from the same
// punch set always produces the same row.
type Service struct {
	punches PunchSource
	policy  PolicySource
	store   BalanceStore
	metrics Recorder
	loc     *time.Location
}

// NewService constructs a Service instance.
func NewService(punches PunchSource, policy PolicySource, store BalanceStore, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		punches: punches,
		policy:  policy,
		store:   store,
		loc:     loc,
	}
}

// WithMetrics attaches a recompute outcome recorder.
func (s *Service) WithMetrics(metrics Recorder) {
	s.metrics = metrics
}

// MonthStart normalises an instant to the first day of its calendar
// month in the engine's location.
func (s *Service) MonthStart(t time.Time) time.Time {
	local := t.In(s.loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, s.loc)
}

// RecomputeMonth re-reads the user's raw punches for the month, runs
// the accounting engine, and upserts the balance row. Safe to retry
// wholesale.
func (s *Service) RecomputeMonth(ctx context.Context, userID uuid.UUID, month time.Time) (MonthlyBalance, error) {
	days, _, err := s.computeMonth(ctx, userID, month)
	if err != nil {
		s.observe("error")
		return MonthlyBalance{}, err
	}
	balance, err := s.store.UpsertMonthlyBalance(ctx, userID, s.MonthStart(month), AggregateMonth(days))
	if err != nil {
		s.observe("error")
		return MonthlyBalance{}, err
	}
	s.observe("ok")
	return balance, nil
}

// MonthOverview recomputes the month and returns the balance together
// with the per-day series. Reads always reflect the punch log as of
// now; a balance persisted earlier may be stale until this runs.
func (s *Service) MonthOverview(ctx context.Context, userID uuid.UUID, month time.Time) (MonthOverview, error) {
	days, totals, err := s.computeMonth(ctx, userID, month)
	if err != nil {
		s.observe("error")
		return MonthOverview{}, err
	}
	balance, err := s.store.UpsertMonthlyBalance(ctx, userID, s.MonthStart(month), totals)
	if err != nil {
		s.observe("error")
		return MonthOverview{}, err
	}
	s.observe("ok")

	progress := 0
	if totals.ExpectedMinutes > 0 {
		progress = totals.WorkedMinutes * 100 / totals.ExpectedMinutes
		if progress > progressCap {
			progress = progressCap
		}
	}
	return MonthOverview{
		Balance:         balance,
		Totals:          totals,
		Days:            days,
		ProgressPercent: progress,
	}, nil
}

func (s *Service) computeMonth(ctx context.Context, userID uuid.UUID, month time.Time) ([]DailySummary, MonthTotals, error) {
	from := s.MonthStart(month)
	to := from.AddDate(0, 1, 0)

	punches, err := s.punches.ListPunches(ctx, userID, from, to)
	if err != nil {
		return nil, MonthTotals{}, err
	}
	expected, err := s.policy.ExpectedDailyMinutes(ctx, userID)
	if err != nil {
		return nil, MonthTotals{}, err
	}

	days := BuildDailySummaries(punches, expected, s.loc)
	return days, AggregateMonth(days), nil
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveRecompute(outcome)
	}
}
