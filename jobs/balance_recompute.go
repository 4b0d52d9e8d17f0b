package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/tempora-hr/tempora/internal/accounting"
	"github.com/tempora-hr/tempora/internal/directory"
	jobmetrics "github.com/tempora-hr/tempora/internal/jobs"
)

// BalanceSource recomputes persisted monthly balances.
type BalanceSource interface {
	RecomputeMonth(ctx context.Context, userID uuid.UUID, month time.Time) (accounting.MonthlyBalance, error)
}

// ProfileSource lists the users swept by the nightly job.
type ProfileSource interface {
	ListActiveProfiles(ctx context.Context) ([]directory.Profile, error)
}

// BalanceRecomputeJob rebuilds monthly balances from raw punches.
type BalanceRecomputeJob struct {
	Balances BalanceSource
	Profiles ProfileSource
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	Location *time.Location
	clock    func() time.Time
}

// NewBalanceRecomputeJob initialises the recompute handler.
func NewBalanceRecomputeJob(balances BalanceSource, profiles ProfileSource, logger *slog.Logger, metrics *jobmetrics.Metrics, loc *time.Location) *BalanceRecomputeJob {
	if loc == nil {
		loc = time.UTC
	}
	return &BalanceRecomputeJob{
		Balances: balances,
		Profiles: profiles,
		Logger:   logger,
		Metrics:  metrics,
		Location: loc,
		clock:    time.Now,
	}
}

func (j *BalanceRecomputeJob) now() time.Time {
	if j.clock == nil {
		return time.Now()
	}
	return j.clock()
}

// Handle processes a single-user recompute task.
func (j *BalanceRecomputeJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Balances == nil {
		return errors.New("balance recompute: handler not configured")
	}
	tracker := j.Metrics.Track(TaskBalanceRecompute)
	var payload BalanceRecomputePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return tracker.End(asynq.SkipRetry)
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return tracker.End(asynq.SkipRetry)
	}
	month, err := time.ParseInLocation(monthLayout, payload.Month, j.Location)
	if err != nil {
		return tracker.End(asynq.SkipRetry)
	}

	balance, err := j.Balances.RecomputeMonth(ctx, userID, month)
	if err != nil {
		return tracker.End(fmt.Errorf("recompute %s %s: %w", payload.UserID, payload.Month, err))
	}
	j.Logger.Info("balance recomputed",
		slog.String("user_id", payload.UserID),
		slog.String("month", payload.Month),
		slog.Int("balance_minutes", balance.BalanceMinutes),
	)
	return tracker.End(nil)
}

// HandleSweep recomputes the current month for every active user.
// Per-user failures are logged and do not stop the sweep; the task
// fails only when every user failed.
func (j *BalanceRecomputeJob) HandleSweep(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Balances == nil || j.Profiles == nil {
		return errors.New("balance sweep: handler not configured")
	}
	tracker := j.Metrics.Track(TaskBalanceSweep)
	profiles, err := j.Profiles.ListActiveProfiles(ctx)
	if err != nil {
		return tracker.End(fmt.Errorf("list active profiles: %w", err))
	}
	if len(profiles) == 0 {
		return tracker.End(nil)
	}

	now := j.now().In(j.Location)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, j.Location)

	failed := 0
	for _, profile := range profiles {
		if _, err := j.Balances.RecomputeMonth(ctx, profile.ID, month); err != nil {
			failed++
			j.Logger.Warn("sweep recompute failed",
				slog.String("user_id", profile.ID.String()),
				slog.Any("error", err),
			)
		}
	}
	j.Logger.Info("balance sweep finished",
		slog.String("month", month.Format(monthLayout)),
		slog.Int("users", len(profiles)),
		slog.Int("failed", failed),
	)
	if failed == len(profiles) {
		return tracker.End(fmt.Errorf("balance sweep: all %d users failed", failed))
	}
	return tracker.End(nil)
}
