package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBalanceRecompute recomputes one user's monthly balance.
	TaskBalanceRecompute = "balance:recompute"
	// TaskBalanceSweep recomputes the current month for every active user.
	TaskBalanceSweep = "balance:sweep"
)

// monthLayout is how reference months travel in task payloads.
const monthLayout = "2006-01"

// BalanceRecomputePayload identifies the balance to rebuild.
type BalanceRecomputePayload struct {
	UserID string `json:"user_id"`
	Month  string `json:"month"`
}

// NewBalanceRecomputeTask constructs an Asynq task for one user-month.
func NewBalanceRecomputeTask(userID uuid.UUID, month time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(BalanceRecomputePayload{
		UserID: userID.String(),
		Month:  month.Format(monthLayout),
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBalanceRecompute, data), nil
}

// NewBalanceSweepTask constructs the nightly sweep task.
func NewBalanceSweepTask() *asynq.Task {
	return asynq.NewTask(TaskBalanceSweep, nil)
}
