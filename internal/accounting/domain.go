package accounting

import (
	"time"

	"github.com/google/uuid"
)

// WorkInterval is a paired (in, out) for one user on one calendar day.
// Computed on demand, never persisted.
type WorkInterval struct {
	In  time.Time
	Out time.Time
}

// Minutes returns the interval duration in whole minutes, fractional
// seconds truncated.
func (iv WorkInterval) Minutes() int {
	return int(iv.Out.Sub(iv.In).Minutes())
}

// DailySummary is one calendar day's worked total against the
// expected-minutes baseline.
type DailySummary struct {
	Date            time.Time `json:"date"`
	WorkedMinutes   int       `json:"worked_minutes"`
	ExpectedMinutes int       `json:"expected_minutes"`
	// Unpaired counts punches that contributed no worked time on the
	// day: excess punches on one side, and both halves of an inverted
	// pair. Diagnostic only.
	Unpaired int `json:"unpaired"`
}

// MonthTotals is the aggregate of a calendar month's daily summaries.
type MonthTotals struct {
	WorkedMinutes   int `json:"worked_minutes"`
	ExpectedMinutes int `json:"expected_minutes"`
	BalanceMinutes  int `json:"balance_minutes"`
	OvertimeMinutes int `json:"overtime_minutes"`
	DeficitMinutes  int `json:"deficit_minutes"`
}

// MonthlyBalance is the persisted balance row for (user, month).
type MonthlyBalance struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	ReferenceMonth  time.Time `json:"reference_month"`
	WorkedMinutes   int       `json:"worked_minutes"`
	ExpectedMinutes int       `json:"expected_minutes"`
	BalanceMinutes  int       `json:"balance_minutes"`
	OvertimeMinutes int       `json:"overtime_minutes"`
	DeficitMinutes  int       `json:"deficit_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MonthOverview combines the persisted balance with the per-day series
// the dashboard renders.
type MonthOverview struct {
	Balance MonthlyBalance `json:"balance"`
	Totals  MonthTotals    `json:"totals"`
	Days    []DailySummary `json:"days"`
	// ProgressPercent is worked over expected, capped at 150 for
	// display. Zero when nothing was expected.
	ProgressPercent int `json:"progress_percent"`
}

// progressCap bounds the displayed completion percentage.
const progressCap = 150
