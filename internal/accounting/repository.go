package accounting

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for monthly
// balances.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ErrBalanceNotFound indicates no balance row exists for the month.
var ErrBalanceNotFound = errors.New("accounting: monthly balance not found")

// UpsertMonthlyBalance writes the balance row for (user, month),
// overwriting any previous computation. Never appends duplicates.
func (r *Repository) UpsertMonthlyBalance(ctx context.Context, userID uuid.UUID, month time.Time, totals MonthTotals) (MonthlyBalance, error) {
	const query = `
		INSERT INTO monthly_balances (id, user_id, reference_month, worked_minutes, expected_minutes, balance_minutes, overtime_minutes, deficit_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (user_id, reference_month) DO UPDATE SET
			worked_minutes = EXCLUDED.worked_minutes,
			expected_minutes = EXCLUDED.expected_minutes,
			balance_minutes = EXCLUDED.balance_minutes,
			overtime_minutes = EXCLUDED.overtime_minutes,
			deficit_minutes = EXCLUDED.deficit_minutes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	b := MonthlyBalance{
		UserID:          userID,
		ReferenceMonth:  month,
		WorkedMinutes:   totals.WorkedMinutes,
		ExpectedMinutes: totals.ExpectedMinutes,
		BalanceMinutes:  totals.BalanceMinutes,
		OvertimeMinutes: totals.OvertimeMinutes,
		DeficitMinutes:  totals.DeficitMinutes,
	}
	err := r.pool.QueryRow(ctx, query,
		uuid.New(), userID, month,
		totals.WorkedMinutes, totals.ExpectedMinutes,
		totals.BalanceMinutes, totals.OvertimeMinutes, totals.DeficitMinutes,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return MonthlyBalance{}, err
	}
	return b, nil
}

// GetMonthlyBalance fetches the balance row for (user, month).
func (r *Repository) GetMonthlyBalance(ctx context.Context, userID uuid.UUID, month time.Time) (MonthlyBalance, error) {
	const query = `
		SELECT id, user_id, reference_month, worked_minutes, expected_minutes, balance_minutes, overtime_minutes, deficit_minutes, created_at, updated_at
		FROM monthly_balances
		WHERE user_id = $1 AND reference_month = $2`

	var b MonthlyBalance
	err := r.pool.QueryRow(ctx, query, userID, month).Scan(
		&b.ID, &b.UserID, &b.ReferenceMonth,
		&b.WorkedMinutes, &b.ExpectedMinutes,
		&b.BalanceMinutes, &b.OvertimeMinutes, &b.DeficitMinutes,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MonthlyBalance{}, ErrBalanceNotFound
		}
		return MonthlyBalance{}, err
	}
	return b, nil
}
