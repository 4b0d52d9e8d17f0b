package company

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tempora-hr/tempora/internal/platform/db"
)

const uqHolidayDate = "uq_holidays_date"

// Repository persists settings and holidays in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a company repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetSettings returns the singleton settings row, inserting defaults
// on first access. The read and the fallback insert share a
// transaction so two first readers do not both seed a row.
func (r *Repository) GetSettings(ctx context.Context) (Settings, error) {
	const query = `
		SELECT id, require_selfie, geofence_radius_km, retention_years,
		       notify_manager_on_late, updated_at
		FROM company_settings
		ORDER BY updated_at DESC
		LIMIT 1`

	var s Settings
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query).Scan(
			&s.ID, &s.RequireSelfie, &s.GeofenceRadiusKM,
			&s.RetentionYears, &s.NotifyManagerOnLate, &s.UpdatedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return r.insertDefaults(ctx, tx, &s)
		}
		if err != nil {
			return fmt.Errorf("get settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (r *Repository) insertDefaults(ctx context.Context, tx pgx.Tx, s *Settings) error {
	const query = `
		INSERT INTO company_settings
			(id, require_selfie, geofence_radius_km, retention_years,
			 notify_manager_on_late, updated_at)
		VALUES ($1, false, 0.5, 5, true, now())
		RETURNING id, require_selfie, geofence_radius_km, retention_years,
		          notify_manager_on_late, updated_at`

	err := tx.QueryRow(ctx, query, uuid.New()).Scan(
		&s.ID, &s.RequireSelfie, &s.GeofenceRadiusKM,
		&s.RetentionYears, &s.NotifyManagerOnLate, &s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert default settings: %w", err)
	}
	return nil
}

// UpdateSettings overwrites the singleton row.
func (r *Repository) UpdateSettings(ctx context.Context, id uuid.UUID, in UpdateSettingsInput) (Settings, error) {
	const query = `
		UPDATE company_settings
		SET require_selfie = $2,
		    geofence_radius_km = $3,
		    retention_years = $4,
		    notify_manager_on_late = $5,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, require_selfie, geofence_radius_km, retention_years,
		          notify_manager_on_late, updated_at`

	var s Settings
	err := r.pool.QueryRow(ctx, query, id,
		in.RequireSelfie, in.GeofenceRadiusKM, in.RetentionYears, in.NotifyManagerOnLate,
	).Scan(
		&s.ID, &s.RequireSelfie, &s.GeofenceRadiusKM,
		&s.RetentionYears, &s.NotifyManagerOnLate, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, ErrNotFound
	}
	if err != nil {
		return Settings{}, fmt.Errorf("update settings: %w", err)
	}
	return s, nil
}

// ListHolidays returns all holidays that fall within a calendar year,
// ordered by date.
func (r *Repository) ListHolidays(ctx context.Context, year int) ([]Holiday, error) {
	const query = `
		SELECT id, holiday_date, description, national, created_at
		FROM holidays
		WHERE holiday_date >= $1 AND holiday_date < $2
		ORDER BY holiday_date ASC`

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	defer rows.Close()

	holidays := make([]Holiday, 0, 16)
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Description, &h.National, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// CreateHoliday inserts a holiday. A second entry on the same date
// maps to ErrDuplicateHoliday.
func (r *Repository) CreateHoliday(ctx context.Context, in CreateHolidayInput) (Holiday, error) {
	const query = `
		INSERT INTO holidays (id, holiday_date, description, national, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id, holiday_date, description, national, created_at`

	var h Holiday
	err := r.pool.QueryRow(ctx, query, uuid.New(), in.Date, in.Description, in.National).Scan(
		&h.ID, &h.Date, &h.Description, &h.National, &h.CreatedAt,
	)
	if err != nil {
		if isHolidayDateConflict(err) {
			return Holiday{}, ErrDuplicateHoliday
		}
		return Holiday{}, fmt.Errorf("create holiday: %w", err)
	}
	return h, nil
}

// isHolidayDateConflict recognises a violation of the uq_holidays_date
// constraint anywhere in the error chain.
func isHolidayDateConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == uqHolidayDate
}

// DeleteHoliday removes a holiday by id.
func (r *Repository) DeleteHoliday(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
