package directory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for the directory.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, name, email, password_hash, department_id, manager_id, role, active, created_at, updated_at`

// GetProfile fetches a profile by ID.
func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	return scanProfile(row)
}

// GetProfileByEmail fetches a profile by its unique email.
func (r *Repository) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
	return scanProfile(row)
}

// ListTeam returns the active profiles reporting to the given manager.
func (r *Repository) ListTeam(ctx context.Context, managerID uuid.UUID) ([]Profile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE manager_id = $1 ORDER BY name ASC`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProfiles(rows)
}

// ListActiveProfiles returns every active profile. Used by the nightly
// balance refresh job.
func (r *Repository) ListActiveProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE active ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProfiles(rows)
}

// SetProfileActive toggles the active flag.
func (r *Repository) SetProfileActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE profiles SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpectedDailyMinutes resolves the attendance policy for an employee.
// Employees without a department fall back to the default policy.
func (r *Repository) ExpectedDailyMinutes(ctx context.Context, userID uuid.UUID) (int, error) {
	const query = `
		SELECT COALESCE(d.expected_daily_minutes, $2)
		FROM profiles p
		LEFT JOIN departments d ON d.id = p.department_id
		WHERE p.id = $1`
	var minutes int
	err := r.pool.QueryRow(ctx, query, userID, DefaultExpectedDailyMinutes).Scan(&minutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return minutes, nil
}

// ListDepartments returns departments ordered by name.
func (r *Repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, expected_daily_minutes, tolerance_minutes, standard_clock_in, standard_clock_out, workday, active, created_at, updated_at
FROM departments ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var d Department
		var workday string
		if err := rows.Scan(&d.ID, &d.Name, &d.ExpectedDailyMinutes, &d.ToleranceMinutes, &d.StandardClockIn, &d.StandardClockOut, &workday, &d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		d.Workday = WorkdayType(workday)
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// CreateDepartment inserts a department.
func (r *Repository) CreateDepartment(ctx context.Context, in CreateDepartmentInput) (Department, error) {
	workday := in.Workday
	if workday == "" {
		workday = WorkdayFixed
	}
	expected := in.ExpectedDailyMinutes
	if expected == 0 {
		expected = DefaultExpectedDailyMinutes
	}
	const query = `
		INSERT INTO departments (id, name, expected_daily_minutes, tolerance_minutes, standard_clock_in, standard_clock_out, workday, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW())
		RETURNING created_at, updated_at`
	d := Department{
		ID:                   uuid.New(),
		Name:                 strings.TrimSpace(in.Name),
		ExpectedDailyMinutes: expected,
		ToleranceMinutes:     in.ToleranceMinutes,
		StandardClockIn:      in.StandardClockIn,
		StandardClockOut:     in.StandardClockOut,
		Workday:              workday,
		Active:               true,
	}
	err := r.pool.QueryRow(ctx, query, d.ID, d.Name, d.ExpectedDailyMinutes, d.ToleranceMinutes, d.StandardClockIn, d.StandardClockOut, string(d.Workday)).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Department{}, ErrDuplicateDepartment
		}
		return Department{}, err
	}
	return d, nil
}

// SetDepartmentActive toggles the active flag.
func (r *Repository) SetDepartmentActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE departments SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	var role string
	var deptID, mgrID *uuid.UUID
	var createdAt, updatedAt time.Time
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &deptID, &mgrID, &role, &p.Active, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	p.DepartmentID = deptID
	p.ManagerID = mgrID
	p.Role = Role(role)
	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt
	return p, nil
}

func collectProfiles(rows pgx.Rows) ([]Profile, error) {
	var profiles []Profile
	for rows.Next() {
		var p Profile
		var role string
		var deptID, mgrID *uuid.UUID
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &deptID, &mgrID, &role, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.DepartmentID = deptID
		p.ManagerID = mgrID
		p.Role = Role(role)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
