package timeclock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for punches.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const punchColumns = `id, user_id, instant, kind, method, latitude, longitude, address, photo_ref, note, created_at`

// CreatePunch appends a punch to the log.
func (r *Repository) CreatePunch(ctx context.Context, in RegisterInput, instant time.Time) (Punch, error) {
	method := in.Method
	if method == "" {
		method = MethodApp
	}

	var lat, lon pgtype.Float8
	var address pgtype.Text
	if in.Location != nil {
		lat = pgtype.Float8{Float64: in.Location.Latitude, Valid: true}
		lon = pgtype.Float8{Float64: in.Location.Longitude, Valid: true}
		if in.Location.Address != "" {
			address = pgtype.Text{String: in.Location.Address, Valid: true}
		}
	}

	const query = `
		INSERT INTO punches (id, user_id, instant, kind, method, latitude, longitude, address, photo_ref, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), NOW())
		RETURNING created_at`

	p := Punch{
		ID:       uuid.New(),
		UserID:   in.UserID,
		Instant:  instant,
		Kind:     in.Kind,
		Method:   method,
		Location: in.Location,
		PhotoRef: in.PhotoRef,
		Note:     in.Note,
	}
	err := r.pool.QueryRow(ctx, query,
		p.ID, p.UserID, p.Instant, string(p.Kind), string(p.Method),
		lat, lon, address, in.PhotoRef, in.Note,
	).Scan(&p.CreatedAt)
	if err != nil {
		return Punch{}, err
	}
	return p, nil
}

// GetPunch fetches a punch by ID.
func (r *Repository) GetPunch(ctx context.Context, id uuid.UUID) (Punch, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+punchColumns+` FROM punches WHERE id = $1`, id)
	p, err := scanPunch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Punch{}, ErrNotFound
		}
		return Punch{}, err
	}
	return p, nil
}

// ListPunches returns a user's punches in [from, to) ordered by instant
// ascending.
func (r *Repository) ListPunches(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]Punch, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+punchColumns+` FROM punches
WHERE user_id = $1 AND instant >= $2 AND instant < $3
ORDER BY instant ASC`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var punches []Punch
	for rows.Next() {
		p, err := scanPunch(rows)
		if err != nil {
			return nil, err
		}
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

// UpdateInstant rewrites a punch's instant. Invoked only by the
// adjustment workflow on approval. Reports whether a row was mutated.
func (r *Repository) UpdateInstant(ctx context.Context, id uuid.UUID, instant time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE punches SET instant = $2 WHERE id = $1`, id, instant)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanPunch(row pgx.Row) (Punch, error) {
	var p Punch
	var kind, method string
	var lat, lon pgtype.Float8
	var address, photoRef, note pgtype.Text
	if err := row.Scan(&p.ID, &p.UserID, &p.Instant, &kind, &method, &lat, &lon, &address, &photoRef, &note, &p.CreatedAt); err != nil {
		return Punch{}, err
	}
	p.Kind = PunchKind(kind)
	p.Method = CaptureMethod(method)
	if lat.Valid && lon.Valid {
		p.Location = &Geolocation{Latitude: lat.Float64, Longitude: lon.Float64, Address: address.String}
	}
	p.PhotoRef = photoRef.String
	p.Note = note.String
	return p, nil
}
