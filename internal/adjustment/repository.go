package adjustment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tempora-hr/tempora/internal/timeclock"
)

// Repository provides PostgreSQL backed persistence for adjustment
// requests.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const requestColumns = `id, user_id, punch_id, proposed_instant, kind, reason, status, reviewer_id, decided_at, reviewer_note, created_at, updated_at`

// CreateRequest inserts a pending request.
func (r *Repository) CreateRequest(ctx context.Context, in SubmitInput, kind timeclock.PunchKind) (Request, error) {
	const query = `
		INSERT INTO adjustment_requests (id, user_id, punch_id, proposed_instant, kind, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', NOW(), NOW())
		RETURNING created_at, updated_at`

	punchID := in.PunchID
	req := Request{
		ID:              uuid.New(),
		UserID:          in.UserID,
		PunchID:         &punchID,
		ProposedInstant: in.ProposedInstant,
		Kind:            kind,
		Reason:          in.Reason,
		Status:          StatusPending,
	}
	err := r.pool.QueryRow(ctx, query,
		req.ID, req.UserID, punchID, req.ProposedInstant, string(kind), req.Reason,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return Request{}, err
	}
	return req, nil
}

// GetRequest fetches a request by ID.
func (r *Repository) GetRequest(ctx context.Context, id uuid.UUID) (Request, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM adjustment_requests WHERE id = $1`, id)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, err
	}
	return req, nil
}

// ListByUser returns a user's requests, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Request, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+requestColumns+` FROM adjustment_requests
WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// ListPending returns pending requests from users other than the
// reviewer, newest first.
func (r *Repository) ListPending(ctx context.Context, excludeUserID uuid.UUID) ([]Request, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+requestColumns+` FROM adjustment_requests
WHERE status = 'pending' AND user_id <> $1 ORDER BY created_at DESC`, excludeUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// DecideRequest transitions a pending request to a terminal status.
// The update is conditional on the current status still being pending,
// so two concurrent decisions cannot both succeed. Reports whether the
// transition happened.
func (r *Repository) DecideRequest(ctx context.Context, id uuid.UUID, status Status, reviewerID uuid.UUID, decidedAt time.Time, note string) (bool, error) {
	const query = `
		UPDATE adjustment_requests
		SET status = $2, reviewer_id = $3, decided_at = $4, reviewer_note = NULLIF($5, ''), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`
	tag, err := r.pool.Exec(ctx, query, id, string(status), reviewerID, decidedAt, note)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	var kind, status string
	var punchID, reviewerID *uuid.UUID
	var decidedAt pgtype.Timestamptz
	var note pgtype.Text
	err := row.Scan(&req.ID, &req.UserID, &punchID, &req.ProposedInstant, &kind, &req.Reason, &status,
		&reviewerID, &decidedAt, &note, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return Request{}, err
	}
	req.PunchID = punchID
	req.Kind = timeclock.PunchKind(kind)
	req.Status = Status(status)
	req.ReviewerID = reviewerID
	if decidedAt.Valid {
		t := decidedAt.Time
		req.DecidedAt = &t
	}
	req.ReviewerNote = note.String
	return req, nil
}

func collectRequests(rows pgx.Rows) ([]Request, error) {
	var requests []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
