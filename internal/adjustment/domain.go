package adjustment

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-hr/tempora/internal/timeclock"
)

// Status enumerates the request lifecycle. Pending is the only
// non-terminal state; a decided request is never re-opened.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Request is a user's proposal to change one punch's instant.
type Request struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	// PunchID may stop resolving if the target punch is removed after
	// submission; approval then succeeds without mutating anything.
	PunchID         *uuid.UUID          `json:"punch_id,omitempty"`
	ProposedInstant time.Time           `json:"proposed_instant"`
	Kind            timeclock.PunchKind `json:"kind"`
	Reason          string              `json:"reason"`
	Status          Status              `json:"status"`
	ReviewerID      *uuid.UUID          `json:"reviewer_id,omitempty"`
	DecidedAt       *time.Time          `json:"decided_at,omitempty"`
	ReviewerNote    string              `json:"reviewer_note,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// SubmitInput bundles parameters for creating a request.
type SubmitInput struct {
	UserID          uuid.UUID
	PunchID         uuid.UUID
	ProposedInstant time.Time
	Reason          string
}

// Validate ensures the submit input is coherent.
func (in SubmitInput) Validate() error {
	if in.UserID == uuid.Nil {
		return ErrReasonInvalid("user id required")
	}
	if in.PunchID == uuid.Nil {
		return ErrReasonInvalid("target punch id required")
	}
	if in.ProposedInstant.IsZero() {
		return ErrReasonInvalid("proposed instant required")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return ErrReasonInvalid("justification required")
	}
	return nil
}

// DecideInput bundles parameters for deciding a request.
type DecideInput struct {
	ReviewerID uuid.UUID
	RequestID  uuid.UUID
	Approve    bool
	Note       string
}

// ErrValidation is the base class for malformed submit/decide input.
var ErrValidation = errors.New("adjustment: invalid input")

// ErrReasonInvalid wraps ErrValidation with a detail message.
func ErrReasonInvalid(detail string) error {
	return &validationError{detail: detail}
}

type validationError struct {
	detail string
}

func (e *validationError) Error() string {
	return "adjustment: " + e.detail
}

func (e *validationError) Unwrap() error {
	return ErrValidation
}

// ErrNotFound indicates the request does not exist.
var ErrNotFound = errors.New("adjustment: request not found")

// ErrNotPending indicates a decision attempted on a decided request.
var ErrNotPending = errors.New("adjustment: request is not pending")

// ErrNotAuthorized indicates the reviewer has no authority over the
// requesting user.
var ErrNotAuthorized = errors.New("adjustment: reviewer lacks authority over requester")

// ErrNotOwner indicates the target punch belongs to another user.
var ErrNotOwner = errors.New("adjustment: punch belongs to another user")
