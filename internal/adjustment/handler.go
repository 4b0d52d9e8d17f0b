package adjustment

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tempora-hr/tempora/internal/platform/httpx"
	"github.com/tempora-hr/tempora/internal/shared"
)

type adjustmentService interface {
	Submit(ctx context.Context, in SubmitInput) (Request, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]Request, error)
	ListPendingForReviewer(ctx context.Context, reviewerID uuid.UUID) ([]Request, error)
	Decide(ctx context.Context, in DecideInput) (Request, error)
}

// Handler wires HTTP endpoints for the adjustment workflow.
type Handler struct {
	logger  *slog.Logger
	service adjustmentService
}

// NewHandler constructs an adjustment HTTP handler.
func NewHandler(logger *slog.Logger, service adjustmentService) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// MountRoutes registers adjustment routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/adjustments", func(r chi.Router) {
		r.Post("/", h.submit)
		r.Get("/", h.listMine)
		r.Get("/pending", h.listPending)
		r.Post("/{id}/decision", h.decide)
	})
}

type submitRequest struct {
	PunchID         string    `json:"punch_id"`
	ProposedInstant time.Time `json:"proposed_instant"`
	Reason          string    `json:"reason"`
}

type decisionRequest struct {
	Outcome string `json:"outcome"`
	Note    string `json:"note,omitempty"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	var form submitRequest
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	punchID, err := uuid.Parse(form.PunchID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "punch_id must be a valid uuid")
		return
	}

	req, err := h.service.Submit(r.Context(), SubmitInput{
		UserID:          userID,
		PunchID:         punchID,
		ProposedInstant: form.ProposedInstant,
		Reason:          form.Reason,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, req)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	requests, err := h.service.ListMine(r.Context(), userID)
	if err != nil {
		h.logger.Error("list own adjustments", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	requests, err := h.service.ListPendingForReviewer(r.Context(), reviewerID)
	if err != nil {
		h.logger.Error("list pending adjustments", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "request id must be a valid uuid")
		return
	}

	var form decisionRequest
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}

	var approve bool
	switch Status(form.Outcome) {
	case StatusApproved:
		approve = true
	case StatusRejected:
		approve = false
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "outcome must be approved or rejected")
		return
	}

	req, err := h.service.Decide(r.Context(), DecideInput{
		ReviewerID: reviewerID,
		RequestID:  requestID,
		Approve:    approve,
		Note:       form.Note,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrNotPending):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrNotAuthorized), errors.Is(err, ErrNotOwner):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		h.logger.Error("adjustment request", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
