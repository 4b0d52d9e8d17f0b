package accounting

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tempora-hr/tempora/internal/platform/httpx"
	"github.com/tempora-hr/tempora/internal/shared"
)

type balanceService interface {
	MonthOverview(ctx context.Context, userID uuid.UUID, month time.Time) (MonthOverview, error)
	RecomputeMonth(ctx context.Context, userID uuid.UUID, month time.Time) (MonthlyBalance, error)
}

// Handler wires HTTP endpoints for the time bank.
type Handler struct {
	logger  *slog.Logger
	service balanceService
	loc     *time.Location
}

// NewHandler constructs an accounting HTTP handler.
func NewHandler(logger *slog.Logger, service balanceService, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		logger:  logger,
		service: service,
		loc:     loc,
	}
}

// MountRoutes registers time bank routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/timebank", func(r chi.Router) {
		r.Get("/", h.overview)
		r.Post("/recompute", h.recompute)
	})
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	month, err := shared.ParseMonth(r.URL.Query().Get("month"), h.loc, nil)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	overview, err := h.service.MonthOverview(r.Context(), userID, month)
	if err != nil {
		h.logger.Error("month overview", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}

func (h *Handler) recompute(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	month, err := shared.ParseMonth(r.URL.Query().Get("month"), h.loc, nil)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	balance, err := h.service.RecomputeMonth(r.Context(), userID, month)
	if err != nil {
		h.logger.Error("recompute month", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, balance)
}
