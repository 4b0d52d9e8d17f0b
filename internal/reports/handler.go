package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tempora-hr/tempora/internal/directory"
	"github.com/tempora-hr/tempora/internal/platform/httpx"
	"github.com/tempora-hr/tempora/internal/shared"
)

// Authorizer decides whether a viewer may read another user's report.
type Authorizer interface {
	IsManagerOf(ctx context.Context, reviewerID, requesterID uuid.UUID) (bool, error)
}

// Handler serves report downloads.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   Authorizer
	loc     *time.Location
	now     func() time.Time
}

// NewHandler constructs a report HTTP handler.
func NewHandler(logger *slog.Logger, service *Service, authz Authorizer, loc *time.Location) *Handler {
	return &Handler{logger: logger, service: service, authz: authz, loc: loc, now: time.Now}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/monthly.csv", h.monthlyCSV)
}

func (h *Handler) monthlyCSV(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	subjectID := viewerID
	if raw := r.URL.Query().Get("user"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "user must be a valid uuid")
			return
		}
		subjectID = parsed
	}

	month, err := shared.ParseMonth(r.URL.Query().Get("month"), h.loc, h.now)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "month must look like 2025-08")
		return
	}

	if subjectID != viewerID {
		allowed, err := h.authz.IsManagerOf(r.Context(), viewerID, subjectID)
		if err != nil {
			h.logger.Error("report authorization", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		if !allowed {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "you can only export reports for your own team")
			return
		}
	}

	report, err := h.service.Monthly(r.Context(), subjectID, month)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown user")
			return
		}
		h.logger.Error("assemble monthly report", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	filename := fmt.Sprintf("timebank-%s-%s.csv", subjectID, month.Format("2006-01"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := WriteMonthlyCSV(w, report); err != nil {
		h.logger.Error("write monthly csv", slog.Any("error", err))
	}
}
