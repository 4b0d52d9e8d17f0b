package directory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tempora-hr/tempora/internal/platform/httpx"
	"github.com/tempora-hr/tempora/internal/shared"
)

// Handler wires HTTP endpoints for team and department management.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a directory HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers directory routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/team", func(r chi.Router) {
		r.Use(h.requireLevel(RoleManager))
		r.Get("/", h.listTeam)
		r.Group(func(r chi.Router) {
			r.Use(h.requireLevel(RoleHR))
			r.Post("/{id}/active", h.setProfileActive)
		})
	})
	r.Route("/departments", func(r chi.Router) {
		r.Use(h.requireLevel(RoleHR))
		r.Get("/", h.listDepartments)
		r.Group(func(r chi.Router) {
			r.Use(h.requireLevel(RoleAdmin))
			r.Post("/", h.createDepartment)
			r.Post("/{id}/active", h.setDepartmentActive)
		})
	})
}

// requireLevel gates a route group by ordered role level.
func (h *Handler) requireLevel(min Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := ParseRole(shared.CurrentRole(r.Context()))
			if err != nil || !role.AtLeast(min) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type profileView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

func (h *Handler) listTeam(w http.ResponseWriter, r *http.Request) {
	managerID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	team, err := h.service.ListTeam(r.Context(), managerID)
	if err != nil {
		h.logger.Error("list team", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	views := make([]profileView, 0, len(team))
	for _, p := range team {
		views = append(views, profileView{
			ID:     p.ID.String(),
			Name:   p.Name,
			Email:  p.Email,
			Role:   string(p.Role),
			Active: p.Active,
		})
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 50)
	pg := shared.NewPagination(page, perPage, len(views))
	start := (pg.Page - 1) * pg.PerPage
	if start > len(views) {
		start = len(views)
	}
	end := start + pg.PerPage
	if end > len(views) {
		end = len(views)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"team":       views[start:end],
		"pagination": pg,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

type activeRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) setProfileActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "profile id must be a valid uuid")
		return
	}
	var form activeRequest
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.service.SetProfileActive(r.Context(), id, form.Active); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type departmentRequest struct {
	Name                 string `json:"name" validate:"required"`
	ExpectedDailyMinutes int    `json:"expected_daily_minutes" validate:"gte=0,lte=1440"`
	ToleranceMinutes     int    `json:"tolerance_minutes" validate:"gte=0"`
	StandardClockIn      string `json:"standard_clock_in,omitempty"`
	StandardClockOut     string `json:"standard_clock_out,omitempty"`
	Workday              string `json:"workday,omitempty"`
}

func (h *Handler) listDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.service.ListDepartments(r.Context())
	if err != nil {
		h.logger.Error("list departments", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"departments": departments})
}

func (h *Handler) createDepartment(w http.ResponseWriter, r *http.Request) {
	var form departmentRequest
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "department fields out of range")
		return
	}

	department, err := h.service.CreateDepartment(r.Context(), CreateDepartmentInput{
		Name:                 form.Name,
		ExpectedDailyMinutes: form.ExpectedDailyMinutes,
		ToleranceMinutes:     form.ToleranceMinutes,
		StandardClockIn:      form.StandardClockIn,
		StandardClockOut:     form.StandardClockOut,
		Workday:              WorkdayType(form.Workday),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, department)
}

func (h *Handler) setDepartmentActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "department id must be a valid uuid")
		return
	}
	var form activeRequest
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.service.SetDepartmentActive(r.Context(), id, form.Active); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateDepartment):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("directory request", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
