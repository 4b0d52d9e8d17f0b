package company

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tempora-hr/tempora/internal/directory"
	"github.com/tempora-hr/tempora/internal/platform/httpx"
	"github.com/tempora-hr/tempora/internal/shared"
)

// Handler exposes company settings and holiday management.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a company HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers company routes. All routes require HR or
// above; settings writes require admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/company", func(r chi.Router) {
		r.Use(h.requireLevel(directory.RoleHR))
		r.Get("/settings", h.getSettings)
		r.Get("/holidays", h.listHolidays)
		r.Group(func(r chi.Router) {
			r.Use(h.requireLevel(directory.RoleAdmin))
			r.Put("/settings", h.updateSettings)
			r.Post("/holidays", h.createHoliday)
			r.Delete("/holidays/{id}", h.deleteHoliday)
		})
	})
}

func (h *Handler) requireLevel(min directory.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := directory.ParseRole(shared.CurrentRole(r.Context()))
			if err != nil || !role.AtLeast(min) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Settings(r.Context())
	if err != nil {
		h.logger.Error("get settings", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

type settingsRequest struct {
	RequireSelfie       bool    `json:"require_selfie"`
	GeofenceRadiusKM    float64 `json:"geofence_radius_km"`
	RetentionYears      int     `json:"retention_years"`
	NotifyManagerOnLate bool    `json:"notify_manager_on_late"`
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var form settingsRequest
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	settings, err := h.service.UpdateSettings(r.Context(), UpdateSettingsInput{
		RequireSelfie:       form.RequireSelfie,
		GeofenceRadiusKM:    form.GeofenceRadiusKM,
		RetentionYears:      form.RetentionYears,
		NotifyManagerOnLate: form.NotifyManagerOnLate,
	})
	if err != nil {
		if !errors.Is(err, httpx.ErrValidation) {
			h.logger.Error("update settings", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

func (h *Handler) listHolidays(w http.ResponseWriter, r *http.Request) {
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 2100 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "year must be a four digit number")
			return
		}
		year = parsed
	}
	holidays, err := h.service.Holidays(r.Context(), year)
	if err != nil {
		h.logger.Error("list holidays", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"holidays": holidays})
}

type holidayRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	National    bool   `json:"national"`
}

func (h *Handler) createHoliday(w http.ResponseWriter, r *http.Request) {
	var form holidayRequest
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	date, err := time.Parse("2006-01-02", form.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must look like 2025-12-25")
		return
	}
	holiday, err := h.service.AddHoliday(r.Context(), CreateHolidayInput{
		Date:        date,
		Description: form.Description,
		National:    form.National,
	})
	if err != nil {
		if !errors.Is(err, httpx.ErrValidation) && !errors.Is(err, httpx.ErrConflict) {
			h.logger.Error("create holiday", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, holiday)
}

func (h *Handler) deleteHoliday(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "holiday id must be a valid uuid")
		return
	}
	if err := h.service.RemoveHoliday(r.Context(), id); err != nil {
		if !errors.Is(err, httpx.ErrNotFound) {
			h.logger.Error("delete holiday", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
