package timeclock

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"

	"github.com/tempora-hr/tempora/internal/platform/httpx"
	"github.com/tempora-hr/tempora/internal/shared"
)

type punchService interface {
	Register(ctx context.Context, in RegisterInput) (Punch, error)
	TodayPunches(ctx context.Context, userID uuid.UUID) ([]Punch, error)
	MonthPunches(ctx context.Context, userID uuid.UUID, month time.Time) ([]Punch, error)
	NextAction(ctx context.Context, userID uuid.UUID) (PunchKind, error)
}

// Recorder counts registered punches for observability.
type Recorder interface {
	ObservePunch(kind string)
}

// Handler wires HTTP endpoints for punch registration and history.
type Handler struct {
	logger  *slog.Logger
	service punchService
	metrics Recorder
	loc     *time.Location
}

// NewHandler constructs a timeclock HTTP handler.
func NewHandler(logger *slog.Logger, service punchService, metrics Recorder, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		logger:  logger,
		service: service,
		metrics: metrics,
		loc:     loc,
	}
}

// MountRoutes registers punch routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(12, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "punch rate limit exceeded")
		}),
	)

	r.Route("/punches", func(r chi.Router) {
		r.Get("/", h.listMonth)
		r.Get("/today", h.today)
		r.Group(func(r chi.Router) {
			r.Use(limiter)
			r.Post("/", h.register)
		})
	})
}

type registerRequest struct {
	Kind     string       `json:"kind"`
	Method   string       `json:"method,omitempty"`
	Location *Geolocation `json:"location,omitempty"`
	PhotoRef string       `json:"photo_ref,omitempty"`
	Note     string       `json:"note,omitempty"`
}

type punchView struct {
	ID       string       `json:"id"`
	Instant  time.Time    `json:"instant"`
	Kind     string       `json:"kind"`
	Method   string       `json:"method"`
	Location *Geolocation `json:"location,omitempty"`
	PhotoRef string       `json:"photo_ref,omitempty"`
	Note     string       `json:"note,omitempty"`
}

type todayResponse struct {
	Punches    []punchView `json:"punches"`
	NextAction string      `json:"next_action"`
	ClockedIn  bool        `json:"clocked_in"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	var form registerRequest
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}

	punch, err := h.service.Register(r.Context(), RegisterInput{
		UserID:   userID,
		Kind:     PunchKind(form.Kind),
		Method:   CaptureMethod(form.Method),
		Location: form.Location,
		PhotoRef: form.PhotoRef,
		Note:     form.Note,
	})
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if h.metrics != nil {
		h.metrics.ObservePunch(string(punch.Kind))
	}
	httpx.JSON(w, http.StatusCreated, toPunchView(punch))
}

func (h *Handler) today(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	punches, err := h.service.TodayPunches(r.Context(), userID)
	if err != nil {
		h.logger.Error("list today punches", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	next, err := h.service.NextAction(r.Context(), userID)
	if err != nil {
		h.logger.Error("derive next action", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	views := make([]punchView, 0, len(punches))
	for _, p := range punches {
		views = append(views, toPunchView(p))
	}
	httpx.JSON(w, http.StatusOK, todayResponse{
		Punches:    views,
		NextAction: string(next),
		ClockedIn:  len(punches) > 0 && punches[len(punches)-1].Kind == KindIn,
	})
}

func (h *Handler) listMonth(w http.ResponseWriter, r *http.Request) {
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

	punches, err := h.service.MonthPunches(r.Context(), userID, month)
	if err != nil {
		h.logger.Error("list month punches", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	views := make([]punchView, 0, len(punches))
	for _, p := range punches {
		views = append(views, toPunchView(p))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"month":   month.Format("2006-01"),
		"punches": views,
	})
}

func toPunchView(p Punch) punchView {
	return punchView{
		ID:       p.ID.String(),
		Instant:  p.Instant,
		Kind:     string(p.Kind),
		Method:   string(p.Method),
		Location: p.Location,
		PhotoRef: p.PhotoRef,
		Note:     p.Note,
	}
}

func rateLimitKey(r *http.Request) (string, error) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && sess.User() != "" {
		return "user:" + sess.User(), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
