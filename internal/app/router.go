package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tempora-hr/tempora/internal/accounting"
	"github.com/tempora-hr/tempora/internal/adjustment"
	"github.com/tempora-hr/tempora/internal/auth"
	"github.com/tempora-hr/tempora/internal/company"
	"github.com/tempora-hr/tempora/internal/directory"
	"github.com/tempora-hr/tempora/internal/observability"
	"github.com/tempora-hr/tempora/internal/reports"
	"github.com/tempora-hr/tempora/internal/shared"
	"github.com/tempora-hr/tempora/internal/timeclock"
	"github.com/tempora-hr/tempora/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	AuthHandler       *auth.Handler
	TimeclockHandler  *timeclock.Handler
	AccountingHandler *accounting.Handler
	AdjustmentHandler *adjustment.Handler
	DirectoryHandler  *directory.Handler
	CompanyHandler    *company.Handler
	ReportsHandler    *reports.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Tempora defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)
		if params.TimeclockHandler != nil {
			params.TimeclockHandler.MountRoutes(r)
		}
		if params.AccountingHandler != nil {
			params.AccountingHandler.MountRoutes(r)
		}
		if params.AdjustmentHandler != nil {
			params.AdjustmentHandler.MountRoutes(r)
		}
		if params.DirectoryHandler != nil {
			params.DirectoryHandler.MountRoutes(r)
		}
		if params.CompanyHandler != nil {
			params.CompanyHandler.MountRoutes(r)
		}
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(r)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
