package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfman30/prisoner-profile/internal/appointments"
	httpmiddleware "github.com/wolfman30/prisoner-profile/internal/http/middleware"
	"github.com/wolfman30/prisoner-profile/internal/personal"
	"github.com/wolfman30/prisoner-profile/pkg/logging"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	Appointments   *appointments.Handler
	Personal       *personal.Builder
	PersonalRoutes []personal.EditRoute
	Contacts       personal.ContactsReader
	History        personal.HistoryReader

	StaffAuthSecret string
	SubmitLimiter   *httpmiddleware.RateLimiter

	MetricsHandler http.Handler
	HealthChecks   map[string]HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", healthHandler(cfg.HealthChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Group(func(staff chi.Router) {
		staff.Use(httpmiddleware.StaffJWT(cfg.StaffAuthSecret))
		if cfg.SubmitLimiter != nil {
			staff.Use(httpmiddleware.SubmissionLimit(cfg.SubmitLimiter))
		}
		if cfg.Appointments != nil {
			cfg.Appointments.Routes(staff)
		}
		if cfg.Personal != nil {
			cfg.Personal.Mount(staff, cfg.PersonalRoutes...)
			if cfg.Contacts != nil {
				staff.Get("/prisoner/{prisonerNumber}/personal", cfg.Personal.Overview(cfg.Contacts, cfg.History, cfg.PersonalRoutes))
			}
		}
	})

	return otelhttp.NewHandler(r, "prisoner-profile",
		otelhttp.WithFilter(func(req *http.Request) bool {
			return req.URL.Path != "/health" && req.URL.Path != "/metrics"
		}),
	)
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := map[string]string{"status": "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp[name] = "unavailable"
				resp["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp[name] = "ok"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
