// Package router assembles the HTTP surface: staff planning and catalog
// endpoints, the patient tracker, and clinic reports.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clearpath-health/cataract-planner/internal/adherence"
	"github.com/clearpath-health/cataract-planner/internal/catalog"
	httpmiddleware "github.com/clearpath-health/cataract-planner/internal/http/middleware"
	"github.com/clearpath-health/cataract-planner/internal/planning"
	"github.com/clearpath-health/cataract-planner/internal/reports"
	"github.com/clearpath-health/cataract-planner/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger          *logging.Logger
	CatalogHandler  *catalog.Handler
	PlanningHandler *planning.Handler
	TrackerHandler  *adherence.Handler
	ReportsHandler  *reports.StatsHandler
	MetricsHandler  http.Handler

	CORSAllowedOrigins []string
	// TrackerRateLimit caps patient tracker requests per second per IP.
	// Zero disables rate limiting.
	TrackerRateLimit float64
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/clinics/{clinicID}", func(clinic chi.Router) {
		// Staff surface.
		if cfg.CatalogHandler != nil {
			clinic.Mount("/catalog", cfg.CatalogHandler.Routes())
		}
		if cfg.ReportsHandler != nil {
			clinic.Mount("/reports", cfg.ReportsHandler.Routes())
		}

		clinic.Route("/patients/{patientID}", func(patient chi.Router) {
			if cfg.PlanningHandler != nil {
				patient.Mount("/plan", cfg.PlanningHandler.Routes())
			}
			// Patient surface: the tracker is polled from phones, so it
			// gets its own rate limit.
			if cfg.TrackerHandler != nil {
				patient.Group(func(tracker chi.Router) {
					if cfg.TrackerRateLimit > 0 {
						tracker.Use(httpmiddleware.RateLimit(cfg.TrackerRateLimit, int(cfg.TrackerRateLimit)*2))
					}
					tracker.Mount("/tracker", cfg.TrackerHandler.Routes())
				})
			}
		})
	})

	return r
}
