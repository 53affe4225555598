package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/funnelkit/lead-capture-api/internal/funnel"
	httpmiddleware "github.com/funnelkit/lead-capture-api/internal/http/middleware"
	"github.com/funnelkit/lead-capture-api/internal/leads"
	"github.com/funnelkit/lead-capture-api/pkg/logging"
	"github.com/funnelkit/lead-capture-api/web"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	FunnelHandler      *funnel.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// CaptureRateLimit throttles POST /api/leads per IP; zero disables it.
	CaptureRateLimit float64
	CaptureRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
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

	r.Get("/", web.FormHandler())
	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/leads", func(r chi.Router) {
			if cfg.CaptureRateLimit > 0 {
				r.With(httpmiddleware.RateLimit(cfg.CaptureRateLimit, cfg.CaptureRateBurst)).
					Post("/", cfg.LeadsHandler.CreateLead)
			} else {
				r.Post("/", cfg.LeadsHandler.CreateLead)
			}
			r.Get("/", cfg.LeadsHandler.ListLeads)
		})

		if cfg.FunnelHandler != nil {
			api.Get("/funnel/{campaignID}/status", cfg.FunnelHandler.GetStatus)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
