package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/xucheng2024/clinic-booking/internal/http/middleware"
	"github.com/xucheng2024/clinic-booking/internal/schedule"
	"github.com/xucheng2024/clinic-booking/internal/session"
	"github.com/xucheng2024/clinic-booking/internal/visits"
	"github.com/xucheng2024/clinic-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	SlotsHandler   *schedule.Handler
	VisitsHandler  *visits.Handler
	SessionHandler *session.Handler
	MetricsHandler http.Handler

	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.SlotsHandler != nil {
		r.Get("/clinics/{clinicID}/slots", cfg.SlotsHandler.DaySlots)
	}

	if cfg.VisitsHandler != nil {
		r.Route("/visits", func(r chi.Router) {
			r.Get("/", cfg.VisitsHandler.List)
			r.Post("/", cfg.VisitsHandler.Book)
			r.Post("/{visitID}/cancel", cfg.VisitsHandler.Cancel)
		})
	}

	if cfg.SessionHandler != nil {
		r.Route("/session", func(r chi.Router) {
			r.Post("/", cfg.SessionHandler.Login)
			r.Get("/", cfg.SessionHandler.Status)
			r.Delete("/", cfg.SessionHandler.Logout)
		})
	}

	return r
}
