package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hollytrail/van-booking/internal/http/handlers"
	httpmiddleware "github.com/hollytrail/van-booking/internal/http/middleware"
	"github.com/hollytrail/van-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Sessions           *handlers.SessionsHandler
	Availability       *handlers.AvailabilityHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// WriteRate throttles session creation and booking submission per IP.
	// Zero disables the limiter.
	WriteRate  float64
	WriteBurst int
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

	r.Get("/health", handlers.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Availability != nil {
		r.Get("/availability", cfg.Availability.Get)
		r.Post("/sync", cfg.Availability.Sync)
	}

	if cfg.Sessions != nil {
		var throttle func(http.Handler) http.Handler
		if cfg.WriteRate > 0 {
			throttle = httpmiddleware.RateLimit(cfg.WriteRate, cfg.WriteBurst)
		}

		r.Route("/sessions", func(sessions chi.Router) {
			if throttle != nil {
				sessions.With(throttle).Post("/", cfg.Sessions.Create)
			} else {
				sessions.Post("/", cfg.Sessions.Create)
			}

			sessions.Route("/{sessionID}", func(s chi.Router) {
				s.Get("/calendar", cfg.Sessions.Calendar)
				s.Post("/select", cfg.Sessions.Select)
				s.Post("/hover", cfg.Sessions.Hover)
				s.Delete("/hover", cfg.Sessions.ClearHover)
				s.Post("/clear", cfg.Sessions.Clear)
				s.Post("/pivot", cfg.Sessions.Pivot)
				s.Get("/quote", cfg.Sessions.Quote)
				if throttle != nil {
					s.With(throttle).Post("/book", cfg.Sessions.Book)
				} else {
					s.Post("/book", cfg.Sessions.Book)
				}
			})
		})
	}

	return r
}
