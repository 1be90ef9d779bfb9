package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/calmora/teletherapy-platform/internal/availability"
	"github.com/calmora/teletherapy-platform/internal/bookings"
	httpmiddleware "github.com/calmora/teletherapy-platform/internal/http/middleware"
	"github.com/calmora/teletherapy-platform/internal/payments"
	"github.com/calmora/teletherapy-platform/internal/therapists"
	"github.com/calmora/teletherapy-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	TherapistsHandler   *therapists.Handler
	AvailabilityHandler *availability.Handler
	BookingsHandler     *bookings.Handler
	PaymentsHandler     *payments.Handler
	PaymentsWebhook     *payments.WebhookHandler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
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

	r.Get("/health", handleHealth)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.PaymentsWebhook != nil {
		r.Post("/webhooks/payments", cfg.PaymentsWebhook.Handle)
	}

	r.Route("/therapists", func(r chi.Router) {
		if cfg.TherapistsHandler != nil {
			r.Get("/", cfg.TherapistsHandler.List)
			r.Post("/", cfg.TherapistsHandler.Create)
			r.Get("/{therapistID}", cfg.TherapistsHandler.Get)
			r.Delete("/{therapistID}", cfg.TherapistsHandler.Deactivate)
		}
		if cfg.AvailabilityHandler != nil {
			r.Get("/{therapistID}/availability", cfg.AvailabilityHandler.GetSchedule)
			r.Put("/{therapistID}/availability", cfg.AvailabilityHandler.SaveSchedule)
			// Slot listings must always reflect the latest schedule.
			r.With(httpmiddleware.NoCache).Get("/{therapistID}/availability/slots", cfg.AvailabilityHandler.ListSlots)
			r.Get("/{therapistID}/availability/overrides", cfg.AvailabilityHandler.ListOverrides)
			r.Put("/{therapistID}/availability/overrides", cfg.AvailabilityHandler.SaveOverride)
			r.Delete("/{therapistID}/availability/overrides/{overrideID}", cfg.AvailabilityHandler.DeleteOverride)
		}
	})

	if cfg.BookingsHandler != nil {
		r.Mount("/bookings", cfg.BookingsHandler.Routes())
	}
	if cfg.PaymentsHandler != nil {
		r.Mount("/payments", cfg.PaymentsHandler.Routes())
	}

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
