package bookings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calmora/teletherapy-platform/pkg/logging"
)

// Handler provides HTTP endpoints for booking flows.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a bookings HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("bookings: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns booking routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{bookingID}", h.Get)
	r.Post("/{bookingID}/cancel", h.Cancel)
	return r
}

// List returns a therapist's bookings for one date.
// GET /bookings?therapistId=...&date=YYYY-MM-DD
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	therapistID := r.URL.Query().Get("therapistId")
	date := r.URL.Query().Get("date")
	if therapistID == "" || date == "" {
		http.Error(w, `{"error": "therapistId and date are required"}`, http.StatusBadRequest)
		return
	}

	list, err := h.service.ListForTherapistDate(r.Context(), therapistID, date)
	if err != nil {
		h.logger.Error("failed to list bookings", "therapist_id", therapistID, "date", date, "error", err)
		http.Error(w, `{"error": "failed to list bookings"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Booking{}
	}
	writeJSON(w, h.logger, http.StatusOK, list)
}

// Create confirms a new booking.
// POST /bookings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	booking, err := h.service.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotUnavailable):
			http.Error(w, `{"error": "requested slot is not available"}`, http.StatusConflict)
		default:
			h.logger.Error("failed to create booking", "error", err)
			http.Error(w, `{"error": "failed to create booking"}`, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, booking)
}

// Get returns one booking.
// GET /bookings/{bookingID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingID")
	booking, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "booking not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load booking", "booking_id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, booking)
}

// Cancel cancels a booking.
// POST /bookings/{bookingID}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingID")
	booking, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "booking not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to cancel booking", "booking_id", id, "error", err)
		http.Error(w, `{"error": "failed to cancel booking"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, booking)
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
