package availability

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calmora/teletherapy-platform/pkg/logging"
)

// Handler provides HTTP endpoints for schedule and override management
// plus the public slot-listing endpoint used by booking flows.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates the availability HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("availability: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes returns a chi router with availability routes, mounted under
// /therapists.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{therapistID}/availability", h.GetSchedule)
	r.Put("/{therapistID}/availability", h.SaveSchedule)
	r.Get("/{therapistID}/availability/slots", h.ListSlots)
	r.Get("/{therapistID}/availability/overrides", h.ListOverrides)
	r.Put("/{therapistID}/availability/overrides", h.SaveOverride)
	r.Delete("/{therapistID}/availability/overrides/{overrideID}", h.DeleteOverride)
	return r
}

// GetSchedule returns the effective weekly schedule document.
// GET /therapists/{therapistID}/availability
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	therapistID := chi.URLParam(r, "therapistID")
	if therapistID == "" {
		http.Error(w, `{"error": "therapist_id required"}`, http.StatusBadRequest)
		return
	}
	doc := h.service.GetWeeklySchedule(r.Context(), therapistID)
	writeJSON(w, h.logger, http.StatusOK, doc)
}

// SaveSchedule validates and persists a weekly schedule document.
// PUT /therapists/{therapistID}/availability
func (h *Handler) SaveSchedule(w http.ResponseWriter, r *http.Request) {
	therapistID := chi.URLParam(r, "therapistID")
	if therapistID == "" {
		http.Error(w, `{"error": "therapist_id required"}`, http.StatusBadRequest)
		return
	}

	var doc WeeklyAvailability
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	result := h.service.SaveWeeklySchedule(r.Context(), therapistID, &doc)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, h.logger, status, result)
}

// ListSlots returns the resolved bookable slots for one date. Responses
// carry no-store cache headers: booking consumers need a fresh read on
// every call.
// GET /therapists/{therapistID}/availability/slots?date=YYYY-MM-DD
func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	therapistID := chi.URLParam(r, "therapistID")
	date := r.URL.Query().Get("date")
	if therapistID == "" || date == "" {
		http.Error(w, `{"error": "therapist_id and date required"}`, http.StatusBadRequest)
		return
	}

	resolved, err := h.service.ResolveDate(r.Context(), therapistID, date)
	if err != nil {
		http.Error(w, `{"error": "invalid date, expected YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	writeJSON(w, h.logger, http.StatusOK, resolved)
}

// ListOverrides returns overrides in an optional inclusive date range.
// GET /therapists/{therapistID}/availability/overrides?start=&end=
func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	therapistID := chi.URLParam(r, "therapistID")
	if therapistID == "" {
		http.Error(w, `{"error": "therapist_id required"}`, http.StatusBadRequest)
		return
	}
	overrides := h.service.ListOverrides(r.Context(),
		therapistID,
		r.URL.Query().Get("start"),
		r.URL.Query().Get("end"),
	)
	writeJSON(w, h.logger, http.StatusOK, overrides)
}

// SaveOverride upserts a date-specific override.
// PUT /therapists/{therapistID}/availability/overrides
func (h *Handler) SaveOverride(w http.ResponseWriter, r *http.Request) {
	therapistID := chi.URLParam(r, "therapistID")
	if therapistID == "" {
		http.Error(w, `{"error": "therapist_id required"}`, http.StatusBadRequest)
		return
	}

	var o Override
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	result := h.service.SaveOverride(r.Context(), therapistID, o)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, h.logger, status, result)
}

// DeleteOverride removes an override by id.
// DELETE /therapists/{therapistID}/availability/overrides/{overrideID}
func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	overrideID := chi.URLParam(r, "overrideID")
	if overrideID == "" {
		http.Error(w, `{"error": "override_id required"}`, http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteOverride(r.Context(), overrideID); err != nil {
		http.Error(w, `{"error": "failed to delete override"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
