package therapists

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calmora/teletherapy-platform/pkg/logging"
)

// Handler provides HTTP endpoints for therapist directory management.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a therapist HTTP handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("therapists: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes returns the therapist directory routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{therapistID}", h.Get)
	r.Delete("/{therapistID}", h.Deactivate)
	return r
}

type createRequest struct {
	DisplayName string `json:"displayName"`
	Timezone    string `json:"timezone"`
}

// Create registers a therapist.
// POST /therapists
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	t, err := h.repo.Create(r.Context(), req.DisplayName, req.Timezone)
	if err != nil {
		h.logger.Error("failed to create therapist", "error", err)
		http.Error(w, `{"error": "failed to create therapist"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, t)
}

// Get returns one therapist.
// GET /therapists/{therapistID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "therapistID")
	t, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "therapist not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load therapist", "therapist_id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, t)
}

// List returns all active therapists.
// GET /therapists
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListActive(r.Context())
	if err != nil {
		h.logger.Error("failed to list therapists", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Therapist{}
	}
	writeJSON(w, h.logger, http.StatusOK, list)
}

// Deactivate soft-disables a therapist.
// DELETE /therapists/{therapistID}
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "therapistID")
	if err := h.repo.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "therapist not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to deactivate therapist", "therapist_id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
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
