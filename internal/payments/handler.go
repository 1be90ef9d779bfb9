package payments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/calmora/teletherapy-platform/pkg/logging"
)

// Handler exposes deposit collection and refunds over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler constructs a payments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("payments: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes wires the payments endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.collectDeposit)
	r.Get("/{paymentID}", h.getPayment)
	r.Post("/{paymentID}/refund", h.refund)
	return r
}

func (h *Handler) collectDeposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	deposit, err := h.service.CollectDeposit(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to collect deposit", "booking_id", req.BookingID, "error", err)
		http.Error(w, `{"error": "failed to create deposit checkout"}`, http.StatusBadGateway)
		return
	}
	h.writeJSON(w, http.StatusCreated, deposit)
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")

	payment, err := h.service.Get(r.Context(), paymentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "payment not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load payment", "payment_id", paymentID, "error", err)
		http.Error(w, `{"error": "failed to load payment"}`, http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, payment)
}

func (h *Handler) refund(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")

	payment, err := h.service.Refund(r.Context(), paymentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "payment not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to refund payment", "payment_id", paymentID, "error", err)
		http.Error(w, `{"error": "refund failed"}`, http.StatusConflict)
		return
	}
	h.writeJSON(w, http.StatusOK, payment)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
