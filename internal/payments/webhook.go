package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/calmora/teletherapy-platform/pkg/logging"
)

// SignatureHeader carries the provider's HMAC of the request body.
const SignatureHeader = "X-Signature"

// WebhookHandler receives provider payment events.
type WebhookHandler struct {
	signatureKey string
	service      *Service
	logger       *logging.Logger
}

// NewWebhookHandler constructs a webhook receiver.
func NewWebhookHandler(signatureKey string, service *Service, logger *logging.Logger) *WebhookHandler {
	if service == nil {
		panic("payments: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{signatureKey: signatureKey, service: service, logger: logger}
}

type providerEvent struct {
	Type string `json:"type"`
	Data struct {
		PaymentRef string `json:"payment_ref"`
	} `json:"data"`
}

// Handle verifies the signature and applies the event.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if !verifySignature(h.signatureKey, payload, r.Header.Get(SignatureHeader)) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var evt providerEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		h.logger.Error("failed to decode payment event", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if evt.Type == "" || evt.Data.PaymentRef == "" {
		http.Error(w, "missing event fields", http.StatusBadRequest)
		return
	}

	payment, err := h.service.ApplyProviderEvent(r.Context(), evt.Data.PaymentRef, evt.Type)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// The event may have raced intent creation; the provider retries.
			h.logger.Warn("payment event for unknown ref", "provider_ref", evt.Data.PaymentRef)
			http.Error(w, "unknown payment", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to apply payment event", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if payment == nil {
		// Unhandled event type; acknowledge so the provider stops retrying.
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func verifySignature(key string, payload []byte, signature string) bool {
	if key == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
