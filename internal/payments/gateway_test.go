package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostedCheckoutClientCreatesPaymentLink(t *testing.T) {
	var gotAuth string
	var gotBody paymentLinkRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payment-links", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(paymentLinkResponse{ID: "pl_123", URL: "https://pay.example/pl_123"})
	}))
	defer server.Close()

	client := NewHostedCheckoutClient(server.URL, "sk_test", nil)
	resp, err := client.CreatePaymentLink(context.Background(), CheckoutParams{
		PaymentID:   "pay-1",
		BookingID:   "booking-1",
		AmountCents: 5000,
		Currency:    "usd",
		Description: "Session deposit",
	})
	require.NoError(t, err)
	assert.Equal(t, "pl_123", resp.ProviderRef)
	assert.Equal(t, "https://pay.example/pl_123", resp.URL)
	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.Equal(t, "pay-1", gotBody.ReferenceID)
	assert.Equal(t, 5000, gotBody.AmountCents)
}

func TestHostedCheckoutClientRejectsProviderErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid amount"}`, http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewHostedCheckoutClient(server.URL, "sk_test", nil)
	_, err := client.CreatePaymentLink(context.Background(), CheckoutParams{
		PaymentID:   "pay-1",
		AmountCents: 5000,
		Currency:    "usd",
	})
	assert.Error(t, err)
}

func TestHostedCheckoutClientRequiresCredentials(t *testing.T) {
	client := NewHostedCheckoutClient("", "", nil)
	_, err := client.CreatePaymentLink(context.Background(), CheckoutParams{PaymentID: "pay-1", AmountCents: 5000})
	assert.Error(t, err)
}

func TestHostedCheckoutClientRefund(t *testing.T) {
	var gotBody refundRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/refunds", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHostedCheckoutClient(server.URL, "sk_test", nil)
	err := client.Refund(context.Background(), "pl_123", 5000)
	require.NoError(t, err)
	assert.Equal(t, "pl_123", gotBody.PaymentRef)
	assert.Equal(t, 5000, gotBody.AmountCents)
}

func TestFakeGatewayBuildsInternalURL(t *testing.T) {
	gateway := NewFakeGateway("https://dev.calmora.test/")
	resp, err := gateway.CreatePaymentLink(context.Background(), CheckoutParams{PaymentID: "pay-1"})
	require.NoError(t, err)
	assert.Equal(t, "https://dev.calmora.test/payments/fake/pay-1", resp.URL)
	assert.Equal(t, "fake:pay-1", resp.ProviderRef)
}

func TestFakeGatewayRequiresAbsoluteBaseURL(t *testing.T) {
	gateway := NewFakeGateway("dev.calmora.test")
	_, err := gateway.CreatePaymentLink(context.Background(), CheckoutParams{PaymentID: "pay-1"})
	assert.Error(t, err)
}
