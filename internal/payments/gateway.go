package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/calmora/teletherapy-platform/pkg/logging"
)

// CheckoutParams describes a hosted deposit checkout request.
type CheckoutParams struct {
	PaymentID   string
	BookingID   string
	AmountCents int
	Currency    string
	Description string
}

// CheckoutResponse is the provider's hosted checkout handle.
type CheckoutResponse struct {
	URL         string
	ProviderRef string
}

// Gateway abstracts the hosted payment provider.
type Gateway interface {
	CreatePaymentLink(ctx context.Context, params CheckoutParams) (*CheckoutResponse, error)
	Refund(ctx context.Context, providerRef string, amountCents int) error
}

// HostedCheckoutClient talks to the payment provider's REST API.
type HostedCheckoutClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewHostedCheckoutClient creates a provider client.
func NewHostedCheckoutClient(baseURL, apiKey string, logger *logging.Logger) *HostedCheckoutClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &HostedCheckoutClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type paymentLinkRequest struct {
	ReferenceID string `json:"reference_id"`
	AmountCents int    `json:"amount_cents"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
}

type paymentLinkResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreatePaymentLink requests a hosted checkout page for a deposit.
func (c *HostedCheckoutClient) CreatePaymentLink(ctx context.Context, params CheckoutParams) (*CheckoutResponse, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return nil, fmt.Errorf("payments: gateway credentials not configured")
	}
	if params.AmountCents <= 0 {
		return nil, fmt.Errorf("payments: amount must be positive")
	}

	body, err := json.Marshal(paymentLinkRequest{
		ReferenceID: params.PaymentID,
		AmountCents: params.AmountCents,
		Currency:    params.Currency,
		Description: params.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("payments: encode link request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payment-links", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("payments: build link request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payments: link request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Error("payment link creation rejected", "status", resp.StatusCode, "body", string(raw))
		return nil, fmt.Errorf("payments: provider returned status %d", resp.StatusCode)
	}

	var out paymentLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("payments: decode link response: %w", err)
	}
	if out.URL == "" || out.ID == "" {
		return nil, fmt.Errorf("payments: provider response missing link")
	}
	return &CheckoutResponse{URL: out.URL, ProviderRef: out.ID}, nil
}

type refundRequest struct {
	PaymentRef  string `json:"payment_ref"`
	AmountCents int    `json:"amount_cents"`
}

// Refund asks the provider to return a collected deposit.
func (c *HostedCheckoutClient) Refund(ctx context.Context, providerRef string, amountCents int) error {
	if providerRef == "" {
		return fmt.Errorf("payments: provider ref required for refund")
	}

	body, err := json.Marshal(refundRequest{PaymentRef: providerRef, AmountCents: amountCents})
	if err != nil {
		return fmt.Errorf("payments: encode refund request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/refunds", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("payments: build refund request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payments: refund request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Error("refund rejected", "status", resp.StatusCode, "body", string(raw))
		return fmt.Errorf("payments: provider returned status %d", resp.StatusCode)
	}
	return nil
}

// FakeGateway generates internal checkout URLs so deposits can be
// exercised without provider credentials. Gate behind configuration;
// never enable in production.
type FakeGateway struct {
	publicBaseURL string
}

// NewFakeGateway creates the dev/demo gateway.
func NewFakeGateway(publicBaseURL string) *FakeGateway {
	return &FakeGateway{publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")}
}

func (g *FakeGateway) CreatePaymentLink(ctx context.Context, params CheckoutParams) (*CheckoutResponse, error) {
	_ = ctx
	if params.PaymentID == "" {
		return nil, fmt.Errorf("payments: fake checkout requires payment id")
	}
	if !isValidBaseURL(g.publicBaseURL) {
		return nil, fmt.Errorf("payments: fake checkout requires an absolute http(s) base URL")
	}
	return &CheckoutResponse{
		URL:         fmt.Sprintf("%s/payments/fake/%s", g.publicBaseURL, params.PaymentID),
		ProviderRef: "fake:" + params.PaymentID,
	}, nil
}

func (g *FakeGateway) Refund(ctx context.Context, providerRef string, amountCents int) error {
	_ = ctx
	if providerRef == "" {
		return fmt.Errorf("payments: provider ref required for refund")
	}
	return nil
}

func isValidBaseURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}
