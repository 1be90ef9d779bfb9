package payments

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/calmora/teletherapy-platform/pkg/logging"
)

var paymentsTracer = otel.Tracer("calmora.internal.payments")

// Service coordinates deposit collection and refunds.
type Service struct {
	repo     *Repository
	gateway  Gateway
	provider string
	logger   *logging.Logger
}

// NewService constructs a payments service.
func NewService(repo *Repository, gateway Gateway, provider string, logger *logging.Logger) *Service {
	if repo == nil {
		panic("payments: repository required")
	}
	if gateway == nil {
		panic("payments: gateway required")
	}
	if provider == "" {
		provider = "hosted"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, gateway: gateway, provider: provider, logger: logger}
}

// DepositRequest asks for a deposit against a booking.
type DepositRequest struct {
	BookingID   string `json:"bookingId"`
	AmountCents int    `json:"amountCents"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// Deposit is a pending payment plus the checkout URL to complete it.
type Deposit struct {
	Payment     *Payment `json:"payment"`
	CheckoutURL string   `json:"checkoutUrl"`
}

// CollectDeposit creates a payment intent and a hosted checkout link.
func (s *Service) CollectDeposit(ctx context.Context, req DepositRequest) (*Deposit, error) {
	ctx, span := paymentsTracer.Start(ctx, "payments.collect_deposit")
	defer span.End()
	span.SetAttributes(attribute.String("calmora.booking_id", req.BookingID))

	if req.BookingID == "" {
		return nil, fmt.Errorf("payments: booking id required")
	}
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("payments: amount must be positive")
	}
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	payment, err := s.repo.CreateIntent(ctx, req.BookingID, s.provider, req.AmountCents, currency)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	checkout, err := s.gateway.CreatePaymentLink(ctx, CheckoutParams{
		PaymentID:   payment.ID,
		BookingID:   req.BookingID,
		AmountCents: req.AmountCents,
		Currency:    currency,
		Description: req.Description,
	})
	if err != nil {
		span.RecordError(err)
		if ferr := s.repo.UpdateStatusByID(ctx, payment.ID, StatusFailed); ferr != nil {
			s.logger.Warn("failed to mark payment failed", "payment_id", payment.ID, "error", ferr)
		}
		return nil, err
	}

	if err := s.repo.SetProviderRef(ctx, payment.ID, checkout.ProviderRef); err != nil {
		span.RecordError(err)
		return nil, err
	}
	payment.ProviderRef = checkout.ProviderRef

	s.logger.Info("deposit checkout created",
		"payment_id", payment.ID,
		"booking_id", req.BookingID,
		"amount_cents", req.AmountCents,
	)
	return &Deposit{Payment: payment, CheckoutURL: checkout.URL}, nil
}

// ApplyProviderEvent transitions the payment matching a provider
// reference. Replayed events land on the same row with the same status,
// so processing is idempotent.
func (s *Service) ApplyProviderEvent(ctx context.Context, providerRef, eventType string) (*Payment, error) {
	ctx, span := paymentsTracer.Start(ctx, "payments.apply_provider_event")
	defer span.End()
	span.SetAttributes(
		attribute.String("calmora.provider_ref", providerRef),
		attribute.String("calmora.event_type", eventType),
	)

	status, ok := statusForEvent(eventType)
	if !ok {
		s.logger.Debug("ignoring unhandled provider event", "event_type", eventType)
		return nil, nil
	}

	payment, err := s.repo.UpdateStatusByProviderRef(ctx, s.provider, providerRef, status)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.Info("payment status updated",
		"payment_id", payment.ID,
		"booking_id", payment.BookingID,
		"status", status,
	)
	return payment, nil
}

// Refund returns a collected deposit to the patient.
func (s *Service) Refund(ctx context.Context, paymentID string) (*Payment, error) {
	ctx, span := paymentsTracer.Start(ctx, "payments.refund")
	defer span.End()
	span.SetAttributes(attribute.String("calmora.payment_id", paymentID))

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == StatusRefunded || payment.Status == StatusRefundPending {
		return payment, nil
	}
	if payment.Status != StatusDepositPaid {
		return nil, fmt.Errorf("payments: cannot refund payment in status %q", payment.Status)
	}

	if err := s.gateway.Refund(ctx, payment.ProviderRef, payment.AmountCents); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.repo.UpdateStatusByID(ctx, payment.ID, StatusRefundPending); err != nil {
		return nil, err
	}
	payment.Status = StatusRefundPending

	s.logger.Info("refund requested", "payment_id", payment.ID, "booking_id", payment.BookingID)
	return payment, nil
}

// Get loads one payment.
func (s *Service) Get(ctx context.Context, paymentID string) (*Payment, error) {
	return s.repo.GetByID(ctx, paymentID)
}

// GetForBooking loads the most recent payment for a booking.
func (s *Service) GetForBooking(ctx context.Context, bookingID string) (*Payment, error) {
	return s.repo.GetByBookingID(ctx, bookingID)
}

func statusForEvent(eventType string) (string, bool) {
	switch eventType {
	case "payment.succeeded", "payment.completed":
		return StatusDepositPaid, true
	case "payment.failed", "payment.canceled":
		return StatusFailed, true
	case "refund.succeeded", "refund.completed":
		return StatusRefunded, true
	default:
		return "", false
	}
}
