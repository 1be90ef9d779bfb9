package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Payment lifecycle statuses.
const (
	StatusDepositPending = "deposit_pending"
	StatusDepositPaid    = "deposit_paid"
	StatusRefundPending  = "refund_pending"
	StatusRefunded       = "refunded"
	StatusFailed         = "failed"
)

// Payment is a deposit collected for a booking.
type Payment struct {
	ID          string    `json:"id"`
	BookingID   string    `json:"bookingId"`
	Provider    string    `json:"provider"`
	ProviderRef string    `json:"providerRef,omitempty"`
	AmountCents int       `json:"amountCents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when no payment matches the lookup.
var ErrNotFound = errors.New("payments: not found")

// PgxPool is the pool subset the repository needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists payments and their lifecycle transitions.
type Repository struct {
	pool PgxPool
}

// NewRepository creates a repository backed by pgx.
func NewRepository(pool PgxPool) *Repository {
	if pool == nil {
		panic("payments: pgx pool required")
	}
	return &Repository{pool: pool}
}

const paymentColumns = `id, booking_id, provider, COALESCE(provider_ref, ''), amount_cents,
	currency, status, created_at, updated_at`

// CreateIntent persists a payment in deposit pending status.
func (r *Repository) CreateIntent(ctx context.Context, bookingID, provider string, amountCents int, currency string) (*Payment, error) {
	p := Payment{
		ID:          uuid.NewString(),
		BookingID:   bookingID,
		Provider:    provider,
		AmountCents: amountCents,
		Currency:    currency,
		Status:      StatusDepositPending,
	}
	query := `
		INSERT INTO payments (id, booking_id, provider, amount_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		p.ID, p.BookingID, p.Provider, p.AmountCents, p.Currency, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("payments: insert intent failed: %w", err)
	}
	return &p, nil
}

// SetProviderRef records the provider's reference for an intent.
func (r *Repository) SetProviderRef(ctx context.Context, id, providerRef string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments SET provider_ref = $2, updated_at = now() WHERE id = $1`,
		id, providerRef,
	)
	if err != nil {
		return fmt.Errorf("payments: set provider ref failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatusByProviderRef transitions a payment keyed by the provider
// reference. Returns the updated row so callers can act on it.
func (r *Repository) UpdateStatusByProviderRef(ctx context.Context, provider, providerRef, status string) (*Payment, error) {
	query := `
		UPDATE payments SET status = $3, updated_at = now()
		WHERE provider = $1 AND provider_ref = $2
		RETURNING ` + paymentColumns
	var p Payment
	if err := r.pool.QueryRow(ctx, query, provider, providerRef, status).Scan(
		&p.ID, &p.BookingID, &p.Provider, &p.ProviderRef, &p.AmountCents,
		&p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("payments: update by provider ref failed: %w", err)
	}
	return &p, nil
}

// UpdateStatusByID transitions a payment keyed by our identifier.
func (r *Repository) UpdateStatusByID(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("payments: update by id failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches a payment.
func (r *Repository) GetByID(ctx context.Context, id string) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	var p Payment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.BookingID, &p.Provider, &p.ProviderRef, &p.AmountCents,
		&p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("payments: load by id failed: %w", err)
	}
	return &p, nil
}

// GetByBookingID fetches the most recent payment for a booking.
func (r *Repository) GetByBookingID(ctx context.Context, bookingID string) (*Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments WHERE booking_id = $1
		ORDER BY created_at DESC LIMIT 1
	`
	var p Payment
	if err := r.pool.QueryRow(ctx, query, bookingID).Scan(
		&p.ID, &p.BookingID, &p.Provider, &p.ProviderRef, &p.AmountCents,
		&p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("payments: load by booking failed: %w", err)
	}
	return &p, nil
}
