package therapists

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Therapist is a provider on the platform.
type Therapist struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Timezone    string    `json:"timezone"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ErrNotFound is returned when a therapist id does not exist.
var ErrNotFound = errors.New("therapists: not found")

// PgxPool is the pool subset the repository needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores therapist records in the relational database.
type Repository struct {
	pool PgxPool
}

// NewRepository initializes a repo backed by pgxpool.
func NewRepository(pool PgxPool) *Repository {
	if pool == nil {
		panic("therapists: pgx pool required")
	}
	return &Repository{pool: pool}
}

// Create inserts a new therapist row.
func (r *Repository) Create(ctx context.Context, displayName, timezone string) (*Therapist, error) {
	if displayName == "" {
		return nil, fmt.Errorf("therapists: display name required")
	}
	if timezone == "" {
		timezone = "UTC"
	}
	id := uuid.NewString()
	query := `
		INSERT INTO therapists (id, display_name, timezone, is_active)
		VALUES ($1, $2, $3, true)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query, id, displayName, timezone).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("therapists: insert failed: %w", err)
	}
	return &Therapist{
		ID:          id,
		DisplayName: displayName,
		Timezone:    timezone,
		IsActive:    true,
		CreatedAt:   createdAt,
	}, nil
}

// GetByID fetches a therapist.
func (r *Repository) GetByID(ctx context.Context, id string) (*Therapist, error) {
	query := `
		SELECT id, display_name, timezone, is_active, created_at
		FROM therapists
		WHERE id = $1
	`
	var t Therapist
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.DisplayName,
		&t.Timezone,
		&t.IsActive,
		&t.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("therapists: select failed: %w", err)
	}
	return &t, nil
}

// ListActive returns active therapists ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]Therapist, error) {
	query := `
		SELECT id, display_name, timezone, is_active, created_at
		FROM therapists
		WHERE is_active = true
		ORDER BY display_name ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("therapists: select active failed: %w", err)
	}
	defer rows.Close()

	var out []Therapist
	for rows.Next() {
		var t Therapist
		if err := rows.Scan(&t.ID, &t.DisplayName, &t.Timezone, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("therapists: scan failed: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("therapists: iterate failed: %w", err)
	}
	return out, nil
}

// Deactivate soft-disables a therapist.
func (r *Repository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE therapists SET is_active = false WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("therapists: deactivate failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
