package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the availability stores need.
// Narrow on purpose so tests can substitute pgxmock.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LegacyStore reads and writes the one-row-per-recurring-slot template
// representation. It remains the durable fallback for readers that
// predate the weekly document.
type LegacyStore struct {
	pool PgxPool
}

// NewLegacyStore creates the adapter.
func NewLegacyStore(pool PgxPool) *LegacyStore {
	if pool == nil {
		panic("availability: pgx pool required")
	}
	return &LegacyStore{pool: pool}
}

// ReadRows returns the active template rows for a therapist ordered by
// day of week. Soft-deleted rows (is_active=false) are excluded.
func (s *LegacyStore) ReadRows(ctx context.Context, therapistID string) ([]LegacyRow, error) {
	query := `
		SELECT id, therapist_id, day_of_week, start_time, end_time,
		       session_duration, session_type, max_sessions, is_active
		FROM availability_templates
		WHERE therapist_id = $1 AND is_active = true
		ORDER BY day_of_week ASC, start_time ASC
	`
	rows, err := s.pool.Query(ctx, query, therapistID)
	if err != nil {
		return nil, fmt.Errorf("availability: select templates: %w", err)
	}
	defer rows.Close()

	var out []LegacyRow
	for rows.Next() {
		var r LegacyRow
		if err := rows.Scan(
			&r.ID,
			&r.TherapistID,
			&r.DayOfWeek,
			&r.StartTime,
			&r.EndTime,
			&r.SessionDuration,
			&r.SessionType,
			&r.MaxSessions,
			&r.IsActive,
		); err != nil {
			return nil, fmt.Errorf("availability: scan template row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("availability: iterate template rows: %w", err)
	}
	return out, nil
}

// ReplaceRows deletes all template rows for the therapist and inserts the
// new set. The two steps are not atomic from the caller's perspective; a
// failure after the delete leaves the therapist with zero legacy rows.
func (s *LegacyStore) ReplaceRows(ctx context.Context, therapistID string, rows []LegacyRow) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM availability_templates WHERE therapist_id = $1`,
		therapistID,
	); err != nil {
		return fmt.Errorf("availability: delete templates: %w", err)
	}

	insert := `
		INSERT INTO availability_templates
			(id, therapist_id, day_of_week, start_time, end_time,
			 session_duration, session_type, max_sessions, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, r := range rows {
		id := r.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := s.pool.Exec(ctx, insert,
			id,
			therapistID,
			r.DayOfWeek,
			r.StartTime,
			r.EndTime,
			r.SessionDuration,
			r.SessionType,
			r.MaxSessions,
			r.IsActive,
		); err != nil {
			return fmt.Errorf("availability: insert template row: %w", err)
		}
	}
	return nil
}
