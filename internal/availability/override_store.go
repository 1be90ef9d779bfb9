package availability

import (
	"context"
	"fmt"
)

// OverrideStore reads and writes date-specific schedule exceptions.
type OverrideStore struct {
	pool PgxPool
}

// NewOverrideStore creates the adapter.
func NewOverrideStore(pool PgxPool) *OverrideStore {
	if pool == nil {
		panic("availability: pgx pool required")
	}
	return &OverrideStore{pool: pool}
}

// ListRows returns overrides for a therapist ascending by date. startDate
// and endDate bound the range inclusively when non-empty.
func (s *OverrideStore) ListRows(ctx context.Context, therapistID, startDate, endDate string) ([]OverrideRow, error) {
	query := `
		SELECT id, therapist_id, override_date::text, override_type, is_available,
		       COALESCE(start_time, ''), COALESCE(end_time, ''),
		       COALESCE(reason, ''), COALESCE(notes, ''), created_at, updated_at
		FROM availability_overrides
		WHERE therapist_id = $1
	`
	args := []any{therapistID}
	if startDate != "" {
		args = append(args, startDate)
		query += fmt.Sprintf(" AND override_date >= $%d", len(args))
	}
	if endDate != "" {
		args = append(args, endDate)
		query += fmt.Sprintf(" AND override_date <= $%d", len(args))
	}
	query += " ORDER BY override_date ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("availability: select overrides: %w", err)
	}
	defer rows.Close()

	var out []OverrideRow
	for rows.Next() {
		var r OverrideRow
		if err := rows.Scan(
			&r.ID,
			&r.TherapistID,
			&r.OverrideDate,
			&r.OverrideType,
			&r.IsAvailable,
			&r.StartTime,
			&r.EndTime,
			&r.Reason,
			&r.Notes,
			&r.CreatedAt,
			&r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("availability: scan override row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("availability: iterate override rows: %w", err)
	}
	return out, nil
}

// UpsertRow stores an override keyed by (therapist, date). A second
// override for the same date replaces the first; overrides are not
// additive.
func (s *OverrideStore) UpsertRow(ctx context.Context, row OverrideRow) (OverrideRow, error) {
	query := `
		INSERT INTO availability_overrides
			(id, therapist_id, override_date, override_type, is_available,
			 start_time, end_time, reason, notes)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''))
		ON CONFLICT (therapist_id, override_date)
		DO UPDATE SET
			override_type = EXCLUDED.override_type,
			is_available = EXCLUDED.is_available,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			reason = EXCLUDED.reason,
			notes = EXCLUDED.notes,
			updated_at = now()
		RETURNING id, therapist_id, override_date::text, override_type, is_available,
		          COALESCE(start_time, ''), COALESCE(end_time, ''),
		          COALESCE(reason, ''), COALESCE(notes, ''), created_at, updated_at
	`
	var stored OverrideRow
	if err := s.pool.QueryRow(ctx, query,
		row.TherapistID,
		row.OverrideDate,
		row.OverrideType,
		row.IsAvailable,
		row.StartTime,
		row.EndTime,
		row.Reason,
		row.Notes,
	).Scan(
		&stored.ID,
		&stored.TherapistID,
		&stored.OverrideDate,
		&stored.OverrideType,
		&stored.IsAvailable,
		&stored.StartTime,
		&stored.EndTime,
		&stored.Reason,
		&stored.Notes,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	); err != nil {
		return OverrideRow{}, fmt.Errorf("availability: upsert override: %w", err)
	}
	return stored, nil
}

// DeleteRow removes an override by id.
func (s *OverrideStore) DeleteRow(ctx context.Context, overrideID string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM availability_overrides WHERE id = $1`,
		overrideID,
	); err != nil {
		return fmt.Errorf("availability: delete override: %w", err)
	}
	return nil
}
