package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// primaryTemplateName is the single logical document slot each therapist
// owns; upserts always target it, so at most one row is ever active.
const primaryTemplateName = "primary"

// WeeklyStore reads and writes the consolidated JSON schedule document.
type WeeklyStore struct {
	pool PgxPool
}

// NewWeeklyStore creates the adapter.
func NewWeeklyStore(pool PgxPool) *WeeklyStore {
	if pool == nil {
		panic("availability: pgx pool required")
	}
	return &WeeklyStore{pool: pool}
}

// ErrNoDocument reports that a therapist has never saved a weekly
// document. Callers fall back to the legacy rows.
var ErrNoDocument = errors.New("availability: no weekly schedule document")

// ReadDocument loads the active weekly document for a therapist.
func (s *WeeklyStore) ReadDocument(ctx context.Context, therapistID string) (*WeeklyAvailability, error) {
	query := `
		SELECT schedule
		FROM weekly_schedules
		WHERE therapist_id = $1 AND template_name = $2 AND is_active = true
	`
	var raw []byte
	if err := s.pool.QueryRow(ctx, query, therapistID, primaryTemplateName).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoDocument
		}
		return nil, fmt.Errorf("availability: select weekly schedule: %w", err)
	}
	var doc WeeklyAvailability
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("availability: decode weekly schedule: %w", err)
	}
	return &doc, nil
}

// UpsertDocument stores the document, replacing any prior version for the
// primary template. Returns the row id.
func (s *WeeklyStore) UpsertDocument(ctx context.Context, therapistID string, doc *WeeklyAvailability) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("availability: encode weekly schedule: %w", err)
	}
	query := `
		INSERT INTO weekly_schedules (id, therapist_id, template_name, schedule, is_active)
		VALUES (gen_random_uuid(), $1, $2, $3, true)
		ON CONFLICT (therapist_id, template_name)
		DO UPDATE SET schedule = EXCLUDED.schedule, is_active = true, updated_at = now()
		RETURNING id
	`
	var id string
	if err := s.pool.QueryRow(ctx, query, therapistID, primaryTemplateName, raw).Scan(&id); err != nil {
		return "", fmt.Errorf("availability: upsert weekly schedule: %w", err)
	}
	return id, nil
}
