package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Booking statuses.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Booking is a scheduled therapy session.
type Booking struct {
	ID           string    `json:"id"`
	TherapistID  string    `json:"therapistId"`
	PatientID    string    `json:"patientId"`
	SessionDate  string    `json:"sessionDate"` // "2025-03-12"
	StartTime    string    `json:"startTime"`   // "14:00"
	EndTime      string    `json:"endTime"`
	SessionType  string    `json:"sessionType"`
	Status       string    `json:"status"`
	VideoRoomURL string    `json:"videoRoomUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ErrNotFound is returned when a booking id does not exist.
var ErrNotFound = errors.New("bookings: not found")

// PgxPool is the pool subset the repository needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence helpers for bookings.
type Repository struct {
	pool PgxPool
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool PgxPool) *Repository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &Repository{pool: pool}
}

const bookingColumns = `id, therapist_id, patient_id, session_date::text, start_time, end_time,
	session_type, status, COALESCE(video_room_url, ''), created_at, updated_at`

// Create inserts a confirmed booking row.
func (r *Repository) Create(ctx context.Context, b Booking) (*Booking, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO bookings
			(id, therapist_id, patient_id, session_date, start_time, end_time, session_type, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	status := b.Status
	if status == "" {
		status = StatusConfirmed
	}
	if err := r.pool.QueryRow(ctx, query,
		id,
		b.TherapistID,
		b.PatientID,
		b.SessionDate,
		b.StartTime,
		b.EndTime,
		b.SessionType,
		status,
	).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, fmt.Errorf("bookings: insert failed: %w", err)
	}
	b.ID = id
	b.Status = status
	return &b, nil
}

// GetByID fetches a booking.
func (r *Repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	var b Booking
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.TherapistID, &b.PatientID, &b.SessionDate, &b.StartTime, &b.EndTime,
		&b.SessionType, &b.Status, &b.VideoRoomURL, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("bookings: select failed: %w", err)
	}
	return &b, nil
}

// ListForTherapistDate returns non-cancelled bookings for one therapist
// and date, ordered by start time.
func (r *Repository) ListForTherapistDate(ctx context.Context, therapistID, date string) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE therapist_id = $1 AND session_date = $2 AND status <> $3
		ORDER BY start_time ASC
	`
	rows, err := r.pool.Query(ctx, query, therapistID, date, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("bookings: select by date failed: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.TherapistID, &b.PatientID, &b.SessionDate, &b.StartTime, &b.EndTime,
			&b.SessionType, &b.Status, &b.VideoRoomURL, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("bookings: scan failed: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: iterate failed: %w", err)
	}
	return out, nil
}

// UpdateStatus transitions a booking's status.
func (r *Repository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("bookings: update status failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVideoRoomURL records the provisioned video room for a booking.
func (r *Repository) SetVideoRoomURL(ctx context.Context, id, roomURL string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE bookings SET video_room_url = $2, updated_at = now() WHERE id = $1`,
		id, roomURL,
	)
	if err != nil {
		return fmt.Errorf("bookings: update room url failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
