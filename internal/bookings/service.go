package bookings

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/calmora/teletherapy-platform/internal/availability"
	"github.com/calmora/teletherapy-platform/internal/observability/metrics"
	"github.com/calmora/teletherapy-platform/pkg/logging"
)

var bookingsTracer = otel.Tracer("calmora.internal.bookings")

// SlotResolver resolves the effective bookable slots for a date.
type SlotResolver interface {
	ResolveDate(ctx context.Context, therapistID, date string) (*availability.ResolvedDay, error)
}

// RoomProvisioner creates a video room for a confirmed session.
type RoomProvisioner interface {
	EnsureRoom(ctx context.Context, bookingID string) (string, error)
}

// Notifier delivers booking lifecycle notifications.
type Notifier interface {
	NotifyBookingConfirmed(ctx context.Context, b *Booking)
	NotifyBookingCancelled(ctx context.Context, b *Booking)
}

// ErrSlotUnavailable is returned when the requested slot is not bookable.
var ErrSlotUnavailable = errors.New("bookings: requested slot is not available")

// Service confirms bookings against resolved availability.
type Service struct {
	repo     *Repository
	resolver SlotResolver
	rooms    RoomProvisioner
	notifier Notifier
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewService constructs a bookings service. rooms and notifier are
// optional; bookings still confirm when they are absent or failing.
func NewService(repo *Repository, resolver SlotResolver, rooms RoomProvisioner, notifier Notifier, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if resolver == nil {
		panic("bookings: slot resolver required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		resolver: resolver,
		rooms:    rooms,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// CreateRequest describes a requested session.
type CreateRequest struct {
	TherapistID string `json:"therapistId"`
	PatientID   string `json:"patientId"`
	SessionDate string `json:"sessionDate"`
	StartTime   string `json:"startTime"`
}

// Create confirms a booking if the requested start maps to a resolved
// bookable slot that no other booking holds.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("calmora.therapist_id", req.TherapistID),
		attribute.String("calmora.session_date", req.SessionDate),
	)

	if req.TherapistID == "" || req.PatientID == "" || req.SessionDate == "" || req.StartTime == "" {
		return nil, fmt.Errorf("bookings: therapist, patient, date and start time are required")
	}

	resolved, err := s.resolver.ResolveDate(ctx, req.TherapistID, req.SessionDate)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !resolved.Available {
		return nil, ErrSlotUnavailable
	}

	var slot *availability.TimeSlot
	for i := range resolved.Slots {
		if resolved.Slots[i].Start == req.StartTime {
			slot = &resolved.Slots[i]
			break
		}
	}
	if slot == nil {
		return nil, ErrSlotUnavailable
	}

	existing, err := s.repo.ListForTherapistDate(ctx, req.TherapistID, req.SessionDate)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	for _, b := range existing {
		if b.StartTime == req.StartTime {
			return nil, ErrSlotUnavailable
		}
	}

	booking, err := s.repo.Create(ctx, Booking{
		TherapistID: req.TherapistID,
		PatientID:   req.PatientID,
		SessionDate: req.SessionDate,
		StartTime:   slot.Start,
		EndTime:     slot.End,
		SessionType: slot.Type,
		Status:      StatusConfirmed,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.rooms != nil {
		roomURL, err := s.rooms.EnsureRoom(ctx, booking.ID)
		if err != nil {
			// Room provisioning can be retried when the session starts.
			s.logger.Warn("video room provisioning failed", "booking_id", booking.ID, "error", err)
		} else if err := s.repo.SetVideoRoomURL(ctx, booking.ID, roomURL); err != nil {
			s.logger.Warn("failed to record video room url", "booking_id", booking.ID, "error", err)
		} else {
			booking.VideoRoomURL = roomURL
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyBookingConfirmed(ctx, booking)
	}

	s.metrics.ObserveCreated(booking.SessionType)
	s.logger.Info("booking confirmed",
		"booking_id", booking.ID,
		"therapist_id", booking.TherapistID,
		"session_date", booking.SessionDate,
		"start_time", booking.StartTime,
	)
	return booking, nil
}

// Cancel transitions a booking to cancelled.
func (s *Service) Cancel(ctx context.Context, bookingID string) (*Booking, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("calmora.booking_id", bookingID))

	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if booking.Status == StatusCancelled {
		return booking, nil
	}

	if err := s.repo.UpdateStatus(ctx, bookingID, StatusCancelled); err != nil {
		span.RecordError(err)
		return nil, err
	}
	booking.Status = StatusCancelled

	if s.notifier != nil {
		s.notifier.NotifyBookingCancelled(ctx, booking)
	}

	s.metrics.ObserveCancelled()
	s.logger.Info("booking cancelled", "booking_id", bookingID)
	return booking, nil
}

// Get loads one booking.
func (s *Service) Get(ctx context.Context, bookingID string) (*Booking, error) {
	return s.repo.GetByID(ctx, bookingID)
}

// ListForTherapistDate lists a therapist's bookings for one date.
func (s *Service) ListForTherapistDate(ctx context.Context, therapistID, date string) ([]Booking, error) {
	return s.repo.ListForTherapistDate(ctx, therapistID, date)
}
