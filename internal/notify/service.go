package notify

import (
	"context"
	"fmt"

	"github.com/calmora/teletherapy-platform/internal/bookings"
	"github.com/calmora/teletherapy-platform/pkg/logging"
)

// Service sends booking lifecycle notifications to the practice
// operations inbox. Delivery is best-effort; callers never block on it.
type Service struct {
	email    EmailSender
	opsEmail string
	logger   *logging.Logger
}

// NewService creates a notification service. A nil sender mutes all
// notifications.
func NewService(email EmailSender, opsEmail string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:    email,
		opsEmail: opsEmail,
		logger:   logger,
	}
}

// NotifyBookingConfirmed emails the operations inbox about a new session.
func (s *Service) NotifyBookingConfirmed(ctx context.Context, b *bookings.Booking) {
	subject := fmt.Sprintf("New session booked: %s %s", b.SessionDate, b.StartTime)
	body := fmt.Sprintf(
		"A session was booked.\n\nTherapist: %s\nPatient: %s\nDate: %s\nTime: %s - %s\nType: %s\nBooking ID: %s\n",
		b.TherapistID, b.PatientID, b.SessionDate, b.StartTime, b.EndTime, b.SessionType, b.ID,
	)
	s.send(ctx, b.ID, subject, body)
}

// NotifyBookingCancelled emails the operations inbox about a cancellation.
func (s *Service) NotifyBookingCancelled(ctx context.Context, b *bookings.Booking) {
	subject := fmt.Sprintf("Session cancelled: %s %s", b.SessionDate, b.StartTime)
	body := fmt.Sprintf(
		"A session was cancelled.\n\nTherapist: %s\nPatient: %s\nDate: %s\nTime: %s - %s\nBooking ID: %s\n",
		b.TherapistID, b.PatientID, b.SessionDate, b.StartTime, b.EndTime, b.ID,
	)
	s.send(ctx, b.ID, subject, body)
}

func (s *Service) send(ctx context.Context, bookingID, subject, body string) {
	if s.email == nil || s.opsEmail == "" {
		s.logger.Debug("notifications muted", "booking_id", bookingID, "subject", subject)
		return
	}
	msg := EmailMessage{
		To:      s.opsEmail,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notification send failed", "booking_id", bookingID, "error", err)
	}
}

var _ bookings.Notifier = (*Service)(nil)
