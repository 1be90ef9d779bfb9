package notify

import (
	"context"

	"github.com/calmora/teletherapy-platform/pkg/logging"
)

// EmailSender defines the interface for sending emails.
// Implementations can be swapped (SES, SMTP) without changing callers.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string // Plain text body
	HTML    string // Optional HTML body
}

// StubEmailSender is a no-op sender for testing or when email is disabled.
type StubEmailSender struct {
	logger *logging.Logger
}

// NewStubEmailSender creates a stub email sender that logs but doesn't send.
func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

// Send logs the email instead of sending it.
func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	_ = ctx
	s.logger.Info("email muted", "to", msg.To, "subject", msg.Subject)
	return nil
}

var _ EmailSender = (*StubEmailSender)(nil)
