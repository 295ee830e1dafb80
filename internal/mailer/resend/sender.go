// Package resend implements mailer.Sender on top of the Resend API.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/abd0-omar/newzletter/internal/mailer"
)

// Config holds the Resend provider settings.
type Config struct {
	APIKey      string
	SenderEmail string
	SenderName  string
}

// Sender delivers emails through Resend.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a Resend-backed sender.
func New(cfg Config) *Sender {
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		config: cfg,
	}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	from := s.config.SenderEmail
	if s.config.SenderName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.SenderName, s.config.SenderEmail)
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: failed to send email: %w", err)
	}
	return nil
}
