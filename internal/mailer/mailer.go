// Package mailer defines the outbound email capability consumed by the
// delivery worker. The Sender interface keeps the worker decoupled from any
// concrete provider; the resend subpackage supplies the production
// implementation.
package mailer

import "context"

// Email is a fully-prepared message ready for sending. Every newsletter
// issue is delivered with both an HTML body and a plain-text alternative.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers prepared emails. Implementations must be safe for
// concurrent use and should honor the context for cancellation and timeouts.
// A nil error means the provider accepted the message; any error is treated
// by the caller as a failed delivery attempt.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}
