// Package notify provides best-effort outbound notifications. Delivery
// failures are the caller's concern to log and swallow; no notification
// failure should ever fail a request.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Mailer sends an email message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// MailerFunc is a function adapter for Mailer.
type MailerFunc func(ctx context.Context, to, subject, body string) error

func (f MailerFunc) Send(ctx context.Context, to, subject, body string) error {
	return f(ctx, to, subject, body)
}

// LogMailer writes messages to the structured log instead of delivering
// them. It stands in wherever no SMTP transport is configured, which keeps
// activation links visible in development.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("outbound mail")
	return nil
}
