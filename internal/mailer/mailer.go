// Package mailer delivers transactional email over SMTP. Today that is only
// the password-reset link.
package mailer

import (
	"context"
	"fmt"

	"trailhead/internal/config"

	"github.com/wneessen/go-mail"
)

// SMTPMailer implements auth.Mailer over a plain SMTP connection.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// New builds an SMTP mailer from config. Auth is only enabled when a
// username is configured, so a local debug relay works out of the box.
func New(cfg config.Config) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.SMTPFrom}, nil
}

// SendPasswordReset emails the one-time reset link. The token inside the URL
// is only valid for a few minutes, which we tell the recipient.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject("Your password reset token (valid for 10 minutes)")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hi %s,\n\n"+
			"Forgot your password? Submit a PATCH request with your new password to:\n\n"+
			"  %s\n\n"+
			"If you didn't request a reset, you can ignore this email.\n",
		name, resetURL,
	))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}
