package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// Mailer sends transactional mail. A failed send is returned to the caller,
// which decides whether the triggering request fails with it.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, name, code string) error
	SendResetLink(ctx context.Context, to, name, link string) error
}

type resendMailer struct {
	client *resend.Client
	from   string
	logger *slog.Logger
}

// New creates a Resend-backed mailer. With an empty API key the mailer runs
// in dev mode and only logs the message instead of sending it.
func New(apiKey, from string, logger *slog.Logger) Mailer {
	var client *resend.Client
	if apiKey != "" {
		client = resend.NewClient(apiKey)
	}

	return &resendMailer{
		client: client,
		from:   from,
		logger: logger,
	}
}

func (m *resendMailer) SendVerificationCode(ctx context.Context, to, name, code string) error {
	subject := "Verify your email address"
	html := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your verification code is:</p>
<h2>%s</h2>
<p>The code expires in one hour. If you did not create an account, you can ignore this email.</p>`, name, code)

	return m.send(ctx, to, subject, html)
}

func (m *resendMailer) SendResetLink(ctx context.Context, to, name, link string) error {
	subject := "Reset your password"
	html := fmt.Sprintf(`<p>Hi %s,</p>
<p>Use the link below to choose a new password. The link expires in 30 minutes.</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not request a reset, you can ignore this email.</p>`, name, link)

	return m.send(ctx, to, subject, html)
}

func (m *resendMailer) send(ctx context.Context, to, subject, html string) error {
	if m.client == nil {
		m.logger.Info("Mail send skipped (dev mode)", "to", to, "subject", subject)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	m.logger.Info("Mail sent", "to", to, "subject", subject, "message_id", sent.Id)
	return nil
}
