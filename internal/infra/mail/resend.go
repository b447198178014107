package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/getly/auth-service/internal/core/port"
)

// ResendSender delivers transactional email through the Resend API.
type ResendSender struct {
	client *resend.Client
}

// NewResendSender constructs a sender with the given API key.
func NewResendSender(apiKey string) (*ResendSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("mail: missing resend api key")
	}

	return &ResendSender{client: resend.NewClient(apiKey)}, nil
}

// Send delivers one HTML email.
func (s *ResendSender) Send(ctx context.Context, from string, to []string, subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    from,
		To:      to,
		Subject: subject,
		Html:    htmlBody,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

var _ port.MailSender = (*ResendSender)(nil)
