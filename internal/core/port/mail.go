package port

import "context"

// MailSender delivers transactional email through the upstream provider.
type MailSender interface {
	Send(ctx context.Context, from string, to []string, subject, htmlBody string) error
}
