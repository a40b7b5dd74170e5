package mail

import (
	"context"
	"log/slog"

	"addisstay/internal/app/policies"
)

// LogMailer writes outgoing mail to the log instead of an SMTP relay.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(ctx context.Context, to, template string, data map[string]string) error {
	if m.Logger == nil {
		return nil
	}
	attrs := []any{"to", to, "template", template}
	for k, v := range data {
		attrs = append(attrs, "data."+k, v)
	}
	m.Logger.InfoContext(ctx, "mail queued", attrs...)
	return nil
}

var _ policies.Mailer = LogMailer{}
