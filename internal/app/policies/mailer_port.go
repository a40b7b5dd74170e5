package policies

import "context"

// Mailer delivers transactional email rendered from a named template.
type Mailer interface {
	Send(ctx context.Context, to string, template string, data map[string]string) error
}
