package middleware

import (
	"context"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/outbox"
)

// OutboxFlush delivers records after a successful command. It must sit
// outside Transaction so that only committed records are flushed.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
