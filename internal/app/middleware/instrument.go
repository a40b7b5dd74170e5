package middleware

import (
	"context"
	"log/slog"
	"time"

	"addisstay/internal/app/commands"
)

// CommandObserver receives the outcome of every dispatched command.
type CommandObserver interface {
	CommandDispatched(key string, err error)
}

// Instrument logs and counts commands.
func Instrument(logger *slog.Logger, observer CommandObserver) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := next.Dispatch(ctx, cmd)
			if observer != nil {
				observer.CommandDispatched(cmd.Key(), err)
			}
			if logger != nil {
				if err != nil {
					logger.Warn("command failed", "command", cmd.Key(), "duration", time.Since(start), "error", err)
				} else {
					logger.Debug("command handled", "command", cmd.Key(), "duration", time.Since(start))
				}
			}
			return res, err
		})
	}
}
