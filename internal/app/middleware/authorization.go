package middleware

import (
	"context"
	"errors"

	"addisstay/internal/app/actor"
	"addisstay/internal/app/commands"
	"addisstay/internal/app/queries"
)

var (
	ErrUnauthenticated = errors.New("middleware: authentication required")
	ErrForbidden       = errors.New("middleware: insufficient permissions")
)

// RoleRestricted commands can only be sent by actors holding the role.
type RoleRestricted interface {
	RequiredRole() string
}

// ActorBound commands name the user they act for; it must be the caller.
type ActorBound interface {
	ActorID() string
}

// Authorization checks the actor stored in ctx against the command. Commands
// implementing neither interface pass through untouched.
func Authorization() CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

// QueryAuthorization applies the same rules to queries.
func QueryAuthorization() QueryMiddleware {
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := authorize(ctx, q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}

func authorize(ctx context.Context, msg any) error {
	restricted, needsRole := msg.(RoleRestricted)
	bound, needsActor := msg.(ActorBound)
	if !needsRole && !needsActor {
		return nil
	}
	a, ok := actor.FromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if needsRole && restricted.RequiredRole() != "" && !a.HasRole(restricted.RequiredRole()) {
		return ErrForbidden
	}
	if needsActor && bound.ActorID() != a.ID {
		return ErrForbidden
	}
	return nil
}
