package uow

import (
	"context"
	"errors"
)

var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

type ctxKey struct{}

func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, ctxKey{}, unit)
}

func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(ctxKey{}).(UnitOfWork)
	return unit, ok
}

// Require returns the unit opened by the transaction middleware.
func Require(ctx context.Context) (UnitOfWork, error) {
	unit, ok := FromContext(ctx)
	if !ok {
		return nil, ErrUnitOfWorkMissing
	}
	return unit, nil
}

// Injector is implemented by units that carry driver state (sessions) in
// the context handed to repositories.
type Injector interface {
	InjectContext(ctx context.Context) context.Context
}

// Bind attaches unit to ctx, letting it inject driver state first.
func Bind(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(Injector); ok {
		ctx = injector.InjectContext(ctx)
	}
	return ContextWithUnitOfWork(ctx, unit)
}
