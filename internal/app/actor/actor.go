// Package actor carries the authenticated caller through application calls.
package actor

import (
	"context"
	"slices"
)

type Actor struct {
	ID    string
	Name  string
	Roles []string
}

func (a Actor) HasRole(role string) bool {
	return slices.Contains(a.Roles, role)
}

type ctxKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok && a.ID != ""
}
