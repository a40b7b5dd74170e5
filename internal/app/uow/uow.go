package uow

import (
	"context"
	"errors"

	"addisstay/internal/app/outbox"
	"addisstay/internal/domain/booking"
	"addisstay/internal/domain/listings"
	"addisstay/internal/domain/notifications"
	"addisstay/internal/domain/reviews"
	"addisstay/internal/domain/user"
	"addisstay/internal/domain/wishlist"
)

// ErrConcurrentUpdate is returned when an aggregate changed since it was
// loaded. Callers reload and retry.
var ErrConcurrentUpdate = errors.New("uow: concurrent update detected")

// UnitOfWork groups repository access under one commit. Events added to
// Outbox are published only once the unit commits.
type UnitOfWork interface {
	Listings() listings.ListingRepository
	Bookings() booking.Repository
	Reviews() reviews.Repository
	Users() user.Repository
	Notifications() notifications.Repository
	Wishlists() wishlist.Repository
	Outbox() outbox.Outbox

	// AfterCommit registers fn to run once the unit has committed. It is
	// dropped on rollback.
	AfterCommit(fn func())
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
