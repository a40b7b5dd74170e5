package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"addisstay/internal/app/outbox"
	"addisstay/internal/app/uow"
	domainbooking "addisstay/internal/domain/booking"
	domainlistings "addisstay/internal/domain/listings"
	domainnotifications "addisstay/internal/domain/notifications"
	domainreviews "addisstay/internal/domain/reviews"
	domainuser "addisstay/internal/domain/user"
	domainwishlist "addisstay/internal/domain/wishlist"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// Outbox records are inserted inside the same transaction as the aggregates.
type Factory struct {
	DB *mongo.Database

	Listings      *ListingRepository
	Bookings      *BookingRepository
	Reviews       *ReviewRepository
	Users         *UserRepository
	Notifications *NotificationRepository
	Wishlists     *WishlistRepository
	Outbox        outbox.Outbox
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// NewFactory builds repositories over db.
func NewFactory(db *mongo.Database, box outbox.Outbox) *Factory {
	return &Factory{
		DB:            db,
		Listings:      NewListingRepository(db),
		Bookings:      NewBookingRepository(db),
		Reviews:       NewReviewRepository(db),
		Users:         NewUserRepository(db),
		Notifications: NewNotificationRepository(db),
		Wishlists:     NewWishlistRepository(db),
		Outbox:        box,
	}
}

// Begin starts a MongoDB session. Read-only units skip the transaction.
func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	unit := &Unit{factory: f, session: session, readOnly: opts.ReadOnly}
	if opts.ReadOnly {
		return unit, nil
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return unit, nil
}

type Unit struct {
	factory  *Factory
	session  mongo.Session
	readOnly bool
	done     bool
	hooks    []func()
}

func (u *Unit) Listings() domainlistings.ListingRepository    { return u.factory.Listings }
func (u *Unit) Bookings() domainbooking.Repository            { return u.factory.Bookings }
func (u *Unit) Reviews() domainreviews.Repository             { return u.factory.Reviews }
func (u *Unit) Users() domainuser.Repository                  { return u.factory.Users }
func (u *Unit) Notifications() domainnotifications.Repository { return u.factory.Notifications }
func (u *Unit) Wishlists() domainwishlist.Repository          { return u.factory.Wishlists }
func (u *Unit) Outbox() outbox.Outbox                         { return u.factory.Outbox }

func (u *Unit) AfterCommit(fn func()) { u.hooks = append(u.hooks, fn) }

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	defer u.session.EndSession(ctx)
	if !u.readOnly {
		if err := u.session.CommitTransaction(ctx); err != nil {
			return err
		}
	}
	for _, fn := range u.hooks {
		fn()
	}
	u.hooks = nil
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	u.hooks = nil
	defer u.session.EndSession(ctx)
	if u.readOnly {
		return nil
	}
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var (
	_ uow.UoWFactory = (*Factory)(nil)
	_ uow.UnitOfWork = (*Unit)(nil)
	_ uow.Injector   = (*Unit)(nil)
)
