package memory

import (
	"context"
	"errors"
	"sync"

	"addisstay/internal/app/outbox"
	"addisstay/internal/app/uow"
	domainbooking "addisstay/internal/domain/booking"
	domainlistings "addisstay/internal/domain/listings"
	domainnotifications "addisstay/internal/domain/notifications"
	domainreviews "addisstay/internal/domain/reviews"
	domainuser "addisstay/internal/domain/user"
	domainwishlist "addisstay/internal/domain/wishlist"
)

var (
	ErrUnitClosed   = errors.New("memory: unit already committed or rolled back")
	ErrReadOnlyUnit = errors.New("memory: write in a read-only unit")
)

// Factory opens units over shared repositories. Writes are applied as they
// happen and are visible to other units before commit; Rollback undoes them
// in reverse order. Listings and bookings are versioned, so a save based on a
// stale copy fails with uow.ErrConcurrentUpdate. Outbox records wait for
// Commit.
type Factory struct {
	Listings      *ListingRepository
	Bookings      *BookingRepository
	Reviews       *ReviewRepository
	Users         *UserRepository
	Notifications *NotificationRepository
	Wishlists     *WishlistRepository
	Outbox        *Outbox
}

func NewFactory(box *Outbox) *Factory {
	return &Factory{
		Listings:      NewListingRepository(),
		Bookings:      NewBookingRepository(),
		Reviews:       NewReviewRepository(),
		Users:         NewUserRepository(),
		Notifications: NewNotificationRepository(),
		Wishlists:     NewWishlistRepository(),
		Outbox:        box,
	}
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	return &Unit{factory: f, readOnly: opts.ReadOnly}, nil
}

type Unit struct {
	factory  *Factory
	readOnly bool

	mu      sync.Mutex
	pending []outbox.EventRecord
	undo    []func()
	hooks   []func()
	closed  bool
}

func (u *Unit) Listings() domainlistings.ListingRepository {
	return unitListings{u.factory.Listings, u}
}
func (u *Unit) Bookings() domainbooking.Repository { return unitBookings{u.factory.Bookings, u} }
func (u *Unit) Reviews() domainreviews.Repository  { return unitReviews{u.factory.Reviews, u} }
func (u *Unit) Users() domainuser.Repository       { return unitUsers{u.factory.Users, u} }
func (u *Unit) Notifications() domainnotifications.Repository {
	return unitNotifications{u.factory.Notifications, u}
}
func (u *Unit) Wishlists() domainwishlist.Repository { return unitWishlists{u.factory.Wishlists, u} }
func (u *Unit) Outbox() outbox.Outbox                { return unitOutbox{u} }

func (u *Unit) AfterCommit(fn func()) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.hooks = append(u.hooks, fn)
}

func (u *Unit) Commit(ctx context.Context) error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return ErrUnitClosed
	}
	u.closed = true
	if u.factory.Outbox != nil && len(u.pending) > 0 {
		u.factory.Outbox.enqueue(u.pending)
	}
	hooks := u.hooks
	u.pending, u.undo, u.hooks = nil, nil, nil
	u.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	return nil
}

// Rollback reverts the unit's writes and drops buffered records. Repeated
// calls, or a call after Commit, do nothing.
func (u *Unit) Rollback(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil
	}
	u.closed = true
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.pending, u.undo, u.hooks = nil, nil, nil
	return nil
}

// write runs apply unless the unit is closed and keeps its inverse.
func (u *Unit) write(apply func() (func(), error)) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrUnitClosed
	}
	if u.readOnly {
		return ErrReadOnlyUnit
	}
	undo, err := apply()
	if err != nil {
		return err
	}
	u.undo = append(u.undo, undo)
	return nil
}

type unitListings struct {
	*ListingRepository
	u *Unit
}

func (r unitListings) Save(ctx context.Context, l *domainlistings.Listing) error {
	return r.u.write(func() (func(), error) { return r.save(l) })
}

type unitBookings struct {
	*BookingRepository
	u *Unit
}

func (r unitBookings) Save(ctx context.Context, b *domainbooking.Booking) error {
	return r.u.write(func() (func(), error) { return r.save(b) })
}

type unitReviews struct {
	*ReviewRepository
	u *Unit
}

func (r unitReviews) Save(ctx context.Context, rv *domainreviews.Review) error {
	return r.u.write(func() (func(), error) { return r.save(rv), nil })
}

type unitUsers struct {
	*UserRepository
	u *Unit
}

func (r unitUsers) Save(ctx context.Context, usr *domainuser.User) error {
	return r.u.write(func() (func(), error) { return r.save(usr) })
}

type unitNotifications struct {
	*NotificationRepository
	u *Unit
}

func (r unitNotifications) Save(ctx context.Context, n *domainnotifications.Notification) error {
	return r.u.write(func() (func(), error) { return r.save(n), nil })
}

func (r unitNotifications) Delete(ctx context.Context, id domainnotifications.ID) error {
	return r.u.write(func() (func(), error) { return r.delete(id) })
}

type unitWishlists struct {
	*WishlistRepository
	u *Unit
}

func (r unitWishlists) Save(ctx context.Context, w *domainwishlist.Wishlist) error {
	return r.u.write(func() (func(), error) { return r.save(w), nil })
}

// unitOutbox buffers records until the unit commits.
type unitOutbox struct{ u *Unit }

func (o unitOutbox) Add(ctx context.Context, rec outbox.EventRecord) error {
	o.u.mu.Lock()
	defer o.u.mu.Unlock()
	if o.u.closed {
		return ErrUnitClosed
	}
	o.u.pending = append(o.u.pending, rec)
	return nil
}

func (o unitOutbox) Flush(ctx context.Context) error { return nil }

var (
	_ uow.UoWFactory = (*Factory)(nil)
	_ uow.UnitOfWork = (*Unit)(nil)
)
