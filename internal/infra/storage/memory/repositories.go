package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"addisstay/internal/app/uow"
	domainbooking "addisstay/internal/domain/booking"
	domainlistings "addisstay/internal/domain/listings"
	domainreviews "addisstay/internal/domain/reviews"
)

// Repositories hand out copies so callers only change stored state through
// Save, the way a database round trip would behave.

// ListingRepository keeps listings in catalog (insertion) order.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
	order []domainlistings.ListingID
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{items: make(map[domainlistings.ListingID]*domainlistings.Listing)}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrListingNotFound
	}
	return cloneListing(listing), nil
}

// Save rejects a listing whose version no longer matches the stored one.
func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	_, err := r.save(listing)
	return err
}

// save stores listing and returns the inverse of the write.
func (r *ListingRepository) save(listing *domainlistings.Listing) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := listing.ID
	prev, existed := r.items[id]
	if existed && prev.Version != listing.Version {
		return nil, uow.ErrConcurrentUpdate
	}
	if !existed {
		r.order = append(r.order, id)
	}
	stored := cloneListing(listing)
	stored.Version++
	listing.Version = stored.Version
	r.items[id] = stored
	written := stored.Version
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if cur, ok := r.items[id]; !ok || cur.Version != written {
			return
		}
		if existed {
			r.items[id] = prev
			return
		}
		delete(r.items, id)
		r.order = slices.DeleteFunc(r.order, func(other domainlistings.ListingID) bool { return other == id })
	}, nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	params = params.Normalized()
	all, _ := r.All(ctx)
	matched := make([]*domainlistings.Listing, 0, len(all))
	for _, l := range all {
		if params.Matches(l) {
			matched = append(matched, l)
		}
	}
	domainlistings.SortListings(matched, params.Sort)
	return domainlistings.Page(matched, params.Offset, params.Limit), nil
}

func (r *ListingRepository) All(ctx context.Context) ([]*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainlistings.Listing, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneListing(r.items[id]))
	}
	return out, nil
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	c := *l
	c.Images = slices.Clone(l.Images)
	c.Amenities = slices.Clone(l.Amenities)
	c.ClearEvents()
	return &c
}

type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	_, err := r.save(b)
	return err
}

func (r *BookingRepository) save(b *domainbooking.Booking) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := b.ID
	prev, existed := r.items[id]
	if existed && prev.Version != b.Version {
		return nil, uow.ErrConcurrentUpdate
	}
	stored := cloneBooking(b)
	stored.Version++
	b.Version = stored.Version
	r.items[id] = stored
	written := stored.Version
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if cur, ok := r.items[id]; !ok || cur.Version != written {
			return
		}
		if existed {
			r.items[id] = prev
			return
		}
		delete(r.items, id)
	}, nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.GuestID == guestID }), nil
}

func (r *BookingRepository) ListByHost(ctx context.Context, hostID domainlistings.HostID) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.HostID == hostID }), nil
}

func (r *BookingRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool { return b.ListingID == listingID }), nil
}

func (r *BookingRepository) ListCheckingIn(ctx context.Context, status domainbooking.Status, from, to time.Time) ([]*domainbooking.Booking, error) {
	return r.filter(func(b *domainbooking.Booking) bool {
		in := b.Range.CheckIn
		return b.Status == status && !in.Before(from) && in.Before(to)
	}), nil
}

// filter returns matches oldest first.
func (r *BookingRepository) filter(keep func(*domainbooking.Booking) bool) []*domainbooking.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if keep(b) {
			out = append(out, cloneBooking(b))
		}
	}
	slices.SortStableFunc(out, func(a, b *domainbooking.Booking) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	c := *b
	c.ClearEvents()
	return &c
}

type ReviewRepository struct {
	mu    sync.RWMutex
	items map[domainreviews.ReviewID]*domainreviews.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[domainreviews.ReviewID]*domainreviews.Review)}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rv, ok := r.items[id]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return cloneReview(rv), nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.save(review)
	return nil
}

func (r *ReviewRepository) save(review *domainreviews.Review) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := review.ID
	prev, existed := r.items[id]
	r.items[id] = cloneReview(review)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.items[id] = prev
			return
		}
		delete(r.items, id)
	}
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainreviews.Review, error) {
	return r.filter(func(rv *domainreviews.Review) bool { return rv.ListingID == listingID }), nil
}

func (r *ReviewRepository) ListByHost(ctx context.Context, hostID domainlistings.HostID) ([]*domainreviews.Review, error) {
	return r.filter(func(rv *domainreviews.Review) bool { return rv.HostID == hostID }), nil
}

func (r *ReviewRepository) ExistsForAuthor(ctx context.Context, listingID domainlistings.ListingID, authorID string) (bool, error) {
	found := r.filter(func(rv *domainreviews.Review) bool { return rv.ListingID == listingID && rv.AuthorID == authorID })
	return len(found) > 0, nil
}

// filter returns matches newest first.
func (r *ReviewRepository) filter(keep func(*domainreviews.Review) bool) []*domainreviews.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainreviews.Review, 0)
	for _, rv := range r.items {
		if keep(rv) {
			out = append(out, cloneReview(rv))
		}
	}
	slices.SortStableFunc(out, func(a, b *domainreviews.Review) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func cloneReview(rv *domainreviews.Review) *domainreviews.Review {
	c := *rv
	c.Photos = slices.Clone(rv.Photos)
	c.HelpfulBy = slices.Clone(rv.HelpfulBy)
	c.ClearEvents()
	return &c
}
