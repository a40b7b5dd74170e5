package wishlist

import (
	"context"
	"errors"
	"time"

	"addisstay/internal/domain/listings"
)

var ErrUserRequired = errors.New("wishlist: user is required")

type Entry struct {
	ListingID listings.ListingID `json:"listing_id" bson:"listing_id"`
	AddedAt   time.Time          `json:"added_at" bson:"added_at"`
}

// Wishlist is the set of listings a user saved, in the order they were saved.
type Wishlist struct {
	UserID  string
	Entries []Entry
}

type Repository interface {
	ByUser(ctx context.Context, userID string) (*Wishlist, error)
	Save(ctx context.Context, w *Wishlist) error
}

func New(userID string) (*Wishlist, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return &Wishlist{UserID: userID}, nil
}

func (w *Wishlist) Contains(id listings.ListingID) bool {
	return w.index(id) >= 0
}

// Toggle adds the listing when absent and removes it otherwise. It returns
// whether the listing is saved afterwards.
func (w *Wishlist) Toggle(id listings.ListingID, now time.Time) bool {
	if i := w.index(id); i >= 0 {
		w.Entries = append(w.Entries[:i], w.Entries[i+1:]...)
		return false
	}
	w.Entries = append(w.Entries, Entry{ListingID: id, AddedAt: now.UTC()})
	return true
}

func (w *Wishlist) IDs() []listings.ListingID {
	out := make([]listings.ListingID, len(w.Entries))
	for i, e := range w.Entries {
		out[i] = e.ListingID
	}
	return out
}

func (w *Wishlist) index(id listings.ListingID) int {
	for i, e := range w.Entries {
		if e.ListingID == id {
			return i
		}
	}
	return -1
}
