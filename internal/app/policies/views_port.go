package policies

import (
	"context"

	"addisstay/internal/domain/listings"
)

// ViewCounter tracks listing detail page views.
type ViewCounter interface {
	Increment(ctx context.Context, id listings.ListingID) error
	Total(ctx context.Context, ids []listings.ListingID) (int64, error)
}
