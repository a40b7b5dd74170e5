package listings

import (
	"context"
	"log/slog"

	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/policies"
	"addisstay/internal/app/queries"
	"addisstay/internal/app/uow"
	domainlistings "addisstay/internal/domain/listings"
	domainreviews "addisstay/internal/domain/reviews"
	domainuser "addisstay/internal/domain/user"
)

const getListingKey = "listings.get"

// GetListingQuery loads a listing page. Hidden listings are only visible to
// their host.
type GetListingQuery struct {
	ID       string
	ViewerID string
	Currency string
}

func (GetListingQuery) Key() string { return getListingKey }

type GetListingHandler struct {
	UoWFactory uow.UoWFactory
	Views      policies.ViewCounter
	Logger     *slog.Logger
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.ListingDetail, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingDetail{}, err
	}
	defer support.Release(cleanup)

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(q.ID))
	if err != nil {
		return dto.ListingDetail{}, err
	}
	owner := q.ViewerID != "" && listing.OwnedBy(domainlistings.HostID(q.ViewerID))
	if !listing.IsActive() && !owner {
		return dto.ListingDetail{}, domainlistings.ErrListingNotFound
	}

	reviews, err := unit.Reviews().ListByListing(ctx, listing.ID)
	if err != nil {
		return dto.ListingDetail{}, err
	}
	saved := false
	if q.ViewerID != "" {
		if wl, err := unit.Wishlists().ByUser(ctx, q.ViewerID); err == nil && wl != nil {
			saved = wl.Contains(listing.ID)
		}
	}

	if h.Views != nil && !owner {
		if err := h.Views.Increment(ctx, listing.ID); err != nil && h.Logger != nil {
			h.Logger.Warn("listing view not counted", "listing_id", listing.ID, "error", err)
		}
	}

	var currency string
	if q.ViewerID != "" {
		if u, err := unit.Users().ByID(ctx, domainuser.ID(q.ViewerID)); err == nil {
			currency = u.Preferences.Currency
		}
	}
	return dto.ListingDetail{
		ListingCard: dto.MapListingCard(listing, dto.DisplayCurrency(q.Currency, currency)),
		Description: listing.Description,
		Reviews:     domainreviews.Summarize(reviews),
		Saved:       saved,
	}, nil
}

var _ queries.Handler[GetListingQuery, dto.ListingDetail] = (*GetListingHandler)(nil)
