package wishlist

import (
	"context"
	"errors"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/queries"
	"addisstay/internal/app/uow"
	domainlistings "addisstay/internal/domain/listings"
	domainwishlist "addisstay/internal/domain/wishlist"
)

const (
	toggleWishlistKey = "wishlist.toggle"
	wishlistKey       = "wishlist.list"
)

type ToggleWishlistCommand struct {
	UserID    string `validate:"required"`
	ListingID string `validate:"required"`
}

func (ToggleWishlistCommand) Key() string       { return toggleWishlistKey }
func (c ToggleWishlistCommand) ActorID() string { return c.UserID }

type ToggleResult struct {
	ListingID string `json:"listing_id"`
	Saved     bool   `json:"saved"`
	Count     int    `json:"count"`
}

type ToggleWishlistHandler struct {
	Clock support.Clock
}

func (h *ToggleWishlistHandler) Handle(ctx context.Context, cmd ToggleWishlistCommand) (ToggleResult, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return ToggleResult{}, err
	}
	id := domainlistings.ListingID(cmd.ListingID)
	if _, err := unit.Listings().ByID(ctx, id); err != nil {
		return ToggleResult{}, err
	}
	wl, err := loadOrNew(ctx, unit, cmd.UserID)
	if err != nil {
		return ToggleResult{}, err
	}
	saved := wl.Toggle(id, h.Clock.Now())
	if err := unit.Wishlists().Save(ctx, wl); err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{ListingID: cmd.ListingID, Saved: saved, Count: len(wl.Entries)}, nil
}

type WishlistQuery struct {
	UserID   string `validate:"required"`
	Currency string
}

func (WishlistQuery) Key() string { return wishlistKey }

type WishlistHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle lists saved listings, most recently saved first. Listings that no
// longer exist are skipped.
func (h *WishlistHandler) Handle(ctx context.Context, q WishlistQuery) ([]dto.ListingCard, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer support.Release(cleanup)

	wl, err := loadOrNew(ctx, unit, q.UserID)
	if err != nil {
		return nil, err
	}
	ids := wl.IDs()
	currency := dto.DisplayCurrency(q.Currency, "")
	out := make([]dto.ListingCard, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		l, err := unit.Listings().ByID(ctx, ids[i])
		if errors.Is(err, domainlistings.ErrListingNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, dto.MapListingCard(l, currency))
	}
	return out, nil
}

func loadOrNew(ctx context.Context, unit uow.UnitOfWork, userID string) (*domainwishlist.Wishlist, error) {
	wl, err := unit.Wishlists().ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wl != nil {
		return wl, nil
	}
	return domainwishlist.New(userID)
}

var (
	_ commands.Handler[ToggleWishlistCommand, ToggleResult] = (*ToggleWishlistHandler)(nil)
	_ queries.Handler[WishlistQuery, []dto.ListingCard]     = (*WishlistHandler)(nil)
)
