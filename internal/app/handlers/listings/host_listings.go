package listings

import (
	"context"

	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/queries"
	"addisstay/internal/app/uow"
	domainlistings "addisstay/internal/domain/listings"
)

const (
	listHostListingsKey = "host.listings.list"
	hostListingLimit    = 60
)

// ListHostListingsQuery returns every listing a host owns, drafts and
// deactivated ones included.
type ListHostListingsQuery struct {
	HostID   string `validate:"required"`
	Sort     domainlistings.CatalogSort
	Currency string
}

func (ListHostListingsQuery) Key() string          { return listHostListingsKey }
func (ListHostListingsQuery) RequiredRole() string { return "host" }
func (q ListHostListingsQuery) ActorID() string    { return q.HostID }

type ListHostListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListHostListingsHandler) Handle(ctx context.Context, q ListHostListingsQuery) (dto.ListingCatalog, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	defer support.Release(cleanup)

	sort := q.Sort
	if sort == "" {
		sort = domainlistings.SortNewest
	}
	res, err := unit.Listings().Search(ctx, domainlistings.SearchParams{
		Host:          domainlistings.HostID(q.HostID),
		IncludeHidden: true,
		Sort:          sort,
		Limit:         hostListingLimit,
	})
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	currency := dto.DisplayCurrency(q.Currency, "")
	return dto.ListingCatalog{
		Items:    dto.MapListingCards(res.Items, currency),
		Total:    res.Total,
		Limit:    len(res.Items),
		Currency: currency,
	}, nil
}

var _ queries.Handler[ListHostListingsQuery, dto.ListingCatalog] = (*ListHostListingsHandler)(nil)
