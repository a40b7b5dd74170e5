package listings

import (
	"context"

	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/queries"
	"addisstay/internal/app/uow"
	domainlistings "addisstay/internal/domain/listings"
	"addisstay/internal/domain/shared/money"
)

const searchCatalogKey = "listings.search"

type SearchCatalogQuery struct {
	Params   domainlistings.SearchParams
	Currency string
}

func (SearchCatalogQuery) Key() string { return searchCatalogKey }

type SearchCatalogHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (dto.ListingCatalog, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	defer support.Release(cleanup)

	currency := dto.DisplayCurrency(q.Currency, "")
	params, err := toBaseBounds(q.Params, currency)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	params = params.Normalized()
	params.IncludeHidden = false
	params.Host = ""
	res, err := unit.Listings().Search(ctx, params)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	return dto.ListingCatalog{
		Items:    dto.MapListingCards(res.Items, currency),
		Total:    res.Total,
		Limit:    params.Limit,
		Offset:   params.Offset,
		Currency: currency,
	}, nil
}

var _ queries.Handler[SearchCatalogQuery, dto.ListingCatalog] = (*SearchCatalogHandler)(nil)

// toBaseBounds converts price filters given in the display currency to birr,
// the currency listings are stored in.
func toBaseBounds(p domainlistings.SearchParams, currency string) (domainlistings.SearchParams, error) {
	if currency == money.BaseCurrency {
		return p, nil
	}
	var err error
	if !p.PriceMin.IsZero() {
		if p.PriceMin, err = money.Convert(p.PriceMin, currency, money.BaseCurrency); err != nil {
			return p, err
		}
	}
	if !p.PriceMax.IsZero() {
		if p.PriceMax, err = money.Convert(p.PriceMax, currency, money.BaseCurrency); err != nil {
			return p, err
		}
	}
	return p, nil
}
