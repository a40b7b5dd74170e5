package listings

import (
	"context"

	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/policies"
	"addisstay/internal/app/queries"
	"addisstay/internal/app/uow"
	domainlistings "addisstay/internal/domain/listings"
	"addisstay/internal/domain/recommendations"
)

const recommendationsKey = "listings.recommendations"

type RecommendationsQuery struct {
	ID       string
	Limit    int
	Currency string
}

func (RecommendationsQuery) Key() string { return recommendationsKey }

// RecommendationsHandler scores the active catalog against one listing.
// Results for the default limit are cached until the catalog changes.
type RecommendationsHandler struct {
	UoWFactory uow.UoWFactory
	Cache      policies.RecommendationCache
}

func (h *RecommendationsHandler) Handle(ctx context.Context, q RecommendationsQuery) (dto.RecommendationList, error) {
	id := domainlistings.ListingID(q.ID)
	limit := q.Limit
	if limit <= 0 {
		limit = recommendations.DefaultLimit
	}
	currency := dto.DisplayCurrency(q.Currency, "")
	cacheable := h.Cache != nil && limit == recommendations.DefaultLimit
	if cacheable {
		if hit, ok := h.Cache.Get(id); ok {
			return dto.MapRecommendations(id, hit, currency), nil
		}
	}

	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RecommendationList{}, err
	}
	defer support.Release(cleanup)

	all, err := unit.Listings().All(ctx)
	if err != nil {
		return dto.RecommendationList{}, err
	}
	pool := make([]*domainlistings.Listing, 0, len(all))
	found := false
	for _, l := range all {
		if l.ID == id {
			found = true
			pool = append(pool, l)
			continue
		}
		if l.IsActive() {
			pool = append(pool, l)
		}
	}
	if !found {
		return dto.RecommendationList{}, domainlistings.ErrListingNotFound
	}
	scored := recommendations.Recommend(id, pool, limit)
	if cacheable {
		h.Cache.Set(id, scored)
	}
	return dto.MapRecommendations(id, scored, currency), nil
}

var _ queries.Handler[RecommendationsQuery, dto.RecommendationList] = (*RecommendationsHandler)(nil)
