package listings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/handlertest"
	listingsapp "addisstay/internal/app/handlers/listings"
	"addisstay/internal/app/queries"
	"addisstay/internal/app/uow"
	domainlistings "addisstay/internal/domain/listings"
)

func recommendedIDs(t *testing.T, e *handlertest.Env, id string) []string {
	t.Helper()
	out, err := queries.Ask[listingsapp.RecommendationsQuery, dto.RecommendationList](context.Background(), e.Queries, listingsapp.RecommendationsQuery{ID: id})
	require.NoError(t, err)
	ids := make([]string, len(out.Items))
	for i, item := range out.Items {
		ids[i] = item.ID
	}
	return ids
}

func setup(t *testing.T) (*handlertest.Env, *handlertest.RecommendationCache) {
	t.Helper()
	e := handlertest.New(t)
	cache := handlertest.NewRecommendationCache()
	catalog := listingsapp.HostCatalog{Cache: cache, Encoder: e.Encoder, Clock: e.Clock.Now}
	queries.RegisterHandler(e.QueryBus, &listingsapp.RecommendationsHandler{UoWFactory: e.Factory, Cache: cache})
	commands.RegisterHandler(e.CommandBus, &listingsapp.DeactivateListingHandler{HostCatalog: catalog})
	return e, cache
}

func TestRecommendationsServedFromCacheUntilCatalogChanges(t *testing.T) {
	e, cache := setup(t)
	ctx := context.Background()

	first := recommendedIDs(t, e, "addis-sheraton")
	require.Contains(t, first, "addis-hilton")
	assert.NotContains(t, first, "addis-sheraton")

	// hidden behind the handlers' back, so only a cache refresh can drop it
	hilton, err := e.Factory.Listings.ByID(ctx, "addis-hilton")
	require.NoError(t, err)
	require.NoError(t, hilton.Deactivate(handlertest.Today, "renovation"))
	require.NoError(t, e.Factory.Listings.Save(ctx, hilton))

	assert.Equal(t, first, recommendedIDs(t, e, "addis-sheraton"))
	assert.Equal(t, 1, cache.Hits())

	_, err = commands.Dispatch[listingsapp.DeactivateListingCommand, dto.ListingCard](ctx, e.Commands, listingsapp.DeactivateListingCommand{HostID: "host-yonas", ListingID: "addis-radisson"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Purges())

	refreshed := recommendedIDs(t, e, "addis-sheraton")
	assert.NotContains(t, refreshed, "addis-hilton")
	assert.NotContains(t, refreshed, "addis-radisson")
	assert.Equal(t, 1, cache.Hits())
}

func TestRolledBackCatalogChangeKeepsCache(t *testing.T) {
	e, cache := setup(t)
	ctx := context.Background()
	recommendedIDs(t, e, "addis-sheraton")

	unit, err := e.Factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	handler := &listingsapp.DeactivateListingHandler{HostCatalog: listingsapp.HostCatalog{Cache: cache, Encoder: e.Encoder, Clock: e.Clock.Now}}
	_, err = handler.Handle(uow.Bind(ctx, unit), listingsapp.DeactivateListingCommand{HostID: "host-yonas", ListingID: "addis-radisson"})
	require.NoError(t, err)
	require.NoError(t, unit.Rollback(ctx))

	assert.Zero(t, cache.Purges())
	radisson, err := e.Factory.Listings.ByID(ctx, "addis-radisson")
	require.NoError(t, err)
	assert.Equal(t, domainlistings.ListingActive, radisson.State)
	assert.Contains(t, recommendedIDs(t, e, "addis-sheraton"), "addis-radisson")
	assert.Equal(t, 1, cache.Hits())
}

func TestRecommendationsUnknownListing(t *testing.T) {
	e, _ := setup(t)
	_, err := queries.Ask[listingsapp.RecommendationsQuery, dto.RecommendationList](context.Background(), e.Queries, listingsapp.RecommendationsQuery{ID: "missing"})
	assert.ErrorIs(t, err, domainlistings.ErrListingNotFound)
}
