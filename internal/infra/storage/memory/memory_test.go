package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addisstay/internal/app/outbox"
	"addisstay/internal/app/uow"
	domainlistings "addisstay/internal/domain/listings"
	domainmessaging "addisstay/internal/domain/messaging"
	"addisstay/internal/domain/shared/money"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func listing(t *testing.T, id, title string, rate int64) *domainlistings.Listing {
	t.Helper()
	l, err := domainlistings.NewListing(domainlistings.CreateListingParams{
		ID:          domainlistings.ListingID(id),
		Host:        "host-1",
		Title:       title,
		Location:    "Bole, Addis Ababa",
		NightlyRate: money.Birr(decimal.NewFromInt(rate)),
		MaxGuests:   2,
		Images:      []string{"https://img/" + id},
		Now:         now,
	})
	require.NoError(t, err)
	require.NoError(t, l.Activate(now))
	return l
}

func TestListingRepositoryKeepsCatalogOrderAndCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewListingRepository()
	require.NoError(t, repo.Save(ctx, listing(t, "b", "Second", 2000)))
	require.NoError(t, repo.Save(ctx, listing(t, "a", "First", 1000)))

	res, err := repo.Search(ctx, domainlistings.SearchParams{})
	require.NoError(t, err)
	require.Equal(t, 2, res.Total)
	assert.Equal(t, domainlistings.ListingID("b"), res.Items[0].ID)

	res, err = repo.Search(ctx, domainlistings.SearchParams{Sort: domainlistings.SortPriceLow})
	require.NoError(t, err)
	assert.Equal(t, domainlistings.ListingID("a"), res.Items[0].ID)

	loaded, err := repo.ByID(ctx, "a")
	require.NoError(t, err)
	loaded.Title = "changed"
	again, err := repo.ByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "First", again.Title)
	assert.Empty(t, again.PendingEvents())

	_, err = repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, domainlistings.ErrListingNotFound)
}

func TestUnitPublishesOnlyOnCommit(t *testing.T) {
	ctx := context.Background()
	var delivered []string
	box := NewOutbox(outbox.HandlerFunc(func(ctx context.Context, rec outbox.EventRecord) error {
		delivered = append(delivered, rec.Name)
		return nil
	}), nil)
	factory := NewFactory(box)

	rolled, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, rolled.Outbox().Add(ctx, outbox.EventRecord{ID: "1", Name: "dropped"}))
	require.NoError(t, rolled.Rollback(ctx))

	committed, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, committed.Outbox().Add(ctx, outbox.EventRecord{ID: "2", Name: "kept"}))
	assert.Empty(t, box.Pending())
	require.NoError(t, committed.Commit(ctx))
	assert.Len(t, box.Pending(), 1)

	require.NoError(t, box.Flush(ctx))
	assert.Equal(t, []string{"kept"}, delivered)
	assert.Empty(t, box.Pending())

	assert.ErrorIs(t, committed.Commit(ctx), ErrUnitClosed)
	assert.ErrorIs(t, committed.Outbox().Add(ctx, outbox.EventRecord{}), ErrUnitClosed)
}

func TestRollbackRestoresWrites(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(nil)
	require.NoError(t, factory.Listings.Save(ctx, listing(t, "kept", "Kept", 1500)))

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Listings().Save(ctx, listing(t, "fresh", "Fresh", 900)))
	kept, err := unit.Listings().ByID(ctx, "kept")
	require.NoError(t, err)
	kept.Title = "Renamed"
	require.NoError(t, unit.Listings().Save(ctx, kept))
	require.NoError(t, unit.Listings().Save(ctx, kept))
	require.NoError(t, unit.Rollback(ctx))

	_, err = factory.Listings.ByID(ctx, "fresh")
	assert.ErrorIs(t, err, domainlistings.ErrListingNotFound)
	restored, err := factory.Listings.ByID(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, "Kept", restored.Title)
	all, err := factory.Listings.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.ErrorIs(t, unit.Listings().Save(ctx, kept), ErrUnitClosed)
	assert.NoError(t, unit.Rollback(ctx))
}

func TestStaleListingSaveIsRejected(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(nil)
	require.NoError(t, factory.Listings.Save(ctx, listing(t, "l1", "Loft", 1500)))

	first, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	second, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	a, err := first.Listings().ByID(ctx, "l1")
	require.NoError(t, err)
	b, err := second.Listings().ByID(ctx, "l1")
	require.NoError(t, err)

	require.NoError(t, a.ApplyReview(5, now))
	require.NoError(t, first.Listings().Save(ctx, a))
	require.NoError(t, first.Commit(ctx))

	require.NoError(t, b.ApplyReview(1, now))
	assert.ErrorIs(t, second.Listings().Save(ctx, b), uow.ErrConcurrentUpdate)
	require.NoError(t, second.Rollback(ctx))

	stored, err := factory.Listings.ByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ReviewsCount)
	assert.Equal(t, 5.0, stored.Rating)
}

func TestAfterCommitRunsOnlyOnCommit(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(nil)
	calls := 0

	rolled, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	rolled.AfterCommit(func() { calls++ })
	require.NoError(t, rolled.Rollback(ctx))
	assert.Zero(t, calls)

	committed, err := factory.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	committed.AfterCommit(func() { calls++ })
	require.NoError(t, committed.Commit(ctx))
	assert.Equal(t, 1, calls)
	require.NoError(t, committed.Rollback(ctx))
	assert.Equal(t, 1, calls)
}

func TestReadOnlyUnitRejectsWrites(t *testing.T) {
	ctx := context.Background()
	unit, err := NewFactory(nil).Begin(ctx, uow.TxOptions{ReadOnly: true})
	require.NoError(t, err)
	assert.ErrorIs(t, unit.Listings().Save(ctx, listing(t, "x", "X", 100)), ErrReadOnlyUnit)
}

func TestConversationStoreMessagesKeepsLatest(t *testing.T) {
	ctx := context.Background()
	store := NewConversationStore()
	c, err := domainmessaging.Start(domainmessaging.StartParams{ID: "c1", ListingID: "l1", HostID: "h", GuestID: "g", Now: now})
	require.NoError(t, err)
	require.NoError(t, store.SaveConversation(ctx, c))
	for i, text := range []string{"one", "two", "three"} {
		msg, err := c.Send(domainmessaging.MessageID(text), "g", text, now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, store.AppendMessage(ctx, msg))
	}
	require.NoError(t, store.SaveConversation(ctx, c))

	msgs, err := store.Messages(ctx, "c1", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "two", msgs[0].Text)
	assert.Equal(t, "three", msgs[1].Text)

	found, err := store.FindByListingAndGuest(ctx, "l1", "g")
	require.NoError(t, err)
	assert.Equal(t, 3, found.UnreadFor("h"))

	_, err = store.FindByListingAndGuest(ctx, "l1", "other")
	assert.ErrorIs(t, err, domainmessaging.ErrConversationNotFound)
}

func TestViewCounterTotals(t *testing.T) {
	ctx := context.Background()
	views := NewViewCounter()
	require.NoError(t, views.Increment(ctx, "a"))
	require.NoError(t, views.Increment(ctx, "a"))
	require.NoError(t, views.Increment(ctx, "b"))
	total, err := views.Total(ctx, []domainlistings.ListingID{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}
