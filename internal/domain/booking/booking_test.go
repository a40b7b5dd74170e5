package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addisstay/internal/domain/listings"
	"addisstay/internal/domain/pricing"
	"addisstay/internal/domain/shared/daterange"
	"addisstay/internal/domain/shared/money"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func activeListing(t *testing.T) *listings.Listing {
	t.Helper()
	l, err := listings.NewListing(listings.CreateListingParams{
		ID:          "l1",
		Host:        "host-1",
		Title:       "Modern Studio in Bole",
		Location:    "Bole, Addis Ababa",
		NightlyRate: money.Must("100", "ETB"),
		MaxGuests:   3,
		Images:      []string{"cover.jpg"},
		Now:         now,
	})
	require.NoError(t, err)
	require.NoError(t, l.Activate(now))
	return l
}

func stay(fromDays, nights int) daterange.DateRange {
	in := now.AddDate(0, 0, fromDays)
	return daterange.Unchecked(in, in.AddDate(0, 0, nights))
}

func newPending(t *testing.T) *Booking {
	t.Helper()
	dr := stay(5, 3)
	price, err := pricing.Quote(money.Must("100", "ETB"), dr)
	require.NoError(t, err)
	b, err := NewBooking(CreateParams{
		ID:       "b1",
		Listing:  activeListing(t),
		GuestID:  "guest-1",
		Guest:    Guest{Name: " John Smith ", Email: "John@Example.com"},
		Range:    dr,
		Adults:   2,
		Children: 1,
		Price:    price,
		Now:      now,
	})
	require.NoError(t, err)
	return b
}

func TestNewBookingStartsPending(t *testing.T) {
	b := newPending(t)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, listings.HostID("host-1"), b.HostID)
	assert.Equal(t, "John Smith", b.Guest.Name)
	assert.Equal(t, "john@example.com", b.Guest.Email)
	assert.Equal(t, 3, b.Guests())
	assert.Equal(t, 3, b.Nights())
	assert.True(t, b.Price.Total.Equal(money.Must("378", "ETB")))
	require.Len(t, b.PendingEvents(), 1)
	assert.Equal(t, "booking.requested", b.PendingEvents()[0].EventName())
}

func TestNewBookingValidation(t *testing.T) {
	l := activeListing(t)
	price, err := pricing.Quote(l.NightlyRate, stay(1, 2))
	require.NoError(t, err)
	base := CreateParams{ID: "b", Listing: l, GuestID: "g", Range: stay(1, 2), Adults: 1, Price: price, Now: now}

	cases := []struct {
		name   string
		mutate func(p *CreateParams)
		want   error
	}{
		{"no adults", func(p *CreateParams) { p.Adults = 0 }, ErrInvalidGuests},
		{"negative children", func(p *CreateParams) { p.Children = -1 }, ErrInvalidGuests},
		{"over capacity", func(p *CreateParams) { p.Adults = 2; p.Children = 2 }, ErrTooManyGuests},
		{"past check-in", func(p *CreateParams) { p.Range = stay(-2, 3) }, ErrCheckInPast},
		{"reversed", func(p *CreateParams) { p.Range = daterange.Unchecked(now.AddDate(0, 0, 3), now) }, daterange.ErrInvalidRange},
		{"own listing", func(p *CreateParams) { p.GuestID = "host-1" }, ErrOwnListing},
		{"missing price", func(p *CreateParams) { p.Price = pricing.Breakdown{} }, pricing.ErrNoNights},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			_, err := NewBooking(p)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	require.NoError(t, l.Deactivate(now, ""))
	_, err = NewBooking(base)
	assert.ErrorIs(t, err, ErrListingInactive)
}

func TestCheckInTodayIsAllowed(t *testing.T) {
	l := activeListing(t)
	dr := daterange.Unchecked(now, now.AddDate(0, 0, 1))
	price, err := pricing.Quote(l.NightlyRate, dr)
	require.NoError(t, err)
	_, err = NewBooking(CreateParams{ID: "b", Listing: l, GuestID: "g", Range: dr, Adults: 1, Price: price, Now: now})
	assert.NoError(t, err)
}

func TestLifecycle(t *testing.T) {
	b := newPending(t)
	b.ClearEvents()

	require.NoError(t, b.Confirm(now))
	assert.ErrorIs(t, b.Confirm(now), ErrInvalidState)
	assert.ErrorIs(t, b.Complete(now), ErrStayNotFinished)

	after := b.Range.CheckOut.Add(time.Hour)
	require.NoError(t, b.Complete(after))
	assert.Equal(t, StatusCompleted, b.Status)
	assert.ErrorIs(t, b.Cancel("guest-1", "", after), ErrInvalidState)

	names := []string{}
	for _, ev := range b.PendingEvents() {
		names = append(names, ev.EventName())
	}
	assert.Equal(t, []string{"booking.confirmed", "booking.completed"}, names)
}

func TestCancelByParticipantsOnly(t *testing.T) {
	b := newPending(t)
	assert.ErrorIs(t, b.Cancel("stranger", "", now), ErrNotParticipant)
	require.NoError(t, b.Cancel("host-1", " overbooked ", now))
	assert.Equal(t, StatusCancelled, b.Status)
	assert.Equal(t, "overbooked", b.CancelReason)
	assert.Equal(t, "host-1", b.CancelledBy)
}

func TestEnsureAvailable(t *testing.T) {
	confirmed := newPending(t)
	require.NoError(t, confirmed.Confirm(now))
	pending := newPending(t)

	assert.ErrorIs(t, EnsureAvailable([]*Booking{confirmed}, stay(6, 1)), ErrDatesUnavailable)
	assert.NoError(t, EnsureAvailable([]*Booking{confirmed}, stay(8, 2)))
	assert.NoError(t, EnsureAvailable([]*Booking{pending}, stay(6, 1)))
}

func TestHostViews(t *testing.T) {
	pending := newPending(t)
	pending.ID = "pending"

	upcoming := newPending(t)
	upcoming.ID = "upcoming"
	require.NoError(t, upcoming.Confirm(now))

	started := newPending(t)
	started.ID = "started"
	require.NoError(t, started.Confirm(now))
	started.Range = stay(-1, 3)

	cancelled := newPending(t)
	cancelled.ID = "cancelled"
	require.NoError(t, cancelled.Cancel("guest-1", "", now))

	all := []*Booking{pending, upcoming, started, cancelled}
	assert.Equal(t, []BookingID{"pending"}, bookingIDs(Filter(all, ViewPending, now)))
	assert.Equal(t, []BookingID{"upcoming"}, bookingIDs(Filter(all, ViewUpcoming, now)))
	assert.Equal(t, []BookingID{"cancelled"}, bookingIDs(Filter(all, ViewRecent, now)))
	assert.Len(t, Filter(all, ParseHostView("nonsense"), now), 4)

	counts := CountViews(all, now)
	assert.Equal(t, Counts{Pending: 1, Upcoming: 1, Recent: 1, Total: 4}, counts)
}

func bookingIDs(items []*Booking) []BookingID {
	out := make([]BookingID, len(items))
	for i, b := range items {
		out[i] = b.ID
	}
	return out
}
