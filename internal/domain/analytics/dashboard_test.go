package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addisstay/internal/domain/booking"
	"addisstay/internal/domain/listings"
	"addisstay/internal/domain/pricing"
	"addisstay/internal/domain/reviews"
	"addisstay/internal/domain/shared/daterange"
	"addisstay/internal/domain/shared/money"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 9, 0, 0, 0, time.UTC)
}

func stay(l listings.ListingID, status booking.Status, created time.Time, total string, in, out time.Time) *booking.Booking {
	return &booking.Booking{
		ListingID: l,
		Status:    status,
		CreatedAt: created,
		Range:     daterange.Unchecked(in, out),
		Price:     pricing.Breakdown{Total: money.Must(total, "ETB")},
	}
}

func fixture() Input {
	villa := &listings.Listing{ID: "A", Title: "Luxury Villa", State: listings.ListingActive, Rating: 4.8, ReviewsCount: 10}
	flat := &listings.Listing{ID: "B", Title: "City Apartment", State: listings.ListingActive, Rating: 4.0, ReviewsCount: 10}
	return Input{
		Period:   Period30Days,
		Now:      now,
		Listings: []*listings.Listing{villa, flat},
		Bookings: []*booking.Booking{
			stay("A", booking.StatusConfirmed, day(6, 10), "1000", day(6, 20), day(6, 25)),
			stay("A", booking.StatusCompleted, day(6, 1), "500", day(6, 2), day(6, 7)),
			stay("B", booking.StatusPending, day(6, 12), "300", day(7, 1), day(7, 3)),
			stay("B", booking.StatusCancelled, day(6, 5), "400", day(6, 8), day(6, 9)),
			stay("B", booking.StatusCompleted, day(5, 1), "750", day(5, 2), day(5, 5)),
		},
		Reviews: []*reviews.Review{
			{ID: "r1", AuthorName: "Sarah", Rating: 5, CreatedAt: day(6, 1)},
			{ID: "r2", AuthorName: "Mike", Rating: 4, CreatedAt: day(6, 3)},
			{ID: "r3", AuthorName: "Emma", Rating: 5, CreatedAt: day(5, 20)},
			{ID: "r4", AuthorName: "John", Rating: 3, CreatedAt: day(6, 9)},
		},
		Views: 42,
	}
}

func TestComputeTotals(t *testing.T) {
	d := Compute(fixture())
	assert.True(t, d.TotalRevenue.Equal(money.Must("1500", "ETB")))
	assert.Equal(t, 3, d.TotalBookings)
	assert.Equal(t, 4.4, d.AverageRating)
	assert.Equal(t, int64(42), d.ViewsCount)
	assert.Equal(t, 75.0, d.ResponseRate)
	assert.Equal(t, 8.3, d.OccupancyRate)
	assert.Equal(t, 100.0, d.RevenueGrowth)
	assert.Equal(t, 200.0, d.BookingGrowth)
}

func TestComputeMonthlyRevenue(t *testing.T) {
	d := Compute(fixture())
	require.Len(t, d.MonthlyRevenue, 6)
	assert.Equal(t, "Jan 2025", d.MonthlyRevenue[0].Month)
	assert.Equal(t, "Jun 2025", d.MonthlyRevenue[5].Month)
	assert.True(t, d.MonthlyRevenue[5].Revenue.Equal(money.Must("1500", "ETB")))
	assert.True(t, d.MonthlyRevenue[4].Revenue.Equal(money.Must("750", "ETB")))
	assert.True(t, d.MonthlyRevenue[0].Revenue.IsZero())
}

func TestComputeTopAndRecent(t *testing.T) {
	d := Compute(fixture())
	require.Len(t, d.TopProperties, 1)
	assert.Equal(t, listings.ListingID("A"), d.TopProperties[0].ListingID)
	assert.Equal(t, 2, d.TopProperties[0].Bookings)

	require.Len(t, d.RecentReviews, 3)
	assert.Equal(t, reviews.ReviewID("r4"), d.RecentReviews[0].ID)
	assert.Equal(t, reviews.ReviewID("r1"), d.RecentReviews[2].ID)
}

func TestComputeEmptyHost(t *testing.T) {
	d := Compute(Input{Period: Period7Days, Now: now})
	assert.True(t, d.TotalRevenue.IsZero())
	assert.Zero(t, d.OccupancyRate)
	assert.Equal(t, 100.0, d.ResponseRate)
	assert.Zero(t, d.RevenueGrowth)
	assert.Empty(t, d.TopProperties)
	assert.Empty(t, d.RecentReviews)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, Period30Days, p)
	p, err = ParsePeriod("1year")
	require.NoError(t, err)
	assert.Equal(t, 365, p.Days())
	_, err = ParsePeriod("decade")
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}
