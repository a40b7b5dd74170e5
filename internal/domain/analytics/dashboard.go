package analytics

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"addisstay/internal/domain/booking"
	"addisstay/internal/domain/listings"
	"addisstay/internal/domain/reviews"
	"addisstay/internal/domain/shared/daterange"
	"addisstay/internal/domain/shared/money"
)

var ErrInvalidPeriod = errors.New("analytics: unknown period")

type Period string

const (
	Period7Days  Period = "7days"
	Period30Days Period = "30days"
	Period90Days Period = "90days"
	Period1Year  Period = "1year"

	monthsShown     = 6
	topPropertyRows = 3
	recentReviews   = 3
)

func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case "":
		return Period30Days, nil
	case Period7Days, Period30Days, Period90Days, Period1Year:
		return Period(raw), nil
	default:
		return "", ErrInvalidPeriod
	}
}

func (p Period) Days() int {
	switch p {
	case Period7Days:
		return 7
	case Period90Days:
		return 90
	case Period1Year:
		return 365
	default:
		return 30
	}
}

type MonthRevenue struct {
	Month   string      `json:"month"`
	Revenue money.Money `json:"revenue"`
}

type PropertyPerformance struct {
	ListingID listings.ListingID `json:"id"`
	Name      string             `json:"name"`
	Revenue   money.Money        `json:"revenue"`
	Bookings  int                `json:"bookings"`
}

type ReviewSnippet struct {
	ID      reviews.ReviewID `json:"id"`
	Guest   string           `json:"guest"`
	Rating  int              `json:"rating"`
	Comment string           `json:"comment"`
	Date    time.Time        `json:"date"`
}

type Dashboard struct {
	Period         Period                `json:"period"`
	TotalRevenue   money.Money           `json:"total_revenue"`
	TotalBookings  int                   `json:"total_bookings"`
	AverageRating  float64               `json:"average_rating"`
	ViewsCount     int64                 `json:"views_count"`
	OccupancyRate  float64               `json:"occupancy_rate"`
	ResponseRate   float64               `json:"response_rate"`
	RevenueGrowth  float64               `json:"revenue_growth"`
	BookingGrowth  float64               `json:"booking_growth"`
	MonthlyRevenue []MonthRevenue        `json:"monthly_revenue"`
	TopProperties  []PropertyPerformance `json:"top_properties"`
	RecentReviews  []ReviewSnippet       `json:"recent_reviews"`
}

type Input struct {
	Period   Period
	Now      time.Time
	Listings []*listings.Listing
	Bookings []*booking.Booking
	Reviews  []*reviews.Review
	Views    int64
}

// Compute builds the host dashboard. Revenue and booking counts are
// attributed to the day a booking was made; occupancy uses the nights that
// fall inside the period.
func Compute(in Input) Dashboard {
	now := in.Now.UTC()
	days := in.Period.Days()
	end := daterange.Day(now).AddDate(0, 0, 1)
	window := daterange.DateRange{CheckIn: end.AddDate(0, 0, -days), CheckOut: end}
	previous := daterange.DateRange{CheckIn: window.CheckIn.AddDate(0, 0, -days), CheckOut: window.CheckIn}

	cur := summarize(in.Bookings, window)
	prev := summarize(in.Bookings, previous)

	return Dashboard{
		Period:         in.Period,
		TotalRevenue:   money.Birr(cur.revenue),
		TotalBookings:  cur.bookings,
		AverageRating:  averageRating(in.Listings),
		ViewsCount:     in.Views,
		OccupancyRate:  occupancy(in.Bookings, in.Listings, window),
		ResponseRate:   cur.responseRate(),
		RevenueGrowth:  growth(cur.revenue, prev.revenue),
		BookingGrowth:  growth(decimal.NewFromInt(int64(cur.bookings)), decimal.NewFromInt(int64(prev.bookings))),
		MonthlyRevenue: monthly(in.Bookings, now),
		TopProperties:  top(in.Bookings, in.Listings, window),
		RecentReviews:  recent(in.Reviews),
	}
}

type periodStats struct {
	revenue   decimal.Decimal
	bookings  int
	requests  int
	responded int
}

func (s periodStats) responseRate() float64 {
	if s.requests == 0 {
		return 100
	}
	return round1(float64(s.responded) / float64(s.requests) * 100)
}

func summarize(items []*booking.Booking, window daterange.DateRange) periodStats {
	s := periodStats{revenue: decimal.Zero}
	for _, b := range items {
		if !window.ContainsDate(b.CreatedAt) {
			continue
		}
		s.requests++
		if b.Status != booking.StatusPending {
			s.responded++
		}
		if b.Status != booking.StatusCancelled {
			s.bookings++
		}
		if b.Earns() {
			s.revenue = s.revenue.Add(b.Price.Total.Amount)
		}
	}
	return s
}

func averageRating(items []*listings.Listing) float64 {
	var weighted float64
	var count int
	for _, l := range items {
		if l.ReviewsCount <= 0 {
			continue
		}
		weighted += l.Rating * float64(l.ReviewsCount)
		count += l.ReviewsCount
	}
	if count == 0 {
		return 0
	}
	return math.Round(weighted/float64(count)*100) / 100
}

func occupancy(items []*booking.Booking, owned []*listings.Listing, window daterange.DateRange) float64 {
	active := 0
	for _, l := range owned {
		if l.IsActive() {
			active++
		}
	}
	if active == 0 {
		return 0
	}
	booked := 0
	for _, b := range items {
		if !b.Earns() {
			continue
		}
		_, nights := b.Range.Clip(window)
		booked += nights
	}
	capacity := active * window.Nights()
	rate := float64(booked) / float64(capacity) * 100
	if rate > 100 {
		rate = 100
	}
	return round1(rate)
}

func growth(cur, prev decimal.Decimal) float64 {
	if prev.IsZero() {
		if cur.IsPositive() {
			return 100
		}
		return 0
	}
	pct, _ := cur.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return pct
}

func monthly(items []*booking.Booking, now time.Time) []MonthRevenue {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]MonthRevenue, monthsShown)
	starts := make([]time.Time, monthsShown)
	for i := 0; i < monthsShown; i++ {
		start := first.AddDate(0, i-(monthsShown-1), 0)
		starts[i] = start
		out[i] = MonthRevenue{Month: start.Format("Jan 2006"), Revenue: money.Zero(money.BaseCurrency)}
	}
	for _, b := range items {
		if !b.Earns() {
			continue
		}
		created := b.CreatedAt.UTC()
		for i, start := range starts {
			if !created.Before(start) && created.Before(start.AddDate(0, 1, 0)) {
				out[i].Revenue.Amount = out[i].Revenue.Amount.Add(b.Price.Total.Amount)
				break
			}
		}
	}
	return out
}

func top(items []*booking.Booking, owned []*listings.Listing, window daterange.DateRange) []PropertyPerformance {
	byID := make(map[listings.ListingID]*PropertyPerformance, len(owned))
	order := make([]listings.ListingID, 0, len(owned))
	for _, l := range owned {
		byID[l.ID] = &PropertyPerformance{ListingID: l.ID, Name: l.Title, Revenue: money.Zero(money.BaseCurrency)}
		order = append(order, l.ID)
	}
	for _, b := range items {
		if !window.ContainsDate(b.CreatedAt) || !b.Earns() {
			continue
		}
		p, ok := byID[b.ListingID]
		if !ok {
			continue
		}
		p.Revenue.Amount = p.Revenue.Amount.Add(b.Price.Total.Amount)
		p.Bookings++
	}
	out := make([]PropertyPerformance, 0, len(order))
	for _, id := range order {
		if p := byID[id]; p.Bookings > 0 {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Revenue.Amount.GreaterThan(out[j].Revenue.Amount) })
	if len(out) > topPropertyRows {
		out = out[:topPropertyRows]
	}
	return out
}

func recent(items []*reviews.Review) []ReviewSnippet {
	sorted := append([]*reviews.Review(nil), items...)
	reviews.Sort(sorted, reviews.SortNewest)
	if len(sorted) > recentReviews {
		sorted = sorted[:recentReviews]
	}
	out := make([]ReviewSnippet, len(sorted))
	for i, r := range sorted {
		out[i] = ReviewSnippet{ID: r.ID, Guest: r.AuthorName, Rating: r.Rating, Comment: r.Comment, Date: r.CreatedAt}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
