package dto

import (
	"addisstay/internal/domain/analytics"
)

type MonthRevenue struct {
	Month   string `json:"month"`
	Revenue Price  `json:"revenue"`
}

type PropertyPerformance struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Revenue  Price  `json:"revenue"`
	Bookings int    `json:"bookings"`
}

type Dashboard struct {
	Period         string                    `json:"period"`
	TotalRevenue   Price                     `json:"total_revenue"`
	TotalBookings  int                       `json:"total_bookings"`
	AverageRating  float64                   `json:"average_rating"`
	ViewsCount     int64                     `json:"views_count"`
	OccupancyRate  float64                   `json:"occupancy_rate"`
	ResponseRate   float64                   `json:"response_rate"`
	RevenueGrowth  float64                   `json:"revenue_growth"`
	BookingGrowth  float64                   `json:"booking_growth"`
	MonthlyRevenue []MonthRevenue            `json:"monthly_revenue"`
	TopProperties  []PropertyPerformance     `json:"top_properties"`
	RecentReviews  []analytics.ReviewSnippet `json:"recent_reviews"`
}

func MapDashboard(d analytics.Dashboard, currency string) Dashboard {
	out := Dashboard{
		Period:         string(d.Period),
		TotalRevenue:   MapPrice(d.TotalRevenue, currency),
		TotalBookings:  d.TotalBookings,
		AverageRating:  d.AverageRating,
		ViewsCount:     d.ViewsCount,
		OccupancyRate:  d.OccupancyRate,
		ResponseRate:   d.ResponseRate,
		RevenueGrowth:  d.RevenueGrowth,
		BookingGrowth:  d.BookingGrowth,
		MonthlyRevenue: make([]MonthRevenue, len(d.MonthlyRevenue)),
		TopProperties:  make([]PropertyPerformance, len(d.TopProperties)),
		RecentReviews:  d.RecentReviews,
	}
	for i, m := range d.MonthlyRevenue {
		out.MonthlyRevenue[i] = MonthRevenue{Month: m.Month, Revenue: MapPrice(m.Revenue, currency)}
	}
	for i, p := range d.TopProperties {
		out.TopProperties[i] = PropertyPerformance{ID: string(p.ListingID), Name: p.Name, Revenue: MapPrice(p.Revenue, currency), Bookings: p.Bookings}
	}
	return out
}
