package dto

import (
	"time"

	"addisstay/internal/domain/pricing"
)

type Quote struct {
	ListingID  string    `json:"listing_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	Nights     int       `json:"nights"`
	Guests     int       `json:"guests"`
	Nightly    Price     `json:"nightly"`
	Base       Price     `json:"base"`
	ServiceFee Price     `json:"service_fee"`
	Taxes      Price     `json:"taxes"`
	Total      Price     `json:"total"`
}

type PriceBreakdown struct {
	Nights     int   `json:"nights"`
	Nightly    Price `json:"nightly"`
	Base       Price `json:"base"`
	ServiceFee Price `json:"service_fee"`
	Taxes      Price `json:"taxes"`
	Total      Price `json:"total"`
}

func MapBreakdown(b pricing.Breakdown, currency string) PriceBreakdown {
	return PriceBreakdown{
		Nights:     b.Nights,
		Nightly:    MapPrice(b.Nightly, currency),
		Base:       MapPrice(b.Base, currency),
		ServiceFee: MapPrice(b.ServiceFee, currency),
		Taxes:      MapPrice(b.Taxes, currency),
		Total:      MapPrice(b.Total, currency),
	}
}
