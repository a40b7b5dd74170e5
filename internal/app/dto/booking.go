package dto

import (
	"time"

	"addisstay/internal/domain/booking"
)

type BookingListing struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
}

type Booking struct {
	ID              string         `json:"id"`
	Listing         BookingListing `json:"listing"`
	HostID          string         `json:"host_id"`
	GuestID         string         `json:"guest_id"`
	Guest           booking.Guest  `json:"guest"`
	CheckIn         time.Time      `json:"check_in"`
	CheckOut        time.Time      `json:"check_out"`
	Nights          int            `json:"nights"`
	Adults          int            `json:"adults"`
	Children        int            `json:"children"`
	Price           PriceBreakdown `json:"price"`
	Status          string         `json:"status"`
	SpecialRequests string         `json:"special_requests,omitempty"`
	CancelReason    string         `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type BookingCollection struct {
	Items  []Booking       `json:"items"`
	Counts *booking.Counts `json:"counts,omitempty"`
}

func MapBooking(b *booking.Booking, currency string) Booking {
	return Booking{
		ID:              string(b.ID),
		Listing:         BookingListing{ID: string(b.ListingID), Title: b.ListingTitle, Image: b.ListingImage},
		HostID:          string(b.HostID),
		GuestID:         b.GuestID,
		Guest:           b.Guest,
		CheckIn:         b.Range.CheckIn,
		CheckOut:        b.Range.CheckOut,
		Nights:          b.Nights(),
		Adults:          b.Adults,
		Children:        b.Children,
		Price:           MapBreakdown(b.Price, currency),
		Status:          string(b.Status),
		SpecialRequests: b.SpecialRequests,
		CancelReason:    b.CancelReason,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func MapBookings(items []*booking.Booking, currency string) []Booking {
	out := make([]Booking, len(items))
	for i, b := range items {
		out[i] = MapBooking(b, currency)
	}
	return out
}
