package dto

import (
	"time"

	"addisstay/internal/domain/listings"
	"addisstay/internal/domain/recommendations"
	"addisstay/internal/domain/reviews"
)

type ListingCard struct {
	ID           string    `json:"id"`
	HostID       string    `json:"host_id"`
	Title        string    `json:"title"`
	Location     string    `json:"location"`
	Area         string    `json:"area"`
	Kind         string    `json:"kind"`
	PropertyType string    `json:"property_type,omitempty"`
	Price        Price     `json:"price"`
	Rating       float64   `json:"rating"`
	ReviewsCount int       `json:"reviews_count"`
	Image        string    `json:"image,omitempty"`
	Images       []string  `json:"images"`
	Amenities    []string  `json:"amenities"`
	MaxGuests    int       `json:"max_guests"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    int       `json:"bathrooms"`
	Verified     bool      `json:"verified"`
	Superhost    bool      `json:"superhost"`
	Distance     string    `json:"distance,omitempty"`
	State        string    `json:"state"`
	CreatedAt    time.Time `json:"created_at"`
}

type ListingDetail struct {
	ListingCard
	Description string          `json:"description"`
	Reviews     reviews.Summary `json:"review_summary"`
	Saved       bool            `json:"saved"`
}

type ListingCatalog struct {
	Items    []ListingCard `json:"items"`
	Total    int           `json:"total"`
	Limit    int           `json:"limit"`
	Offset   int           `json:"offset"`
	Currency string        `json:"currency"`
}

type Recommendation struct {
	ListingCard
	Score int `json:"score"`
}

type RecommendationList struct {
	ListingID string           `json:"listing_id"`
	Items     []Recommendation `json:"items"`
}

func MapListingCard(l *listings.Listing, currency string) ListingCard {
	return ListingCard{
		ID:           string(l.ID),
		HostID:       string(l.Host),
		Title:        l.Title,
		Location:     l.Location,
		Area:         l.Area,
		Kind:         string(l.Kind),
		PropertyType: l.PropertyType,
		Price:        MapPrice(l.NightlyRate, currency),
		Rating:       l.Rating,
		ReviewsCount: l.ReviewsCount,
		Image:        l.Cover(),
		Images:       nonNil(l.Images),
		Amenities:    nonNil(l.Amenities),
		MaxGuests:    l.MaxGuests,
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		Verified:     l.Verified,
		Superhost:    l.Superhost,
		Distance:     l.Distance,
		State:        string(l.State),
		CreatedAt:    l.CreatedAt,
	}
}

func MapListingCards(items []*listings.Listing, currency string) []ListingCard {
	out := make([]ListingCard, len(items))
	for i, l := range items {
		out[i] = MapListingCard(l, currency)
	}
	return out
}

func MapRecommendations(id listings.ListingID, items []recommendations.Scored, currency string) RecommendationList {
	out := RecommendationList{ListingID: string(id), Items: make([]Recommendation, len(items))}
	for i, s := range items {
		out.Items[i] = Recommendation{ListingCard: MapListingCard(s.Listing, currency), Score: s.Score}
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
