package dto

import (
	"time"

	"addisstay/internal/domain/reviews"
)

type Review struct {
	ID           string    `json:"id"`
	ListingID    string    `json:"listing_id"`
	AuthorID     string    `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar,omitempty"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	Photos       []string  `json:"photos"`
	Helpful      int       `json:"helpful"`
	CreatedAt    time.Time `json:"created_at"`
}

type ReviewCollection struct {
	Items   []Review        `json:"items"`
	Summary reviews.Summary `json:"summary"`
	Total   int             `json:"total"`
}

func MapReview(r *reviews.Review) Review {
	return Review{
		ID:           string(r.ID),
		ListingID:    string(r.ListingID),
		AuthorID:     r.AuthorID,
		AuthorName:   r.AuthorName,
		AuthorAvatar: r.AuthorAvatar,
		Rating:       r.Rating,
		Comment:      r.Comment,
		Photos:       nonNil(r.Photos),
		Helpful:      r.Helpful,
		CreatedAt:    r.CreatedAt,
	}
}
