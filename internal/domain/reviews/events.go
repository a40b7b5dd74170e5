package reviews

import (
	"time"

	"addisstay/internal/domain/listings"
)

type ReviewSubmitted struct {
	ReviewID     ReviewID           `json:"review_id"`
	ListingID    listings.ListingID `json:"listing_id"`
	ListingTitle string             `json:"listing_title"`
	HostID       listings.HostID    `json:"host_id"`
	AuthorName   string             `json:"author_name"`
	Rating       int                `json:"rating"`
	At           time.Time          `json:"at"`
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }
