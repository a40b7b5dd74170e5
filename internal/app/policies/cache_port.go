package policies

import (
	"addisstay/internal/domain/listings"
	"addisstay/internal/domain/recommendations"
)

// RecommendationCache keeps computed similar-listing results. Any catalog
// change purges it.
type RecommendationCache interface {
	Get(id listings.ListingID) ([]recommendations.Scored, bool)
	Set(id listings.ListingID, items []recommendations.Scored)
	Purge()
}
