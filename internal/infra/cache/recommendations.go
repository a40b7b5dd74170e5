package cache

import (
	"time"

	"github.com/karlseguin/ccache/v3"

	"addisstay/internal/app/policies"
	"addisstay/internal/domain/listings"
	"addisstay/internal/domain/recommendations"
)

// Recommendations caches scored similar listings per reference listing.
type Recommendations struct {
	cache *ccache.Cache[[]recommendations.Scored]
	ttl   time.Duration
}

func NewRecommendations(size int64, ttl time.Duration) *Recommendations {
	if size <= 0 {
		size = 1000
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Recommendations{
		cache: ccache.New(ccache.Configure[[]recommendations.Scored]().MaxSize(size)),
		ttl:   ttl,
	}
}

func (r *Recommendations) Get(id listings.ListingID) ([]recommendations.Scored, bool) {
	item := r.cache.Get(string(id))
	if item == nil || item.Expired() {
		return nil, false
	}
	return item.Value(), true
}

func (r *Recommendations) Set(id listings.ListingID, items []recommendations.Scored) {
	r.cache.Set(string(id), items, r.ttl)
}

func (r *Recommendations) Purge() {
	r.cache.Clear()
}

func (r *Recommendations) Stop() {
	r.cache.Stop()
}

var _ policies.RecommendationCache = (*Recommendations)(nil)
