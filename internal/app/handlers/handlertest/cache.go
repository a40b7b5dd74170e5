package handlertest

import (
	"sync"

	"addisstay/internal/app/policies"
	"addisstay/internal/domain/listings"
	"addisstay/internal/domain/recommendations"
)

// RecommendationCache is a map-backed cache that counts hits and purges.
type RecommendationCache struct {
	mu     sync.Mutex
	items  map[listings.ListingID][]recommendations.Scored
	hits   int
	purges int
}

func NewRecommendationCache() *RecommendationCache {
	return &RecommendationCache{items: make(map[listings.ListingID][]recommendations.Scored)}
}

func (c *RecommendationCache) Get(id listings.ListingID) ([]recommendations.Scored, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, ok := c.items[id]
	if ok {
		c.hits++
	}
	return items, ok
}

func (c *RecommendationCache) Set(id listings.ListingID, items []recommendations.Scored) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = items
}

func (c *RecommendationCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
	c.purges++
}

func (c *RecommendationCache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

func (c *RecommendationCache) Purges() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purges
}

var _ policies.RecommendationCache = (*RecommendationCache)(nil)
