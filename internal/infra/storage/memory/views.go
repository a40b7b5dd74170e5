package memory

import (
	"context"
	"sync"

	domainlistings "addisstay/internal/domain/listings"
)

type ViewCounter struct {
	mu     sync.Mutex
	counts map[domainlistings.ListingID]int64
}

func NewViewCounter() *ViewCounter {
	return &ViewCounter{counts: make(map[domainlistings.ListingID]int64)}
}

func (v *ViewCounter) Increment(ctx context.Context, id domainlistings.ListingID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.counts[id]++
	return nil
}

func (v *ViewCounter) Total(ctx context.Context, ids []domainlistings.ListingID) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var total int64
	for _, id := range ids {
		total += v.counts[id]
	}
	return total, nil
}
