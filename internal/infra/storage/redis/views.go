package redis

import (
	"context"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	domainlistings "addisstay/internal/domain/listings"
)

const viewsKey = "listing_views"

// ViewCounter keeps per-listing detail views in one hash.
type ViewCounter struct {
	client goredis.Cmdable
}

func NewViewCounter(client goredis.Cmdable) *ViewCounter {
	return &ViewCounter{client: client}
}

func (v *ViewCounter) Increment(ctx context.Context, id domainlistings.ListingID) error {
	return v.client.HIncrBy(ctx, viewsKey, string(id), 1).Err()
}

func (v *ViewCounter) Total(ctx context.Context, ids []domainlistings.ListingID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	fields := make([]string, len(ids))
	for i, id := range ids {
		fields[i] = string(id)
	}
	vals, err := v.client.HMGet(ctx, viewsKey, fields...).Result()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, val := range vals {
		s, ok := val.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
