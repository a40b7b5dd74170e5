package reviews

import (
	"context"

	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/queries"
	"addisstay/internal/app/uow"
	domainlistings "addisstay/internal/domain/listings"
	domainreviews "addisstay/internal/domain/reviews"
)

const (
	listReviewsKey     = "reviews.list"
	defaultReviewLimit = 10
	maxReviewLimit     = 50
)

type ListReviewsQuery struct {
	ListingID string `validate:"required"`
	Sort      string
	Limit     int
	Offset    int
}

func (ListReviewsQuery) Key() string { return listReviewsKey }

type ListReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle returns one page of reviews. The summary always covers every
// review of the listing.
func (h *ListReviewsHandler) Handle(ctx context.Context, q ListReviewsQuery) (dto.ReviewCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	defer support.Release(cleanup)

	id := domainlistings.ListingID(q.ListingID)
	if _, err := unit.Listings().ByID(ctx, id); err != nil {
		return dto.ReviewCollection{}, err
	}
	items, err := unit.Reviews().ListByListing(ctx, id)
	if err != nil {
		return dto.ReviewCollection{}, err
	}
	domainreviews.Sort(items, domainreviews.ParseSort(q.Sort))

	limit := q.Limit
	if limit <= 0 {
		limit = defaultReviewLimit
	}
	limit = min(limit, maxReviewLimit)
	offset := min(max(q.Offset, 0), len(items))
	end := min(offset+limit, len(items))

	out := make([]dto.Review, 0, end-offset)
	for _, r := range items[offset:end] {
		out = append(out, dto.MapReview(r))
	}
	return dto.ReviewCollection{
		Items:   out,
		Summary: domainreviews.Summarize(items),
		Total:   len(items),
	}, nil
}

var _ queries.Handler[ListReviewsQuery, dto.ReviewCollection] = (*ListReviewsHandler)(nil)
