package reviews

import (
	"context"

	"github.com/google/uuid"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/outbox"
	"addisstay/internal/app/policies"
	"addisstay/internal/app/uow"
	domainlistings "addisstay/internal/domain/listings"
	domainreviews "addisstay/internal/domain/reviews"
	domainuser "addisstay/internal/domain/user"
)

const (
	submitReviewKey = "reviews.submit"
	markHelpfulKey  = "reviews.helpful"
)

type SubmitReviewCommand struct {
	ListingID string   `validate:"required"`
	AuthorID  string   `validate:"required"`
	Rating    int      `validate:"min=1,max=5"`
	Comment   string   `validate:"required"`
	Photos    []string `validate:"max=5,dive,url"`
}

func (SubmitReviewCommand) Key() string       { return submitReviewKey }
func (c SubmitReviewCommand) ActorID() string { return c.AuthorID }

// SubmitReviewHandler stores the review and folds its rating into the
// listing average in the same unit.
type SubmitReviewHandler struct {
	Encoder outbox.EventEncoder
	Cache   policies.RecommendationCache
	Clock   support.Clock
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.Review, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return dto.Review{}, err
	}
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return dto.Review{}, err
	}
	exists, err := unit.Reviews().ExistsForAuthor(ctx, listing.ID, cmd.AuthorID)
	if err != nil {
		return dto.Review{}, err
	}
	if exists {
		return dto.Review{}, domainreviews.ErrAlreadyReviewed
	}
	author, err := unit.Users().ByID(ctx, domainuser.ID(cmd.AuthorID))
	if err != nil {
		return dto.Review{}, err
	}
	now := h.Clock.Now()
	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:           domainreviews.ReviewID(uuid.NewString()),
		Listing:      listing,
		AuthorID:     cmd.AuthorID,
		AuthorName:   author.FullName(),
		AuthorAvatar: author.Avatar,
		Rating:       cmd.Rating,
		Comment:      cmd.Comment,
		Photos:       cmd.Photos,
		Now:          now,
	})
	if err != nil {
		return dto.Review{}, err
	}
	if err := listing.ApplyReview(review.Rating, now); err != nil {
		return dto.Review{}, err
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return dto.Review{}, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return dto.Review{}, err
	}
	if err := support.PublishEvents(ctx, unit, h.Encoder, review); err != nil {
		return dto.Review{}, err
	}
	if h.Cache != nil {
		unit.AfterCommit(h.Cache.Purge)
	}
	return dto.MapReview(review), nil
}

type MarkHelpfulCommand struct {
	ReviewID string `validate:"required"`
	UserID   string `validate:"required"`
}

func (MarkHelpfulCommand) Key() string       { return markHelpfulKey }
func (c MarkHelpfulCommand) ActorID() string { return c.UserID }

type MarkHelpfulHandler struct{}

func (MarkHelpfulHandler) Handle(ctx context.Context, cmd MarkHelpfulCommand) (dto.Review, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return dto.Review{}, err
	}
	review, err := unit.Reviews().ByID(ctx, domainreviews.ReviewID(cmd.ReviewID))
	if err != nil {
		return dto.Review{}, err
	}
	if err := review.MarkHelpful(cmd.UserID); err != nil {
		return dto.Review{}, err
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return dto.Review{}, err
	}
	return dto.MapReview(review), nil
}

var (
	_ commands.Handler[SubmitReviewCommand, dto.Review] = (*SubmitReviewHandler)(nil)
	_ commands.Handler[MarkHelpfulCommand, dto.Review]  = MarkHelpfulHandler{}
)
