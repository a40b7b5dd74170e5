package reviews

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"addisstay/internal/domain/listings"
	"addisstay/internal/domain/shared/events"
)

const (
	MinCommentLength = 10
	MaxCommentLength = 500
	MaxPhotos        = 5
)

var (
	ErrInvalidRating   = errors.New("reviews: rating must be between 1 and 5")
	ErrCommentTooShort = errors.New("reviews: comment must be at least 10 characters")
	ErrCommentTooLong  = errors.New("reviews: comment must be at most 500 characters")
	ErrTooManyPhotos   = errors.New("reviews: too many photos")
	ErrNotFound        = errors.New("reviews: not found")
	ErrAlreadyReviewed = errors.New("reviews: listing already reviewed by this user")
	ErrOwnListing      = errors.New("reviews: hosts cannot review their own listing")
	ErrOwnReview       = errors.New("reviews: cannot mark own review as helpful")
	ErrAlreadyMarked   = errors.New("reviews: already marked as helpful")
	ErrAuthorRequired  = errors.New("reviews: author is required")
)

type ReviewID string

type Review struct {
	ID           ReviewID
	ListingID    listings.ListingID
	HostID       listings.HostID
	AuthorID     string
	AuthorName   string
	AuthorAvatar string
	Rating       int
	Comment      string
	Photos       []string
	Helpful      int
	HelpfulBy    []string
	CreatedAt    time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ReviewID) (*Review, error)
	Save(ctx context.Context, review *Review) error
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Review, error)
	ListByHost(ctx context.Context, hostID listings.HostID) ([]*Review, error)
	ExistsForAuthor(ctx context.Context, listingID listings.ListingID, authorID string) (bool, error)
}

type SubmitParams struct {
	ID           ReviewID
	Listing      *listings.Listing
	AuthorID     string
	AuthorName   string
	AuthorAvatar string
	Rating       int
	Comment      string
	Photos       []string
	Now          time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Listing == nil {
		return nil, listings.ErrListingNotFound
	}
	author := strings.TrimSpace(params.AuthorID)
	if author == "" {
		return nil, ErrAuthorRequired
	}
	if string(params.Listing.Host) == author {
		return nil, ErrOwnListing
	}
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	comment, err := validateComment(params.Comment)
	if err != nil {
		return nil, err
	}
	photos := make([]string, 0, len(params.Photos))
	for _, p := range params.Photos {
		if p = strings.TrimSpace(p); p != "" {
			photos = append(photos, p)
		}
	}
	if len(photos) > MaxPhotos {
		return nil, ErrTooManyPhotos
	}
	r := &Review{
		ID:           params.ID,
		ListingID:    params.Listing.ID,
		HostID:       params.Listing.Host,
		AuthorID:     author,
		AuthorName:   strings.TrimSpace(params.AuthorName),
		AuthorAvatar: strings.TrimSpace(params.AuthorAvatar),
		Rating:       params.Rating,
		Comment:      comment,
		Photos:       photos,
		CreatedAt:    params.Now.UTC(),
	}
	r.Record(ReviewSubmitted{
		ReviewID:     r.ID,
		ListingID:    r.ListingID,
		ListingTitle: params.Listing.Title,
		HostID:       r.HostID,
		AuthorName:   r.AuthorName,
		Rating:       r.Rating,
		At:           r.CreatedAt,
	})
	return r, nil
}

// MarkHelpful counts one vote per user; authors cannot vote for themselves.
func (r *Review) MarkHelpful(userID string) error {
	if userID == r.AuthorID {
		return ErrOwnReview
	}
	for _, v := range r.HelpfulBy {
		if v == userID {
			return ErrAlreadyMarked
		}
	}
	r.HelpfulBy = append(r.HelpfulBy, userID)
	r.Helpful = len(r.HelpfulBy)
	return nil
}

func validateComment(raw string) (string, error) {
	comment := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(comment)
	if n < MinCommentLength {
		return "", ErrCommentTooShort
	}
	if n > MaxCommentLength {
		return "", ErrCommentTooLong
	}
	return comment, nil
}
