package reviews

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addisstay/internal/domain/listings"
)

var now = time.Date(2025, 4, 2, 12, 0, 0, 0, time.UTC)

var listing = &listings.Listing{ID: "l1", Host: "host-1", Title: "Sheraton Addis"}

func submit(t *testing.T, id string, rating int, at time.Time) *Review {
	t.Helper()
	r, err := Submit(SubmitParams{
		ID:         ReviewID(id),
		Listing:    listing,
		AuthorID:   "guest-" + id,
		AuthorName: "Guest " + id,
		Rating:     rating,
		Comment:    "Excellent service and rooms",
		Now:        at,
	})
	require.NoError(t, err)
	return r
}

func TestSubmitValidation(t *testing.T) {
	base := SubmitParams{ID: "r", Listing: listing, AuthorID: "g", Rating: 5, Comment: "  ten chars!  ", Now: now}

	cases := []struct {
		name   string
		mutate func(p *SubmitParams)
		want   error
	}{
		{"rating low", func(p *SubmitParams) { p.Rating = 0 }, ErrInvalidRating},
		{"rating high", func(p *SubmitParams) { p.Rating = 6 }, ErrInvalidRating},
		{"short after trim", func(p *SubmitParams) { p.Comment = "   short    " }, ErrCommentTooShort},
		{"too long", func(p *SubmitParams) { p.Comment = strings.Repeat("a", 501) }, ErrCommentTooLong},
		{"host", func(p *SubmitParams) { p.AuthorID = "host-1" }, ErrOwnListing},
		{"anonymous", func(p *SubmitParams) { p.AuthorID = " " }, ErrAuthorRequired},
		{"photos", func(p *SubmitParams) { p.Photos = []string{"1", "2", "3", "4", "5", "6"} }, ErrTooManyPhotos},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			_, err := Submit(p)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	r, err := Submit(base)
	require.NoError(t, err)
	assert.Equal(t, "ten chars!", r.Comment)
	assert.Equal(t, listings.HostID("host-1"), r.HostID)
	require.Len(t, r.PendingEvents(), 1)

	base.Comment = strings.Repeat("é", 500)
	_, err = Submit(base)
	assert.NoError(t, err)
}

func TestMarkHelpful(t *testing.T) {
	r := submit(t, "1", 5, now)
	assert.ErrorIs(t, r.MarkHelpful("guest-1"), ErrOwnReview)
	require.NoError(t, r.MarkHelpful("u2"))
	assert.ErrorIs(t, r.MarkHelpful("u2"), ErrAlreadyMarked)
	require.NoError(t, r.MarkHelpful("u3"))
	assert.Equal(t, 2, r.Helpful)
}

func TestSortOrders(t *testing.T) {
	old := submit(t, "old", 3, now.Add(-48*time.Hour))
	mid := submit(t, "mid", 5, now.Add(-24*time.Hour))
	fresh := submit(t, "fresh", 5, now)

	items := []*Review{old, fresh, mid}
	Sort(items, ParseSort("newest"))
	assert.Equal(t, []ReviewID{"fresh", "mid", "old"}, reviewIDs(items))

	Sort(items, SortOldest)
	assert.Equal(t, []ReviewID{"old", "mid", "fresh"}, reviewIDs(items))

	Sort(items, SortRating)
	assert.Equal(t, []ReviewID{"fresh", "mid", "old"}, reviewIDs(items))

	assert.Equal(t, SortNewest, ParseSort(""))
}

func TestSummarize(t *testing.T) {
	items := []*Review{
		submit(t, "a", 5, now),
		submit(t, "b", 5, now),
		submit(t, "c", 4, now),
		submit(t, "d", 1, now),
	}
	s := Summarize(items)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3.75, s.Average)
	assert.Equal(t, []StarCount{{5, 2}, {4, 1}, {3, 0}, {2, 0}, {1, 1}}, s.Distribution)

	empty := Summarize(nil)
	assert.Zero(t, empty.Average)
	assert.Len(t, empty.Distribution, 5)
}

func reviewIDs(items []*Review) []ReviewID {
	out := make([]ReviewID, len(items))
	for i, r := range items {
		out[i] = r.ID
	}
	return out
}
