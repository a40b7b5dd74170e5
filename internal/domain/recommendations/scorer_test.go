package recommendations

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addisstay/internal/domain/listings"
	"addisstay/internal/domain/shared/money"
)

type sample struct {
	id        string
	area      string
	price     string
	rating    float64
	kind      listings.Kind
	amenities []string
	superhost bool
}

// catalog mirrors the launch inventory of Addis Ababa hotels.
var catalog = []sample{
	{"1", "bole", "120", 4.8, listings.KindHotel, []string{"wifi", "parking", "pool", "breakfast"}, true},
	{"2", "kazanchis", "150", 4.9, listings.KindHotel, []string{"wifi", "parking", "pool", "breakfast"}, true},
	{"3", "bole", "135", 4.7, listings.KindHotel, []string{"wifi", "parking", "pool", "breakfast"}, false},
	{"4", "piazza", "85", 4.5, listings.KindHotel, []string{"wifi", "breakfast"}, false},
	{"5", "mexico", "95", 4.6, listings.KindHotel, []string{"wifi", "parking", "breakfast"}, false},
	{"6", "bole", "110", 4.4, listings.KindHotel, []string{"wifi", "parking"}, false},
	{"7", "kazanchis", "125", 4.3, listings.KindHotel, []string{"wifi", "parking", "breakfast"}, false},
	{"8", "gerji", "75", 4.2, listings.KindHotel, []string{"wifi", "parking"}, false},
}

func build(s sample) *listings.Listing {
	return &listings.Listing{
		ID:          listings.ListingID(s.id),
		Area:        s.area,
		NightlyRate: money.Must(s.price, "ETB"),
		Rating:      s.rating,
		Kind:        s.kind,
		Amenities:   s.amenities,
		Superhost:   s.superhost,
		State:       listings.ListingActive,
	}
}

func pool() []*listings.Listing {
	out := make([]*listings.Listing, len(catalog))
	for i, s := range catalog {
		out[i] = build(s)
	}
	return out
}

func TestScoreComponents(t *testing.T) {
	ref := build(catalog[0])
	// same area 50, price diff 15 -> 30, rating diff 0.1 -> 20, kind 15, 4 amenities 20.
	assert.Equal(t, 135, Score(ref, build(catalog[2])))
	// other area, diff 30 -> 20, rating 0.1 -> 20, kind 15, amenities 20, superhost 10.
	assert.Equal(t, 85, Score(ref, build(catalog[1])))
	// gerji: diff 45 -> 20, rating 0.6 -> 0, kind 15, 2 amenities 10.
	assert.Equal(t, 45, Score(ref, build(catalog[7])))
}

func TestScoreBoundaries(t *testing.T) {
	ref := &listings.Listing{Area: "a", NightlyRate: money.Must("100", "ETB"), Rating: 4.8, Kind: listings.KindHotel}
	cases := []struct {
		price  string
		rating float64
		want   int
	}{
		{"125", 4.6, 30 + 20},
		{"150", 4.3, 20 + 10},
		{"200", 4.29, 10 + 0},
		{"200.01", 4.8, 0 + 20},
	}
	for _, tc := range cases {
		other := &listings.Listing{Area: "b", NightlyRate: money.Must(tc.price, "ETB"), Rating: tc.rating, Kind: listings.KindProperty}
		assert.Equal(t, tc.want, Score(ref, other), fmt.Sprintf("price %s rating %v", tc.price, tc.rating))
	}
}

func TestScoreIsSymmetric(t *testing.T) {
	items := pool()
	for _, a := range items {
		for _, b := range items {
			assert.Equal(t, Score(a, b), Score(b, a), "%s vs %s", a.ID, b.ID)
		}
	}
}

func TestRecommendExcludesReferenceAndRanks(t *testing.T) {
	got := Recommend("1", pool(), DefaultLimit)
	require.Len(t, got, 6)
	for i, s := range got {
		assert.NotEqual(t, listings.ListingID("1"), s.Listing.ID)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Score, s.Score)
		}
	}
	assert.Equal(t, listings.ListingID("3"), got[0].Listing.ID)
}

func TestRecommendLengthIsBoundedByPool(t *testing.T) {
	items := pool()
	for n := 1; n <= len(items); n++ {
		got := Recommend("1", items[:n], DefaultLimit)
		want := n - 1
		if want > DefaultLimit {
			want = DefaultLimit
		}
		assert.Len(t, got, want)
	}
}

func TestRecommendUnknownReferenceIsEmpty(t *testing.T) {
	got := Recommend("missing", pool(), DefaultLimit)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRecommendTiesKeepPoolOrder(t *testing.T) {
	ref := &listings.Listing{ID: "ref", Area: "x", NightlyRate: money.Must("100", "ETB"), Kind: listings.KindHotel}
	twinA := &listings.Listing{ID: "a", Area: "y", NightlyRate: money.Must("100", "ETB"), Kind: listings.KindHotel}
	twinB := &listings.Listing{ID: "b", Area: "y", NightlyRate: money.Must("100", "ETB"), Kind: listings.KindHotel}
	got := Recommend("ref", []*listings.Listing{twinB, ref, twinA}, 0)
	require.Len(t, got, 2)
	assert.Equal(t, listings.ListingID("b"), got[0].Listing.ID)
	assert.Equal(t, listings.ListingID("a"), got[1].Listing.ID)
}
