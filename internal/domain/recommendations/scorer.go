package recommendations

import (
	"sort"

	"github.com/shopspring/decimal"

	"addisstay/internal/domain/listings"
)

// DefaultLimit is how many similar listings a detail page shows.
const DefaultLimit = 6

var (
	priceNear   = decimal.NewFromInt(25)
	priceClose  = decimal.NewFromInt(50)
	priceWithin = decimal.NewFromInt(100)
)

// Score rates how similar other is to ref. The score is symmetric.
func Score(ref, other *listings.Listing) int {
	score := 0
	if ref.Area == other.Area {
		score += 50
	}

	diff := ref.NightlyRate.Amount.Sub(other.NightlyRate.Amount).Abs()
	switch {
	case diff.LessThanOrEqual(priceNear):
		score += 30
	case diff.LessThanOrEqual(priceClose):
		score += 20
	case diff.LessThanOrEqual(priceWithin):
		score += 10
	}

	// Ratings carry one or two decimals; compare in hundredths so 4.8 vs 4.6
	// is exactly 0.2 apart.
	ratingDiff := hundredths(ref.Rating) - hundredths(other.Rating)
	if ratingDiff < 0 {
		ratingDiff = -ratingDiff
	}
	switch {
	case ratingDiff <= 20:
		score += 20
	case ratingDiff <= 50:
		score += 10
	}

	if ref.Kind == other.Kind {
		score += 15
	}
	score += 5 * sharedAmenities(ref.Amenities, other.Amenities)
	if ref.Superhost && other.Superhost {
		score += 10
	}
	return score
}

// Scored pairs a listing with its similarity score.
type Scored struct {
	Listing *listings.Listing
	Score   int
}

// Recommend ranks pool against the listing identified by refID. The
// reference itself is excluded; ties keep pool order. An unknown refID
// yields an empty result.
func Recommend(refID listings.ListingID, pool []*listings.Listing, limit int) []Scored {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var ref *listings.Listing
	for _, l := range pool {
		if l != nil && l.ID == refID {
			ref = l
			break
		}
	}
	if ref == nil {
		return []Scored{}
	}
	scored := make([]Scored, 0, len(pool))
	for _, l := range pool {
		if l == nil || l.ID == refID {
			continue
		}
		scored = append(scored, Scored{Listing: l, Score: Score(ref, l)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func hundredths(rating float64) int64 {
	return decimal.NewFromFloat(rating).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func sharedAmenities(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	have := make(map[string]struct{}, len(b))
	for _, x := range b {
		have[x] = struct{}{}
	}
	n := 0
	counted := make(map[string]struct{}, len(a))
	for _, x := range a {
		if _, dup := counted[x]; dup {
			continue
		}
		counted[x] = struct{}{}
		if _, ok := have[x]; ok {
			n++
		}
	}
	return n
}
