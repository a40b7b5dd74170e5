package listings

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// CatalogSort defines a supported ordering.
type CatalogSort string

const (
	SortRecommended CatalogSort = "recommended"
	SortPriceLow    CatalogSort = "price_low"
	SortPriceHigh   CatalogSort = "price_high"
	SortRating      CatalogSort = "rating"
	SortNewest      CatalogSort = "newest"

	defaultSearchLimit = 24
	maxSearchLimit     = 60
)

// SearchParams describe catalog filters and paging options. Zero values mean
// "no filter".
type SearchParams struct {
	Host          HostID
	Query         string
	Area          string
	PriceMin      decimal.Decimal
	PriceMax      decimal.Decimal
	Amenities     []string
	MinRating     float64
	Kinds         []Kind
	PropertyTypes []string
	MinGuests     int
	IncludeHidden bool
	Sort          CatalogSort
	Limit         int
	Offset        int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	n := p
	n.Query = strings.ToLower(strings.TrimSpace(n.Query))
	n.Area = strings.ToLower(strings.TrimSpace(n.Area))
	n.Amenities = NormalizeTokens(n.Amenities)
	n.PropertyTypes = NormalizeTokens(n.PropertyTypes)
	if n.PriceMin.IsNegative() {
		n.PriceMin = decimal.Zero
	}
	if n.PriceMax.IsPositive() && n.PriceMax.LessThan(n.PriceMin) {
		n.PriceMax = decimal.Zero
	}
	if n.MinRating < 0 {
		n.MinRating = 0
	}
	if n.MinGuests < 0 {
		n.MinGuests = 0
	}
	if n.Limit <= 0 {
		n.Limit = defaultSearchLimit
	}
	if n.Limit > maxSearchLimit {
		n.Limit = maxSearchLimit
	}
	if n.Offset < 0 {
		n.Offset = 0
	}
	switch n.Sort {
	case SortRecommended, SortPriceLow, SortPriceHigh, SortRating, SortNewest:
	default:
		n.Sort = SortRecommended
	}
	return n
}

// Matches reports whether l passes every filter of the (normalized) params.
func (p SearchParams) Matches(l *Listing) bool {
	if l == nil {
		return false
	}
	if p.Host != "" && l.Host != p.Host {
		return false
	}
	if !p.IncludeHidden && l.State != ListingActive {
		return false
	}
	if p.Query != "" && !containsFold(p.Query, l.Title, l.Location, l.Area) {
		return false
	}
	if p.Area != "" && l.Area != p.Area {
		return false
	}
	if p.PriceMin.IsPositive() && l.NightlyRate.Amount.LessThan(p.PriceMin) {
		return false
	}
	if p.PriceMax.IsPositive() && l.NightlyRate.Amount.GreaterThan(p.PriceMax) {
		return false
	}
	if len(p.Amenities) > 0 && !anyShared(p.Amenities, l.Amenities) {
		return false
	}
	if p.MinRating > 0 && l.Rating < p.MinRating {
		return false
	}
	if len(p.Kinds) > 0 && !containsKind(p.Kinds, l.Kind) {
		return false
	}
	if len(p.PropertyTypes) > 0 && !anyShared(p.PropertyTypes, []string{l.PropertyType}) {
		return false
	}
	if p.MinGuests > 0 && l.MaxGuests < p.MinGuests {
		return false
	}
	return true
}

// SortListings orders items in place. The recommended order is catalog order,
// so it leaves items untouched; every other sort is stable on top of it.
func SortListings(items []*Listing, by CatalogSort) {
	var less func(a, b *Listing) bool
	switch by {
	case SortPriceLow:
		less = func(a, b *Listing) bool { return a.NightlyRate.Amount.LessThan(b.NightlyRate.Amount) }
	case SortPriceHigh:
		less = func(a, b *Listing) bool { return a.NightlyRate.Amount.GreaterThan(b.NightlyRate.Amount) }
	case SortRating:
		less = func(a, b *Listing) bool { return a.Rating > b.Rating }
	case SortNewest:
		less = func(a, b *Listing) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// Page applies offset/limit and returns the window plus the total count.
func Page(items []*Listing, offset, limit int) SearchResult {
	total := len(items)
	if offset >= total {
		return SearchResult{Items: []*Listing{}, Total: total}
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return SearchResult{Items: items[offset:end], Total: total}
}

// NormalizeTokens trims, lower-cases and de-duplicates while keeping order.
func NormalizeTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(strings.ToLower(token))
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

func containsFold(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func anyShared(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

func containsKind(kinds []Kind, k Kind) bool {
	for _, candidate := range kinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// SearchResult wraps search hits with meta.
type SearchResult struct {
	Items []*Listing
	Total int
}
