package policies

import (
	"addisstay/internal/domain/pricing"
	"addisstay/internal/domain/shared/daterange"
	"addisstay/internal/domain/shared/money"
)

// PriceQuoter prices a stay. pricing.Policy satisfies it.
type PriceQuoter interface {
	Quote(nightly money.Money, stay daterange.DateRange) (pricing.Breakdown, error)
}

var _ PriceQuoter = pricing.Policy{}
