package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"addisstay/internal/domain/shared/daterange"
	"addisstay/internal/domain/shared/money"
)

var (
	ErrNoNights       = errors.New("pricing: check-out must be at least one night after check-in")
	ErrInvalidNightly = errors.New("pricing: nightly rate must be positive")
)

// Policy holds the percentage surcharges applied on top of the base price.
type Policy struct {
	ServiceFeeRate decimal.Decimal
	TaxRate        decimal.Decimal
}

// DefaultPolicy is the storefront's 14% service fee and 12% tax.
var DefaultPolicy = Policy{
	ServiceFeeRate: decimal.RequireFromString("0.14"),
	TaxRate:        decimal.RequireFromString("0.12"),
}

// Breakdown is the price of a stay. Amounts are exact; rounding happens only
// when converting for display.
type Breakdown struct {
	Nights     int         `json:"nights"`
	Nightly    money.Money `json:"nightly"`
	Base       money.Money `json:"base"`
	ServiceFee money.Money `json:"service_fee"`
	Taxes      money.Money `json:"taxes"`
	Total      money.Money `json:"total"`
}

// Quote prices a stay with the default policy.
func Quote(nightly money.Money, stay daterange.DateRange) (Breakdown, error) {
	return DefaultPolicy.Quote(nightly, stay)
}

// Quote prices a stay: base = nights x nightly, fee and tax are percentages
// of base, total is their sum. Fewer than one night is rejected.
func (p Policy) Quote(nightly money.Money, stay daterange.DateRange) (Breakdown, error) {
	if !nightly.IsPositive() {
		return Breakdown{}, ErrInvalidNightly
	}
	nights := stay.Nights()
	if nights <= 0 {
		return Breakdown{}, ErrNoNights
	}
	base := nightly.MulInt(int64(nights))
	fee := base.Mul(p.ServiceFeeRate)
	tax := base.Mul(p.TaxRate)
	total := money.Money{
		Amount:   base.Amount.Add(fee.Amount).Add(tax.Amount),
		Currency: nightly.Currency,
	}
	return Breakdown{
		Nights:     nights,
		Nightly:    nightly,
		Base:       base,
		ServiceFee: fee,
		Taxes:      tax,
		Total:      total,
	}, nil
}
