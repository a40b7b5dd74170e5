package mongo

import (
	"time"

	"github.com/shopspring/decimal"

	"addisstay/internal/domain/pricing"
	"addisstay/internal/domain/shared/money"
)

// Amounts are stored as decimal strings so they round-trip exactly.
type moneyDocument struct {
	Amount   string `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount.String(), Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		amount = decimal.Zero
	}
	return money.Money{Amount: amount, Currency: d.Currency}
}

type breakdownDocument struct {
	Nights     int           `bson:"nights"`
	Nightly    moneyDocument `bson:"nightly"`
	Base       moneyDocument `bson:"base"`
	ServiceFee moneyDocument `bson:"service_fee"`
	Taxes      moneyDocument `bson:"taxes"`
	Total      moneyDocument `bson:"total"`
}

func newBreakdownDocument(b pricing.Breakdown) breakdownDocument {
	return breakdownDocument{
		Nights:     b.Nights,
		Nightly:    newMoneyDocument(b.Nightly),
		Base:       newMoneyDocument(b.Base),
		ServiceFee: newMoneyDocument(b.ServiceFee),
		Taxes:      newMoneyDocument(b.Taxes),
		Total:      newMoneyDocument(b.Total),
	}
}

func (d breakdownDocument) toBreakdown() pricing.Breakdown {
	return pricing.Breakdown{
		Nights:     d.Nights,
		Nightly:    d.Nightly.toMoney(),
		Base:       d.Base.toMoney(),
		ServiceFee: d.ServiceFee.toMoney(),
		Taxes:      d.Taxes.toMoney(),
		Total:      d.Total.toMoney(),
	}
}

func timestampToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func timeToTimestamp(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
