package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"addisstay/internal/domain/shared/money"
)

// Price pairs the stored amount with its rendering in the viewer's currency.
type Price struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	DisplayAmount   decimal.Decimal `json:"display_amount"`
	DisplayCurrency string          `json:"display_currency"`
	Formatted       string          `json:"formatted"`
}

// DisplayCurrency picks the requested code when supported, then the user's
// preference, then the base currency. HTTP handlers reject an unknown
// requested code before calling it, so the fallback only covers a stored
// preference the currency table no longer carries.
func DisplayCurrency(requested, preferred string) string {
	for _, code := range []string{requested, preferred} {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" && money.IsSupported(code) {
			return code
		}
	}
	return money.BaseCurrency
}

func MapPrice(m money.Money, display string) Price {
	p := Price{
		Amount:          m.Amount,
		Currency:        m.Currency,
		DisplayAmount:   m.Amount,
		DisplayCurrency: m.Currency,
	}
	if converted, err := money.Convert(m.Amount, m.Currency, display); err == nil {
		p.DisplayAmount = converted
		p.DisplayCurrency = strings.ToUpper(display)
	}
	formatted, err := money.Format(p.DisplayAmount, p.DisplayCurrency)
	if err != nil {
		// amount stored in a code outside the table
		formatted = money.Money{Amount: p.DisplayAmount, Currency: p.DisplayCurrency}.String()
	}
	p.Formatted = formatted
	return p
}

type Currency struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Symbol string          `json:"symbol"`
	Rate   decimal.Decimal `json:"rate"`
}

func MapCurrencies(items []money.Currency) []Currency {
	out := make([]Currency, len(items))
	for i, c := range items {
		out[i] = Currency{Code: c.Code, Name: c.Name, Symbol: c.Symbol, Rate: c.Rate}
	}
	return out
}

type Conversion struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Result    decimal.Decimal `json:"result"`
	Formatted string          `json:"formatted"`
}
