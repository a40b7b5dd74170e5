package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var grouping = message.NewPrinter(language.English)

// Convert moves amount from one currency into another through the base
// currency and rounds the result to two decimals. Equal codes return the
// amount untouched.
func Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	src, err := Lookup(from)
	if err != nil {
		return decimal.Decimal{}, err
	}
	dst, err := Lookup(to)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if src.Code == dst.Code {
		return amount, nil
	}
	inBase := amount
	if src.Code != BaseCurrency {
		inBase = amount.Div(src.Rate)
	}
	converted := inBase
	if dst.Code != BaseCurrency {
		converted = inBase.Mul(dst.Rate)
	}
	return converted.Round(2), nil
}

// ConvertMoney converts m into the target currency.
func ConvertMoney(m Money, to string) (Money, error) {
	amount, err := Convert(m.Amount, m.Currency, to)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: strings.ToUpper(strings.TrimSpace(to))}, nil
}

// Format renders an amount already expressed in code: symbol prefix, grouped
// thousands, whole units for zero-decimal currencies and at most two trimmed
// fraction digits otherwise.
func Format(amount decimal.Decimal, code string) (string, error) {
	c, err := Lookup(code)
	if err != nil {
		return "", err
	}
	if c.ZeroDecimal {
		return c.Symbol + group(amount.Round(0)), nil
	}
	return c.Symbol + group(amount.Round(2)), nil
}

// FormatPrice converts then formats, the pair every price label goes through.
func FormatPrice(amount decimal.Decimal, from, to string) (string, error) {
	converted, err := Convert(amount, from, to)
	if err != nil {
		return "", err
	}
	return Format(converted, to)
}

func group(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	out := sign + grouping.Sprintf("%d", whole.IntPart())
	frac := d.Sub(whole)
	if frac.IsZero() {
		return out
	}
	digits := strings.TrimRight(strings.TrimPrefix(frac.StringFixed(2), "0."), "0")
	if digits == "" {
		return out
	}
	return out + "." + digits
}
