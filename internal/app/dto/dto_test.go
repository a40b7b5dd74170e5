package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"addisstay/internal/domain/shared/money"
)

func TestDisplayCurrency(t *testing.T) {
	assert.Equal(t, "USD", DisplayCurrency("usd", "EUR"))
	assert.Equal(t, "EUR", DisplayCurrency("XXX", "EUR"))
	assert.Equal(t, "ETB", DisplayCurrency("", ""))
}

func TestDisplayCurrencyRetiredPreference(t *testing.T) {
	assert.Equal(t, "ETB", DisplayCurrency("", "ZWD"))
	assert.Equal(t, "KES", DisplayCurrency("kes", "ZWD"))
}

func TestMapPriceConverts(t *testing.T) {
	p := MapPrice(money.Must("1000", "ETB"), "USD")
	assert.Equal(t, "ETB", p.Currency)
	assert.Equal(t, "USD", p.DisplayCurrency)
	assert.Equal(t, "18", p.DisplayAmount.String())
	assert.Equal(t, "$18", p.Formatted)
}

func TestMapPriceUnknownDisplayFallsBack(t *testing.T) {
	p := MapPrice(money.Must("1000", "ETB"), "ZZZ")
	assert.Equal(t, "ETB", p.DisplayCurrency)
	assert.Equal(t, "ETB1,000", p.Formatted)
}

func TestMapPriceUnknownStoredCurrency(t *testing.T) {
	p := MapPrice(money.Must("12.5", "ZWD"), "USD")
	assert.Equal(t, "ZWD", p.DisplayCurrency)
	assert.Equal(t, "12.50 ZWD", p.Formatted)
}
