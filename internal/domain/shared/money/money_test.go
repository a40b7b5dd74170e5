package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestConvertSameCurrencyIsIdentity(t *testing.T) {
	got, err := Convert(dec("1.005"), "USD", "usd")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("1.005")))
}

func TestConvertThroughBase(t *testing.T) {
	cases := []struct {
		amount, from, to, want string
	}{
		{"1000", "ETB", "USD", "18"},
		{"100", "USD", "ETB", "5555.56"},
		{"100", "USD", "EUR", "94.44"},
		{"2500", "ETB", "KRW", "60250"},
		{"3", "ETB", "GBP", "0.04"},
	}
	for _, tc := range cases {
		got, err := Convert(dec(tc.amount), tc.from, tc.to)
		require.NoError(t, err)
		assert.Truef(t, got.Equal(dec(tc.want)), "%s %s->%s: got %s want %s", tc.amount, tc.from, tc.to, got, tc.want)
	}
}

func TestConvertUnknownCurrency(t *testing.T) {
	_, err := Convert(dec("1"), "XYZ", "ETB")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
	_, err = Convert(dec("1"), "ETB", "")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestConvertRoundTripStaysWithinRoundingError(t *testing.T) {
	amounts := []string{"0", "1", "99.99", "1250", "87654.32"}
	slack := dec("0.000000001")
	half := dec("0.005")
	for _, a := range Supported() {
		for _, b := range Supported() {
			for _, raw := range amounts {
				x := dec(raw)
				there, err := Convert(x, a.Code, b.Code)
				require.NoError(t, err)
				back, err := Convert(there, b.Code, a.Code)
				require.NoError(t, err)
				bound := half.Mul(a.Rate.Div(b.Rate)).Add(half).Add(slack)
				diff := back.Sub(x).Abs()
				assert.Truef(t, diff.LessThanOrEqual(bound), "%s %s->%s->%s drifted by %s (bound %s)", raw, a.Code, b.Code, a.Code, diff, bound)
			}
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		amount, code, want string
	}{
		{"1234567.5", "USD", "$1,234,567.5"},
		{"1000", "ETB", "ETB1,000"},
		{"18.00", "USD", "$18"},
		{"0.04", "GBP", "£0.04"},
		{"1234.567", "JPY", "¥1,235"},
		{"60250.4", "KRW", "₩60,250"},
		{"-42.1", "EUR", "€-42.1"},
	}
	for _, tc := range cases {
		got, err := Format(dec(tc.amount), tc.code)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestFormatPrice(t *testing.T) {
	got, err := FormatPrice(dec("1000"), "ETB", "JPY")
	require.NoError(t, err)
	assert.Equal(t, "¥2,700", got)

	got, err = FormatPrice(dec("4500"), "ETB", "ETB")
	require.NoError(t, err)
	assert.Equal(t, "ETB4,500", got)

	_, err = FormatPrice(dec("1"), "ETB", "???")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestSupportedTable(t *testing.T) {
	list := Supported()
	assert.Len(t, list, 34)
	assert.Equal(t, "AED", list[0].Code)
	base, err := Lookup("etb")
	require.NoError(t, err)
	assert.True(t, base.Rate.Equal(decimal.NewFromInt(1)))
	jpy, _ := Lookup("JPY")
	assert.True(t, jpy.ZeroDecimal)
}

func TestMoneyArithmetic(t *testing.T) {
	a := Must("100.10", "etb")
	b := Must("0.90", "ETB")
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equal(Must("101", "ETB")))
	assert.True(t, a.MulInt(3).Equal(Must("300.30", "ETB")))

	_, err = a.Add(Must("1", "USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = Parse("abc", "ETB")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = New(decimal.Zero, "EURO")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}
