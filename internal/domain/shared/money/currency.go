package money

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the currency every stored price is expressed in.
const BaseCurrency = "ETB"

var ErrUnknownCurrency = errors.New("money: unknown currency")

// Currency describes a display currency. Rate is the number of units of this
// currency per one unit of the base currency.
type Currency struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Symbol      string          `json:"symbol"`
	Rate        decimal.Decimal `json:"rate"`
	ZeroDecimal bool            `json:"zero_decimal"`
}

func currency(code, name, symbol, rate string) Currency {
	return Currency{Code: code, Name: name, Symbol: symbol, Rate: decimal.RequireFromString(rate)}
}

var table = func() map[string]Currency {
	list := []Currency{
		currency("ETB", "Ethiopian Birr", "ETB", "1.0"),
		currency("USD", "US Dollar", "$", "0.018"),
		currency("EUR", "Euro", "€", "0.017"),
		currency("GBP", "British Pound", "£", "0.014"),
		currency("JPY", "Japanese Yen", "¥", "2.7"),
		currency("CNY", "Chinese Yuan", "¥", "0.13"),
		currency("INR", "Indian Rupee", "₹", "1.5"),
		currency("KRW", "South Korean Won", "₩", "24.1"),
		currency("SAR", "Saudi Riyal", "ر.س", "0.067"),
		currency("AED", "UAE Dirham", "د.إ", "0.066"),
		currency("NGN", "Nigerian Naira", "₦", "28.4"),
		currency("KES", "Kenyan Shilling", "KSh", "2.3"),
		currency("UGX", "Ugandan Shilling", "USh", "67.2"),
		currency("TZS", "Tanzanian Shilling", "TSh", "44.8"),
		currency("RWF", "Rwandan Franc", "RF", "23.1"),
		currency("ZAR", "South African Rand", "R", "0.33"),
		currency("EGP", "Egyptian Pound", "ج.م", "0.88"),
		currency("MAD", "Moroccan Dirham", "د.م.", "0.18"),
		currency("TND", "Tunisian Dinar", "د.ت", "0.056"),
		currency("GHS", "Ghanaian Cedi", "₵", "0.28"),
		currency("XOF", "West African CFA Franc", "CFA", "11.0"),
		currency("XAF", "Central African CFA Franc", "CFA", "11.0"),
		currency("CAD", "Canadian Dollar", "C$", "0.025"),
		currency("AUD", "Australian Dollar", "A$", "0.028"),
		currency("CHF", "Swiss Franc", "CHF", "0.016"),
		currency("SEK", "Swedish Krona", "kr", "0.20"),
		currency("NOK", "Norwegian Krone", "kr", "0.20"),
		currency("DKK", "Danish Krone", "kr", "0.13"),
		currency("PLN", "Polish Złoty", "zł", "0.074"),
		currency("RUB", "Russian Ruble", "₽", "1.67"),
		currency("TRY", "Turkish Lira", "₺", "0.55"),
		currency("BRL", "Brazilian Real", "R$", "0.10"),
		currency("MXN", "Mexican Peso", "$", "0.37"),
		currency("ARS", "Argentine Peso", "$", "18.2"),
	}
	out := make(map[string]Currency, len(list))
	for _, c := range list {
		if c.Code == "JPY" || c.Code == "KRW" {
			c.ZeroDecimal = true
		}
		out[c.Code] = c
	}
	return out
}()

// Lookup returns the table entry for code (case-insensitive).
func Lookup(code string) (Currency, error) {
	c, ok := table[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Currency{}, ErrUnknownCurrency
	}
	return c, nil
}

func IsSupported(code string) bool {
	_, err := Lookup(code)
	return err == nil
}

// Supported lists every currency ordered by code.
func Supported() []Currency {
	out := make([]Currency, 0, len(table))
	for _, c := range table {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
