package ginserver

import (
	"fmt"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"addisstay/internal/app/dto"
	"addisstay/internal/domain/shared/locale"
	"addisstay/internal/domain/shared/money"
)

// CurrencyHandler serves the static currency and language tables.
type CurrencyHandler struct{}

func (CurrencyHandler) List(c *gin.Context) {
	selected, ok := displayCurrency(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"base":       money.BaseCurrency,
		"selected":   selected,
		"currencies": dto.MapCurrencies(money.Supported()),
	})
}

func (CurrencyHandler) Languages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default":   locale.DefaultLanguage,
		"languages": locale.Languages(),
	})
}

// Convert handles ?amount=&from=&to=; from defaults to the base currency.
func (CurrencyHandler) Convert(c *gin.Context) {
	amount, err := parseDecimal("amount", c.Query("amount"))
	if err != nil {
		respondError(c, err)
		return
	}
	from := strings.ToUpper(strings.TrimSpace(c.DefaultQuery("from", money.BaseCurrency)))
	to := strings.ToUpper(strings.TrimSpace(c.Query("to")))
	if to == "" {
		respondError(c, fmt.Errorf("%w: to is required", errBadRequest))
		return
	}
	result, err := money.Convert(amount, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	formatted, err := money.Format(result, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Conversion{From: from, To: to, Amount: amount, Result: result, Formatted: formatted})
}
