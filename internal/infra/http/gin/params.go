package ginserver

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"addisstay/internal/app/dto"
	"addisstay/internal/domain/shared/money"
)

// displayCurrency resolves ?currency= first and the caller's preference
// second. An unknown ?currency= is answered with 400 and ok is false.
func displayCurrency(c *gin.Context) (string, bool) {
	requested := strings.TrimSpace(c.Query("currency"))
	if requested != "" {
		if _, err := money.Lookup(requested); err != nil {
			respondError(c, fmt.Errorf("%w: %q", err, requested))
			return "", false
		}
	}
	preferred := ""
	if p, ok := currentPrincipal(c); ok {
		preferred = p.Currency
	}
	return dto.DisplayCurrency(requested, preferred), true
}

func viewerID(c *gin.Context) string {
	if p, ok := currentPrincipal(c); ok {
		return p.ID
	}
	return ""
}

func parseDate(field, raw string) (time.Time, error) {
	t, ok := parseFlexibleTime(raw)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s must be a date (YYYY-MM-DD)", errBadRequest, field)
	}
	return t, nil
}

func parseFlexibleTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s must be a number", errBadRequest, field)
	}
	return d, nil
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseInt(raw string) int {
	value, _ := strconv.Atoi(strings.TrimSpace(raw))
	if value < 0 {
		return 0
	}
	return value
}

func parseFloat(raw string) float64 {
	value, _ := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if value < 0 {
		return 0
	}
	return value
}
