package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNightsCountsCalendarDays(t *testing.T) {
	in := time.Date(2025, 3, 10, 22, 30, 0, 0, time.UTC)
	out := time.Date(2025, 3, 13, 1, 0, 0, 0, time.UTC)
	dr, err := New(in, out)
	require.NoError(t, err)
	assert.Equal(t, 3, dr.Nights())
	assert.Equal(t, date(2025, 3, 10), dr.CheckIn)
}

func TestNewRejectsSameDayAndReversed(t *testing.T) {
	_, err := New(date(2025, 3, 10), date(2025, 3, 10))
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = New(date(2025, 3, 12), date(2025, 3, 10))
	assert.ErrorIs(t, err, ErrInvalidRange)
	_, err = New(time.Time{}, date(2025, 3, 10))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestUncheckedKeepsNegativeNights(t *testing.T) {
	dr := Unchecked(date(2025, 3, 12), date(2025, 3, 10))
	assert.Equal(t, -2, dr.Nights())
	assert.Equal(t, 0, Unchecked(time.Time{}, date(2025, 3, 10)).Nights())
}

func TestClip(t *testing.T) {
	stay := Unchecked(date(2025, 1, 29), date(2025, 2, 3))
	window := Unchecked(date(2025, 2, 1), date(2025, 3, 1))
	clipped, nights := stay.Clip(window)
	assert.Equal(t, 2, nights)
	assert.Equal(t, date(2025, 2, 1), clipped.CheckIn)

	_, nights = stay.Clip(Unchecked(date(2025, 4, 1), date(2025, 4, 2)))
	assert.Zero(t, nights)
}

func TestContainsDate(t *testing.T) {
	dr := Unchecked(date(2025, 5, 1), date(2025, 5, 3))
	assert.True(t, dr.ContainsDate(time.Date(2025, 5, 2, 15, 0, 0, 0, time.UTC)))
	assert.False(t, dr.ContainsDate(date(2025, 5, 3)))
}
