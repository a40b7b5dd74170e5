package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: check-out must be after check-in")

const day = 24 * time.Hour

// DateRange is a half-open stay interval [CheckIn, CheckOut). Both bounds are
// truncated to UTC midnight so a stay is counted in calendar days.
type DateRange struct {
	CheckIn  time.Time `json:"check_in" bson:"check_in"`
	CheckOut time.Time `json:"check_out" bson:"check_out"`
}

// New builds a validated range.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := Unchecked(checkIn, checkOut)
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Unchecked normalizes the bounds without validating their order. Price
// quotes use it to report zero or negative nights instead of failing early.
func Unchecked(checkIn, checkOut time.Time) DateRange {
	return DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights is the whole number of days between check-in and check-out. It is
// negative when the bounds are reversed and zero when either is missing.
func (dr DateRange) Nights() int {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return 0
	}
	return int(dr.CheckOut.Sub(dr.CheckIn) / day)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return !t.Before(dr.CheckIn) && t.Before(dr.CheckOut)
}

// Clip returns the part of dr inside window and the nights it covers.
func (dr DateRange) Clip(window DateRange) (DateRange, int) {
	if !dr.Overlaps(window) {
		return DateRange{}, 0
	}
	start := dr.CheckIn
	if window.CheckIn.After(start) {
		start = window.CheckIn
	}
	end := dr.CheckOut
	if window.CheckOut.Before(end) {
		end = window.CheckOut
	}
	clipped := DateRange{CheckIn: start, CheckOut: end}
	return clipped, clipped.Nights()
}
