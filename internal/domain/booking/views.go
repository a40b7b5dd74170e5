package booking

import (
	"sort"
	"time"
)

// HostView is one of the tabs of the host booking board.
type HostView string

const (
	ViewAll      HostView = "all"
	ViewPending  HostView = "pending"
	ViewUpcoming HostView = "upcoming"
	ViewRecent   HostView = "recent"
)

func ParseHostView(raw string) HostView {
	switch HostView(raw) {
	case ViewPending, ViewUpcoming, ViewRecent:
		return HostView(raw)
	default:
		return ViewAll
	}
}

// Filter keeps the bookings belonging to view. Upcoming means confirmed with
// a check-in after now; recent means completed or cancelled.
func Filter(items []*Booking, view HostView, now time.Time) []*Booking {
	out := make([]*Booking, 0, len(items))
	for _, b := range items {
		if inView(b, view, now) {
			out = append(out, b)
		}
	}
	sortForView(out, view)
	return out
}

func inView(b *Booking, view HostView, now time.Time) bool {
	switch view {
	case ViewPending:
		return b.Status == StatusPending
	case ViewUpcoming:
		return b.Status == StatusConfirmed && b.Range.CheckIn.After(now)
	case ViewRecent:
		return b.Status == StatusCompleted || b.Status == StatusCancelled
	default:
		return true
	}
}

func sortForView(items []*Booking, view HostView) {
	switch view {
	case ViewUpcoming:
		sort.SliceStable(items, func(i, j int) bool { return items[i].Range.CheckIn.Before(items[j].Range.CheckIn) })
	case ViewRecent:
		sort.SliceStable(items, func(i, j int) bool { return items[i].UpdatedAt.After(items[j].UpdatedAt) })
	default:
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	}
}

// Counts summarizes a host's board.
type Counts struct {
	Pending  int `json:"pending"`
	Upcoming int `json:"upcoming"`
	Recent   int `json:"recent"`
	Total    int `json:"total"`
}

func CountViews(items []*Booking, now time.Time) Counts {
	c := Counts{Total: len(items)}
	for _, b := range items {
		if inView(b, ViewPending, now) {
			c.Pending++
		}
		if inView(b, ViewUpcoming, now) {
			c.Upcoming++
		}
		if inView(b, ViewRecent, now) {
			c.Recent++
		}
	}
	return c
}
