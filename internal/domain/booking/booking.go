package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"addisstay/internal/domain/listings"
	"addisstay/internal/domain/pricing"
	"addisstay/internal/domain/shared/daterange"
	"addisstay/internal/domain/shared/events"
)

var (
	ErrBookingNotFound  = errors.New("booking: not found")
	ErrInvalidGuests    = errors.New("booking: at least one adult is required")
	ErrTooManyGuests    = errors.New("booking: guests exceed listing capacity")
	ErrCheckInPast      = errors.New("booking: check-in cannot be in the past")
	ErrInvalidState     = errors.New("booking: invalid state transition")
	ErrListingInactive  = errors.New("booking: listing is not accepting bookings")
	ErrOwnListing       = errors.New("booking: hosts cannot book their own listing")
	ErrDatesUnavailable = errors.New("booking: dates overlap a confirmed stay")
	ErrStayNotFinished  = errors.New("booking: stay has not ended yet")
	ErrNotParticipant   = errors.New("booking: not a participant of this booking")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Guest is the contact sheet shown to the host.
type Guest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Booking struct {
	ID              BookingID
	ListingID       listings.ListingID
	ListingTitle    string
	ListingImage    string
	HostID          listings.HostID
	GuestID         string
	Guest           Guest
	Range           daterange.DateRange
	Adults          int
	Children        int
	Price           pricing.Breakdown
	Status          Status
	SpecialRequests string
	CancelReason    string
	CancelledBy     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByHost(ctx context.Context, hostID listings.HostID) ([]*Booking, error)
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
	// ListCheckingIn returns bookings in status whose check-in falls in [from, to).
	ListCheckingIn(ctx context.Context, status Status, from, to time.Time) ([]*Booking, error)
}

type CreateParams struct {
	ID              BookingID
	Listing         *listings.Listing
	GuestID         string
	Guest           Guest
	Range           daterange.DateRange
	Adults          int
	Children        int
	Price           pricing.Breakdown
	SpecialRequests string
	Now             time.Time
}

// NewBooking opens a pending request against an active listing.
func NewBooking(params CreateParams) (*Booking, error) {
	l := params.Listing
	if l == nil || !l.IsActive() {
		return nil, ErrListingInactive
	}
	if strings.TrimSpace(params.GuestID) == "" {
		return nil, errors.New("booking: guest id required")
	}
	if string(l.Host) == params.GuestID {
		return nil, ErrOwnListing
	}
	if params.Adults < 1 || params.Children < 0 {
		return nil, ErrInvalidGuests
	}
	if params.Adults+params.Children > l.MaxGuests {
		return nil, ErrTooManyGuests
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	if params.Range.CheckIn.Before(daterange.Day(now)) {
		return nil, ErrCheckInPast
	}
	if params.Price.Nights <= 0 || !params.Price.Total.IsPositive() {
		return nil, pricing.ErrNoNights
	}
	b := &Booking{
		ID:              params.ID,
		ListingID:       l.ID,
		ListingTitle:    l.Title,
		ListingImage:    l.Cover(),
		HostID:          l.Host,
		GuestID:         params.GuestID,
		Guest:           normalizeGuest(params.Guest),
		Range:           params.Range,
		Adults:          params.Adults,
		Children:        params.Children,
		Price:           params.Price,
		Status:          StatusPending,
		SpecialRequests: strings.TrimSpace(params.SpecialRequests),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	b.Record(BookingRequested{
		BookingID:    b.ID,
		ListingID:    b.ListingID,
		ListingTitle: b.ListingTitle,
		HostID:       b.HostID,
		GuestID:      b.GuestID,
		GuestName:    b.Guest.Name,
		Range:        b.Range,
		Total:        b.Price.Total,
		At:           now,
	})
	return b, nil
}

// Guests is adults plus children.
func (b *Booking) Guests() int {
	return b.Adults + b.Children
}

func (b *Booking) Nights() int {
	return b.Range.Nights()
}

// Confirm is the host accepting a pending request.
func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{
		BookingID:    b.ID,
		ListingID:    b.ListingID,
		ListingTitle: b.ListingTitle,
		HostID:       b.HostID,
		GuestID:      b.GuestID,
		Range:        b.Range,
		Total:        b.Price.Total,
		At:           b.UpdatedAt,
	})
	return nil
}

// Cancel is allowed for the guest or the host while the stay is still
// pending or confirmed.
func (b *Booking) Cancel(actor, reason string, now time.Time) error {
	if !b.IsParticipant(actor) {
		return ErrNotParticipant
	}
	switch b.Status {
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.CancelReason = strings.TrimSpace(reason)
	b.CancelledBy = actor
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{
		BookingID:    b.ID,
		ListingID:    b.ListingID,
		ListingTitle: b.ListingTitle,
		HostID:       b.HostID,
		GuestID:      b.GuestID,
		CancelledBy:  actor,
		Reason:       b.CancelReason,
		At:           b.UpdatedAt,
	})
	return nil
}

// Complete closes a confirmed stay once check-out has passed.
func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	if daterange.Day(now).Before(b.Range.CheckOut) {
		return ErrStayNotFinished
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, ListingID: b.ListingID, HostID: b.HostID, GuestID: b.GuestID, Total: b.Price.Total, At: b.UpdatedAt})
	return nil
}

func (b *Booking) IsParticipant(userID string) bool {
	return userID != "" && (userID == b.GuestID || userID == string(b.HostID))
}

// Blocks reports whether the booking holds its dates against new requests.
func (b *Booking) Blocks() bool {
	return b.Status == StatusConfirmed
}

// EnsureAvailable fails when requested overlaps a confirmed booking.
func EnsureAvailable(existing []*Booking, requested daterange.DateRange) error {
	for _, other := range existing {
		if other.Blocks() && other.Range.Overlaps(requested) {
			return ErrDatesUnavailable
		}
	}
	return nil
}

// Earns reports whether the booking counts toward host revenue.
func (b *Booking) Earns() bool {
	return b.Status == StatusConfirmed || b.Status == StatusCompleted
}

func normalizeGuest(g Guest) Guest {
	return Guest{
		Name:  strings.TrimSpace(g.Name),
		Email: strings.ToLower(strings.TrimSpace(g.Email)),
		Phone: strings.TrimSpace(g.Phone),
	}
}
