package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/outbox"
	"addisstay/internal/app/policies"
	"addisstay/internal/app/uow"
	domainbooking "addisstay/internal/domain/booking"
	domainlistings "addisstay/internal/domain/listings"
	"addisstay/internal/domain/pricing"
	"addisstay/internal/domain/shared/daterange"
	domainuser "addisstay/internal/domain/user"
)

const requestBookingKey = "booking.request"

// RequestBookingCommand opens a pending request. Contact fields default to
// the guest's profile when left empty. RequestKey carries the client's
// Idempotency-Key header; the result is a pointer so replays decode into it.
type RequestBookingCommand struct {
	ListingID       string    `validate:"required"`
	GuestID         string    `validate:"required"`
	CheckIn         time.Time `validate:"required"`
	CheckOut        time.Time `validate:"required"`
	Adults          int       `validate:"min=1"`
	Children        int       `validate:"min=0"`
	Name            string    `validate:"max=120"`
	Email           string    `validate:"omitempty,email"`
	Phone           string    `validate:"max=32"`
	SpecialRequests string    `validate:"max=1000"`
	Currency        string
	RequestKey      string
}

func (RequestBookingCommand) Key() string              { return requestBookingKey }
func (c RequestBookingCommand) ActorID() string        { return c.GuestID }
func (c RequestBookingCommand) IdempotencyKey() string { return c.RequestKey }
func (RequestBookingCommand) ResultPrototype() any     { return &dto.Booking{} }

type RequestBookingHandler struct {
	Pricing policies.PriceQuoter
	Encoder outbox.EventEncoder
	Clock   support.Clock
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*dto.Booking, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return nil, err
	}
	stay, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	guest, err := unit.Users().ByID(ctx, domainuser.ID(cmd.GuestID))
	if err != nil {
		return nil, err
	}
	existing, err := unit.Bookings().ListByListing(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	if err := domainbooking.EnsureAvailable(existing, stay); err != nil {
		return nil, err
	}
	quoter := h.Pricing
	if quoter == nil {
		quoter = pricing.DefaultPolicy
	}
	price, err := quoter.Quote(listing.NightlyRate, stay)
	if err != nil {
		return nil, err
	}
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:      domainbooking.BookingID(uuid.NewString()),
		Listing: listing,
		GuestID: cmd.GuestID,
		Guest: domainbooking.Guest{
			Name:  firstNonEmpty(cmd.Name, guest.FullName()),
			Email: firstNonEmpty(cmd.Email, guest.Email),
			Phone: firstNonEmpty(cmd.Phone, guest.Phone),
		},
		Range:           stay,
		Adults:          cmd.Adults,
		Children:        cmd.Children,
		Price:           price,
		SpecialRequests: cmd.SpecialRequests,
		Now:             h.Clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := support.PublishEvents(ctx, unit, h.Encoder, b); err != nil {
		return nil, err
	}
	out := dto.MapBooking(b, dto.DisplayCurrency(cmd.Currency, guest.Preferences.Currency))
	return &out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var _ commands.Handler[RequestBookingCommand, *dto.Booking] = (*RequestBookingHandler)(nil)
