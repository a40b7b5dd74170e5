package listings

import (
	"context"
	"time"

	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/policies"
	"addisstay/internal/app/queries"
	"addisstay/internal/app/uow"
	domainbooking "addisstay/internal/domain/booking"
	domainlistings "addisstay/internal/domain/listings"
	"addisstay/internal/domain/pricing"
	"addisstay/internal/domain/shared/daterange"
)

const quoteKey = "listings.quote"

type QuoteQuery struct {
	ID       string    `validate:"required"`
	CheckIn  time.Time `validate:"required"`
	CheckOut time.Time `validate:"required"`
	Adults   int       `validate:"min=1"`
	Children int       `validate:"min=0"`
	Currency string
}

func (QuoteQuery) Key() string { return quoteKey }

// QuoteHandler prices a prospective stay without creating a booking.
type QuoteHandler struct {
	UoWFactory uow.UoWFactory
	Pricing    policies.PriceQuoter
}

func (h *QuoteHandler) Handle(ctx context.Context, q QuoteQuery) (dto.Quote, error) {
	stay, err := daterange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.Quote{}, err
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Quote{}, err
	}
	defer support.Release(cleanup)

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(q.ID))
	if err != nil {
		return dto.Quote{}, err
	}
	if q.Adults+q.Children > listing.MaxGuests {
		return dto.Quote{}, domainbooking.ErrTooManyGuests
	}
	quoter := h.Pricing
	if quoter == nil {
		quoter = pricing.DefaultPolicy
	}
	breakdown, err := quoter.Quote(listing.NightlyRate, stay)
	if err != nil {
		return dto.Quote{}, err
	}
	b := dto.MapBreakdown(breakdown, dto.DisplayCurrency(q.Currency, ""))
	return dto.Quote{
		ListingID:  string(listing.ID),
		CheckIn:    stay.CheckIn,
		CheckOut:   stay.CheckOut,
		Nights:     b.Nights,
		Guests:     q.Adults + q.Children,
		Nightly:    b.Nightly,
		Base:       b.Base,
		ServiceFee: b.ServiceFee,
		Taxes:      b.Taxes,
		Total:      b.Total,
	}, nil
}

var _ queries.Handler[QuoteQuery, dto.Quote] = (*QuoteHandler)(nil)
