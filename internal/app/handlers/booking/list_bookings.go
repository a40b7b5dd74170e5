package booking

import (
	"context"

	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/queries"
	"addisstay/internal/app/uow"
	domainbooking "addisstay/internal/domain/booking"
	domainlistings "addisstay/internal/domain/listings"
)

const (
	guestBookingsKey = "booking.guest.list"
	hostBookingsKey  = "booking.host.list"
)

type GuestBookingsQuery struct {
	GuestID  string `validate:"required"`
	Currency string
}

func (GuestBookingsQuery) Key() string { return guestBookingsKey }

// HostBookingsQuery backs the host board; View is one of all, pending,
// upcoming or recent.
type HostBookingsQuery struct {
	HostID   string `validate:"required"`
	View     string
	Currency string
}

func (HostBookingsQuery) Key() string { return hostBookingsKey }

type GuestBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Clock      support.Clock
}

func (h *GuestBookingsHandler) Handle(ctx context.Context, q GuestBookingsQuery) (dto.BookingCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	defer support.Release(cleanup)

	items, err := unit.Bookings().ListByGuest(ctx, q.GuestID)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	items = domainbooking.Filter(items, domainbooking.ViewAll, h.Clock.Now())
	return dto.BookingCollection{Items: dto.MapBookings(items, dto.DisplayCurrency(q.Currency, ""))}, nil
}

type HostBookingsHandler struct {
	UoWFactory uow.UoWFactory
	Clock      support.Clock
}

func (h *HostBookingsHandler) Handle(ctx context.Context, q HostBookingsQuery) (dto.BookingCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	defer support.Release(cleanup)

	items, err := unit.Bookings().ListByHost(ctx, domainlistings.HostID(q.HostID))
	if err != nil {
		return dto.BookingCollection{}, err
	}
	now := h.Clock.Now()
	counts := domainbooking.CountViews(items, now)
	items = domainbooking.Filter(items, domainbooking.ParseHostView(q.View), now)
	return dto.BookingCollection{
		Items:  dto.MapBookings(items, dto.DisplayCurrency(q.Currency, "")),
		Counts: &counts,
	}, nil
}

var (
	_ queries.Handler[GuestBookingsQuery, dto.BookingCollection] = (*GuestBookingsHandler)(nil)
	_ queries.Handler[HostBookingsQuery, dto.BookingCollection]  = (*HostBookingsHandler)(nil)
)
