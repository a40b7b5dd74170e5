package booking

import (
	"context"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/outbox"
	"addisstay/internal/app/uow"
	domainbooking "addisstay/internal/domain/booking"
	"addisstay/internal/domain/shared/money"
)

const (
	cancelBookingKey   = "booking.cancel"
	confirmBookingKey  = "booking.confirm"
	completeBookingKey = "booking.complete"
)

// CancelBookingCommand may come from the guest or the host of the booking.
type CancelBookingCommand struct {
	BookingID string `validate:"required"`
	ActorUser string `validate:"required"`
	Reason    string `validate:"max=500"`
}

func (CancelBookingCommand) Key() string       { return cancelBookingKey }
func (c CancelBookingCommand) ActorID() string { return c.ActorUser }

type ConfirmBookingCommand struct {
	BookingID string `validate:"required"`
	HostID    string `validate:"required"`
}

func (ConfirmBookingCommand) Key() string          { return confirmBookingKey }
func (ConfirmBookingCommand) RequiredRole() string { return "host" }
func (c ConfirmBookingCommand) ActorID() string    { return c.HostID }

type CompleteBookingCommand struct {
	BookingID string `validate:"required"`
	HostID    string `validate:"required"`
}

func (CompleteBookingCommand) Key() string          { return completeBookingKey }
func (CompleteBookingCommand) RequiredRole() string { return "host" }
func (c CompleteBookingCommand) ActorID() string    { return c.HostID }

// Transitions groups what the booking state changes share.
type Transitions struct {
	Encoder outbox.EventEncoder
	Clock   support.Clock
}

type CancelBookingHandler struct{ Transitions }

type ConfirmBookingHandler struct{ Transitions }

type CompleteBookingHandler struct{ Transitions }

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (dto.Booking, error) {
	unit, b, err := load(ctx, cmd.BookingID)
	if err != nil {
		return dto.Booking{}, err
	}
	if err := b.Cancel(cmd.ActorUser, cmd.Reason, h.Clock.Now()); err != nil {
		return dto.Booking{}, err
	}
	return h.save(ctx, unit, b)
}

// Handle confirms a pending request. Dates are checked again because another
// request for the same nights may have been confirmed in the meantime.
func (h *ConfirmBookingHandler) Handle(ctx context.Context, cmd ConfirmBookingCommand) (dto.Booking, error) {
	unit, b, err := loadHosted(ctx, cmd.BookingID, cmd.HostID)
	if err != nil {
		return dto.Booking{}, err
	}
	siblings, err := unit.Bookings().ListByListing(ctx, b.ListingID)
	if err != nil {
		return dto.Booking{}, err
	}
	others := siblings[:0:0]
	for _, s := range siblings {
		if s.ID != b.ID {
			others = append(others, s)
		}
	}
	if err := domainbooking.EnsureAvailable(others, b.Range); err != nil {
		return dto.Booking{}, err
	}
	if err := b.Confirm(h.Clock.Now()); err != nil {
		return dto.Booking{}, err
	}
	return h.save(ctx, unit, b)
}

func (h *CompleteBookingHandler) Handle(ctx context.Context, cmd CompleteBookingCommand) (dto.Booking, error) {
	unit, b, err := loadHosted(ctx, cmd.BookingID, cmd.HostID)
	if err != nil {
		return dto.Booking{}, err
	}
	if err := b.Complete(h.Clock.Now()); err != nil {
		return dto.Booking{}, err
	}
	return h.save(ctx, unit, b)
}

func (h *Transitions) save(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking) (dto.Booking, error) {
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return dto.Booking{}, err
	}
	if err := support.PublishEvents(ctx, unit, h.Encoder, b); err != nil {
		return dto.Booking{}, err
	}
	return dto.MapBooking(b, money.BaseCurrency), nil
}

func load(ctx context.Context, id string) (uow.UnitOfWork, *domainbooking.Booking, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return nil, nil, err
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(id))
	if err != nil {
		return nil, nil, err
	}
	return unit, b, nil
}

func loadHosted(ctx context.Context, id, hostID string) (uow.UnitOfWork, *domainbooking.Booking, error) {
	unit, b, err := load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if string(b.HostID) != hostID {
		return nil, nil, domainbooking.ErrNotParticipant
	}
	return unit, b, nil
}

var (
	_ commands.Handler[CancelBookingCommand, dto.Booking]   = (*CancelBookingHandler)(nil)
	_ commands.Handler[ConfirmBookingCommand, dto.Booking]  = (*ConfirmBookingHandler)(nil)
	_ commands.Handler[CompleteBookingCommand, dto.Booking] = (*CompleteBookingHandler)(nil)
)
