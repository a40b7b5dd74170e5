package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"addisstay/internal/app/outbox"
	"addisstay/internal/app/policies"
	"addisstay/internal/app/uow"
	"addisstay/internal/domain/booking"
	"addisstay/internal/domain/listings"
	"addisstay/internal/domain/messaging"
	domainnotifications "addisstay/internal/domain/notifications"
	"addisstay/internal/domain/reviews"
	"addisstay/internal/domain/shared/money"
	"addisstay/internal/domain/user"
)

// Observer is told about every notification the projector stores.
type Observer interface {
	NotificationCreated(kind string)
}

// Projector turns delivered domain events into notification center entries.
// It also mirrors booking status onto linked conversations and emails guests
// when their stay is confirmed. Each record is keyed by its ID so redelivery
// does not duplicate notifications.
type Projector struct {
	UoWFactory    uow.UoWFactory
	Conversations messaging.Store
	Mailer        policies.Mailer
	Observer      Observer
	Logger        *slog.Logger
}

func (p *Projector) HandleEvent(ctx context.Context, rec outbox.EventRecord) error {
	switch rec.Name {
	case "booking.requested":
		var ev booking.BookingRequested
		if err := rec.Decode(&ev); err != nil {
			return err
		}
		if err := p.linkConversation(ctx, ev); err != nil {
			return err
		}
		return p.notify(ctx, rec, domainnotifications.CreateParams{
			UserID:    string(ev.HostID),
			Type:      domainnotifications.TypeBooking,
			Priority:  domainnotifications.PriorityHigh,
			Title:     "New booking request",
			Message:   fmt.Sprintf("%s requested %s for %d nights", ev.GuestName, ev.ListingTitle, ev.Range.Nights()),
			ActionURL: "/host/bookings?view=pending",
			Metadata: domainnotifications.Metadata{
				GuestName:    ev.GuestName,
				PropertyName: ev.ListingTitle,
				BookingID:    string(ev.BookingID),
				Amount:       formatted(ev.Total),
				Currency:     ev.Total.Currency,
			},
		})
	case "booking.confirmed":
		var ev booking.BookingConfirmed
		if err := rec.Decode(&ev); err != nil {
			return err
		}
		if err := p.syncConversations(ctx, ev.BookingID, booking.StatusConfirmed); err != nil {
			return err
		}
		p.mailGuest(ctx, ev)
		return p.notify(ctx, rec, domainnotifications.CreateParams{
			UserID:    ev.GuestID,
			Type:      domainnotifications.TypeBooking,
			Title:     "Booking confirmed",
			Message:   fmt.Sprintf("Your stay at %s from %s is confirmed", ev.ListingTitle, ev.Range.CheckIn.Format("Jan 2")),
			ActionURL: "/bookings",
			Metadata: domainnotifications.Metadata{
				PropertyName: ev.ListingTitle,
				BookingID:    string(ev.BookingID),
				Amount:       formatted(ev.Total),
				Currency:     ev.Total.Currency,
			},
		})
	case "booking.cancelled":
		var ev booking.BookingCancelled
		if err := rec.Decode(&ev); err != nil {
			return err
		}
		if err := p.syncConversations(ctx, ev.BookingID, booking.StatusCancelled); err != nil {
			return err
		}
		recipient, url := ev.GuestID, "/bookings"
		if ev.CancelledBy == ev.GuestID {
			recipient, url = string(ev.HostID), "/host/bookings?view=recent"
		}
		msg := fmt.Sprintf("The booking for %s was cancelled", ev.ListingTitle)
		if ev.Reason != "" {
			msg += ": " + ev.Reason
		}
		return p.notify(ctx, rec, domainnotifications.CreateParams{
			UserID:    recipient,
			Type:      domainnotifications.TypeBooking,
			Title:     "Booking cancelled",
			Message:   msg,
			ActionURL: url,
			Metadata:  domainnotifications.Metadata{PropertyName: ev.ListingTitle, BookingID: string(ev.BookingID)},
		})
	case "booking.completed":
		var ev booking.BookingCompleted
		if err := rec.Decode(&ev); err != nil {
			return err
		}
		if err := p.syncConversations(ctx, ev.BookingID, booking.StatusCompleted); err != nil {
			return err
		}
		return p.notify(ctx, rec, domainnotifications.CreateParams{
			UserID:    string(ev.HostID),
			Type:      domainnotifications.TypePayment,
			Title:     "Payout ready",
			Message:   fmt.Sprintf("%s from a completed stay is ready for payout", formatted(ev.Total)),
			ActionURL: "/host/analytics",
			Metadata: domainnotifications.Metadata{
				BookingID: string(ev.BookingID),
				Amount:    formatted(ev.Total),
				Currency:  ev.Total.Currency,
			},
		})
	case "review.submitted":
		var ev reviews.ReviewSubmitted
		if err := rec.Decode(&ev); err != nil {
			return err
		}
		return p.notify(ctx, rec, domainnotifications.CreateParams{
			UserID:    string(ev.HostID),
			Type:      domainnotifications.TypeReview,
			Priority:  domainnotifications.PriorityLow,
			Title:     "New review",
			Message:   fmt.Sprintf("%s left a %d-star review on %s", ev.AuthorName, ev.Rating, ev.ListingTitle),
			ActionURL: "/listings/" + string(ev.ListingID),
			Metadata:  domainnotifications.Metadata{GuestName: ev.AuthorName, PropertyName: ev.ListingTitle, Rating: ev.Rating},
		})
	case "message.sent":
		var ev messaging.MessageSent
		if err := rec.Decode(&ev); err != nil {
			return err
		}
		return p.notify(ctx, rec, domainnotifications.CreateParams{
			UserID:    ev.RecipientID,
			Type:      domainnotifications.TypeMessage,
			Title:     "New message from " + ev.SenderName,
			Message:   ev.Preview,
			ActionURL: "/messages/" + string(ev.ConversationID),
			Metadata:  domainnotifications.Metadata{GuestName: ev.SenderName, PropertyName: ev.ListingTitle},
		})
	case "listing.updated":
		var ev listings.ListingUpdatedEvent
		if err := rec.Decode(&ev); err != nil {
			return err
		}
		return p.notify(ctx, rec, domainnotifications.CreateParams{
			UserID:    string(ev.HostID),
			Type:      domainnotifications.TypeSystem,
			Priority:  domainnotifications.PriorityLow,
			Title:     "Listing updated",
			Message:   fmt.Sprintf("Changes to %s are live", ev.Title),
			ActionURL: "/host/listings",
			Metadata:  domainnotifications.Metadata{PropertyName: ev.Title},
		})
	default:
		return nil
	}
}

func (p *Projector) notify(ctx context.Context, rec outbox.EventRecord, params domainnotifications.CreateParams) error {
	params.Key = rec.Name + ":" + rec.ID
	params.Now = rec.OccurredAt
	_, err := Deliver(ctx, p.UoWFactory, p.Observer, params)
	return err
}

// Deliver stores one notification in its own unit unless one with the same
// key already exists for the user. It reports whether a notification was
// created.
func Deliver(ctx context.Context, factory uow.UoWFactory, observer Observer, params domainnotifications.CreateParams) (bool, error) {
	if params.ID == "" {
		params.ID = domainnotifications.ID(uuid.NewString())
	}
	n, err := domainnotifications.New(params)
	if err != nil {
		return false, err
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return false, err
	}
	ctx = uow.Bind(ctx, unit)
	if params.Key != "" {
		exists, err := unit.Notifications().ExistsByKey(ctx, params.UserID, params.Key)
		if err != nil {
			_ = unit.Rollback(ctx)
			return false, err
		}
		if exists {
			_ = unit.Rollback(ctx)
			return false, nil
		}
	}
	if err := unit.Notifications().Save(ctx, n); err != nil {
		_ = unit.Rollback(ctx)
		return false, err
	}
	if err := unit.Commit(ctx); err != nil {
		return false, err
	}
	if observer != nil {
		observer.NotificationCreated(string(n.Type))
	}
	return true, nil
}

func (p *Projector) linkConversation(ctx context.Context, ev booking.BookingRequested) error {
	if p.Conversations == nil {
		return nil
	}
	c, err := p.Conversations.FindByListingAndGuest(ctx, string(ev.ListingID), ev.GuestID)
	if errors.Is(err, messaging.ErrConversationNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	c.LinkBooking(string(ev.BookingID), messaging.BookingStatus(booking.StatusPending))
	return p.Conversations.SaveConversation(ctx, c)
}

func (p *Projector) syncConversations(ctx context.Context, id booking.BookingID, status booking.Status) error {
	if p.Conversations == nil {
		return nil
	}
	items, err := p.Conversations.ListByBooking(ctx, string(id))
	if err != nil {
		return err
	}
	for _, c := range items {
		c.LinkBooking(string(id), messaging.BookingStatus(status))
		if err := p.Conversations.SaveConversation(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// mailGuest is best effort; a failed email never blocks the notification.
func (p *Projector) mailGuest(ctx context.Context, ev booking.BookingConfirmed) {
	if p.Mailer == nil || p.UoWFactory == nil {
		return
	}
	unit, err := p.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return
	}
	ctx = uow.Bind(ctx, unit)
	defer func() { _ = unit.Rollback(ctx) }()
	guest, err := unit.Users().ByID(ctx, user.ID(ev.GuestID))
	if err != nil {
		return
	}
	err = p.Mailer.Send(ctx, guest.Email, "booking_confirmed", map[string]string{
		"name":      guest.FirstName,
		"listing":   ev.ListingTitle,
		"check_in":  ev.Range.CheckIn.Format("2006-01-02"),
		"check_out": ev.Range.CheckOut.Format("2006-01-02"),
		"total":     formatted(ev.Total),
	})
	if err != nil && p.Logger != nil {
		p.Logger.Warn("confirmation email failed", "booking_id", ev.BookingID, "error", err)
	}
}

func formatted(m money.Money) string {
	s, err := money.Format(m.Amount, m.Currency)
	if err != nil {
		return m.String()
	}
	return s
}

var _ outbox.Handler = (*Projector)(nil)
