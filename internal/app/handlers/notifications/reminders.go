package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/uow"
	"addisstay/internal/domain/booking"
	domainnotifications "addisstay/internal/domain/notifications"
)

const reminderWindow = 24 * time.Hour

// ReminderSweep tells hosts about confirmed guests arriving within a day.
// Each booking produces at most one reminder.
type ReminderSweep struct {
	UoWFactory uow.UoWFactory
	Observer   Observer
	Clock      support.Clock
	Logger     *slog.Logger
}

// Sweep runs one pass and returns how many reminders were created.
func (s *ReminderSweep) Sweep(ctx context.Context) (int, error) {
	now := s.Clock.Now()
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return 0, err
	}
	readCtx := uow.Bind(ctx, unit)
	due, err := unit.Bookings().ListCheckingIn(readCtx, booking.StatusConfirmed, now, now.Add(reminderWindow))
	_ = unit.Rollback(readCtx)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, b := range due {
		ok, err := Deliver(ctx, s.UoWFactory, s.Observer, domainnotifications.CreateParams{
			UserID:    string(b.HostID),
			Type:      domainnotifications.TypeReminder,
			Priority:  domainnotifications.PriorityHigh,
			Title:     "Guest arriving soon",
			Message:   fmt.Sprintf("%s checks in to %s on %s", b.Guest.Name, b.ListingTitle, b.Range.CheckIn.Format("Jan 2")),
			ActionURL: "/host/bookings?view=upcoming",
			Metadata: domainnotifications.Metadata{
				GuestName:    b.Guest.Name,
				PropertyName: b.ListingTitle,
				BookingID:    string(b.ID),
			},
			Key: "reminder:" + string(b.ID),
			Now: now,
		})
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// Run sweeps every interval until ctx is cancelled.
func (s *ReminderSweep) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		n, err := s.Sweep(ctx)
		if err != nil && s.Logger != nil {
			s.Logger.Error("reminder sweep failed", "error", err)
		} else if n > 0 && s.Logger != nil {
			s.Logger.Info("reminders created", "count", n)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
