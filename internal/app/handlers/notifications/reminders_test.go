package notifications_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addisstay/internal/app/handlers/notifications"
	domainnotifications "addisstay/internal/domain/notifications"
)

func TestReminderSweepRemindsOncePerBooking(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	tomorrow := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	arriving := e.Book(t, "addis-hilton", "guest-abebe", tomorrow, 2, true)
	e.Book(t, "addis-capital", "guest-sara", tomorrow, 2, false)
	e.Book(t, "addis-jupiter", "guest-sara", tomorrow.AddDate(0, 0, 5), 2, true)

	observer := countingObserver{}
	sweep := &notifications.ReminderSweep{UoWFactory: e.Factory, Observer: observer, Clock: e.Clock.Now}

	created, err := sweep.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	e.Clock.Advance(30 * time.Minute)
	for range 3 {
		created, err = sweep.Sweep(ctx)
		require.NoError(t, err)
		assert.Zero(t, created)
	}
	assert.Equal(t, 1, observer[string(domainnotifications.TypeReminder)])

	reminders := 0
	for _, n := range e.Inbox(t, "host-meron", "bookings").Items {
		if n.Type == string(domainnotifications.TypeReminder) {
			reminders++
			assert.Equal(t, arriving.ID, n.Metadata.BookingID)
			assert.Equal(t, string(domainnotifications.PriorityHigh), n.Priority)
		}
	}
	assert.Equal(t, 1, reminders)
}

func TestReminderSweepStopsWithContext(t *testing.T) {
	e := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sweep := &notifications.ReminderSweep{UoWFactory: e.Factory, Clock: e.Clock.Now}
	assert.ErrorIs(t, sweep.Run(ctx, time.Hour), context.Canceled)
}
