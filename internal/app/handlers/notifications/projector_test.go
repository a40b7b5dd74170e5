package notifications_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/handlertest"
	messagingapp "addisstay/internal/app/handlers/messaging"
	"addisstay/internal/app/handlers/notifications"
	reviewsapp "addisstay/internal/app/handlers/reviews"
	domainmessaging "addisstay/internal/domain/messaging"
	domainnotifications "addisstay/internal/domain/notifications"
)

type countingObserver map[string]int

func (o countingObserver) NotificationCreated(kind string) { o[kind]++ }

func setup(t *testing.T) *handlertest.Env {
	t.Helper()
	e := handlertest.New(t)
	convs := messagingapp.Conversations{Store: e.Conversations, Encoder: e.Encoder, Clock: e.Clock.Now}
	commands.RegisterHandler(e.CommandBus, &messagingapp.StartConversationHandler{Conversations: convs})
	commands.RegisterHandler(e.CommandBus, &reviewsapp.SubmitReviewHandler{Encoder: e.Encoder, Clock: e.Clock.Now})
	commands.RegisterHandler(e.CommandBus, notifications.MarkReadHandler{})
	commands.RegisterHandler(e.CommandBus, notifications.MarkAllReadHandler{})
	commands.RegisterHandler(e.CommandBus, notifications.DeleteHandler{})
	return e
}

func only(t *testing.T, c dto.NotificationCollection) dto.Notification {
	t.Helper()
	require.Len(t, c.Items, 1)
	return c.Items[0]
}

func TestBookingRequestNotifiesHostWithHighPriority(t *testing.T) {
	e := setup(t)
	b := e.Book(t, "addis-hilton", "guest-abebe", time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), 2, false)

	n := only(t, e.Inbox(t, "host-meron", ""))
	assert.Equal(t, string(domainnotifications.TypeBooking), n.Type)
	assert.Equal(t, string(domainnotifications.PriorityHigh), n.Priority)
	assert.Equal(t, b.ID, n.Metadata.BookingID)
	assert.Equal(t, "Guest abebe", n.Metadata.GuestName)
	assert.Equal(t, "/host/bookings?view=pending", n.ActionURL)
	assert.Empty(t, e.Inbox(t, "guest-abebe", "").Items)
}

func TestConfirmationNotifiesGuest(t *testing.T) {
	e := setup(t)
	b := e.Book(t, "addis-hilton", "guest-abebe", time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), 2, true)

	n := only(t, e.Inbox(t, "guest-abebe", ""))
	assert.Equal(t, "Booking confirmed", n.Title)
	assert.Equal(t, string(domainnotifications.PriorityMedium), n.Priority)
	assert.Equal(t, b.ID, n.Metadata.BookingID)
	assert.Equal(t, 1, e.Inbox(t, "host-meron", "").Total)
}

func TestReviewNotifiesHost(t *testing.T) {
	e := setup(t)
	_, err := commands.Dispatch[reviewsapp.SubmitReviewCommand, dto.Review](context.Background(), e.Commands, reviewsapp.SubmitReviewCommand{
		ListingID: "addis-radisson",
		AuthorID:  "guest-sara",
		Rating:    4,
		Comment:   "Great breakfast and quick airport transfer.",
	})
	require.NoError(t, err)

	n := only(t, e.Inbox(t, "host-yonas", ""))
	assert.Equal(t, string(domainnotifications.TypeReview), n.Type)
	assert.Equal(t, string(domainnotifications.PriorityLow), n.Priority)
	assert.Equal(t, 4, n.Metadata.Rating)
	assert.Equal(t, "/listings/addis-radisson", n.ActionURL)
}

func TestMessageNotifiesRecipientOnly(t *testing.T) {
	e := setup(t)
	conv, err := commands.Dispatch[messagingapp.StartConversationCommand, dto.Conversation](context.Background(), e.Commands, messagingapp.StartConversationCommand{
		GuestID:   "guest-sara",
		ListingID: "addis-skylight",
		Message:   "Is late check-in possible?",
	})
	require.NoError(t, err)

	n := only(t, e.Inbox(t, "host-yonas", "messages"))
	assert.Equal(t, string(domainnotifications.TypeMessage), n.Type)
	assert.Equal(t, "Is late check-in possible?", n.Message)
	assert.Equal(t, "/messages/"+conv.ID, n.ActionURL)
	assert.Empty(t, e.Inbox(t, "guest-sara", "").Items)
}

func TestRedeliveredRecordDoesNotDuplicate(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	observer := countingObserver{}
	e.Projector.Observer = observer

	c, err := domainmessaging.Start(domainmessaging.StartParams{ID: "c1", ListingID: "addis-skylight", HostID: "host-yonas", GuestID: "guest-sara", GuestName: "Guest sara", Now: handlertest.Today})
	require.NoError(t, err)
	_, err = c.Send("m1", "guest-sara", "hello", handlertest.Today)
	require.NoError(t, err)
	events := c.PullEvents()
	require.Len(t, events, 1)
	rec, err := e.Encoder.Encode(events[0])
	require.NoError(t, err)

	require.NoError(t, e.Projector.HandleEvent(ctx, rec))
	require.NoError(t, e.Projector.HandleEvent(ctx, rec))
	assert.Equal(t, 1, e.Inbox(t, "host-yonas", "").Total)
	assert.Equal(t, 1, observer[string(domainnotifications.TypeMessage)])
}

func TestCenterReadAndDelete(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	checkIn := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	e.Book(t, "addis-hilton", "guest-abebe", checkIn, 2, false)
	e.Clock.Advance(time.Minute)
	e.Book(t, "addis-jupiter", "guest-sara", checkIn, 3, false)

	inbox := e.Inbox(t, "host-meron", "")
	require.Equal(t, 2, inbox.Total)
	assert.Equal(t, 2, inbox.Unread)
	newest := inbox.Items[0]
	assert.Contains(t, newest.Message, "3 nights")

	_, err := commands.Dispatch[notifications.MarkReadCommand, dto.Notification](ctx, e.Commands, notifications.MarkReadCommand{UserID: "guest-abebe", NotificationID: newest.ID})
	assert.ErrorIs(t, err, domainnotifications.ErrNotOwner)

	read, err := commands.Dispatch[notifications.MarkReadCommand, dto.Notification](ctx, e.Commands, notifications.MarkReadCommand{UserID: "host-meron", NotificationID: newest.ID})
	require.NoError(t, err)
	assert.True(t, read.Read)
	assert.Equal(t, 1, e.Inbox(t, "host-meron", "").Unread)
	assert.Len(t, e.Inbox(t, "host-meron", "unread").Items, 1)

	changed, err := commands.Dispatch[notifications.MarkAllReadCommand, int](ctx, e.Commands, notifications.MarkAllReadCommand{UserID: "host-meron"})
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Zero(t, e.Inbox(t, "host-meron", "").Unread)

	_, err = commands.Dispatch[notifications.DeleteCommand, struct{}](ctx, e.Commands, notifications.DeleteCommand{UserID: "host-meron", NotificationID: newest.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, e.Inbox(t, "host-meron", "").Total)
}
