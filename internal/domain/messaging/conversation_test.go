package messaging

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 1, 20, 14, 30, 0, 0, time.UTC)

func start(t *testing.T, id, guest, guestName, listing string, status BookingStatus) *Conversation {
	t.Helper()
	c, err := Start(StartParams{
		ID:           ConversationID(id),
		ListingID:    "l-" + id,
		ListingTitle: listing,
		HostID:       "host",
		HostName:     "Hana Host",
		GuestID:      guest,
		GuestName:    guestName,
		Status:       status,
		Now:          now,
	})
	require.NoError(t, err)
	return c
}

func TestStartRejectsSelf(t *testing.T) {
	_, err := Start(StartParams{HostID: "x", GuestID: "x"})
	assert.ErrorIs(t, err, ErrSelfConversation)
	_, err = Start(StartParams{HostID: "x"})
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSendTracksUnread(t *testing.T) {
	c := start(t, "1", "guest", "Sarah Johnson", "Luxury Villa", "")

	msg, err := c.Send("m1", "guest", "  Is breakfast included?  ", now)
	require.NoError(t, err)
	assert.Equal(t, "Is breakfast included?", msg.Text)
	assert.Equal(t, "Sarah Johnson", msg.SenderName)
	assert.Equal(t, 1, c.UnreadFor("host"))
	assert.Equal(t, 0, c.UnreadFor("guest"))

	_, err = c.Send("m2", "guest", "And parking?", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, c.UnreadFor("host"))
	assert.Equal(t, "And parking?", c.LastMessage)

	require.NoError(t, c.MarkRead("host"))
	assert.Equal(t, 0, c.UnreadFor("host"))

	events := c.PendingEvents()
	require.Len(t, events, 2)
	sent := events[0].(MessageSent)
	assert.Equal(t, "host", sent.RecipientID)
}

func TestSendValidation(t *testing.T) {
	c := start(t, "1", "guest", "Sarah", "Villa", "")
	_, err := c.Send("m", "stranger", "hi", now)
	assert.ErrorIs(t, err, ErrNotParticipant)
	_, err = c.Send("m", "guest", "   ", now)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = c.Send("m", "guest", strings.Repeat("x", MaxMessageLength+1), now)
	assert.ErrorIs(t, err, ErrMessageTooLong)
	assert.ErrorIs(t, c.MarkRead("stranger"), ErrNotParticipant)
}

func TestLongMessagePreviewIsTruncated(t *testing.T) {
	c := start(t, "1", "guest", "Sarah", "Villa", "")
	_, err := c.Send("m", "guest", strings.Repeat("a", 300), now)
	require.NoError(t, err)
	assert.Equal(t, 121, len([]rune(c.LastMessage)))
}

func TestInboxFilters(t *testing.T) {
	unread := start(t, "unread", "g1", "Sarah Johnson", "Luxury Villa Sunset", "confirmed")
	_, err := unread.Send("m1", "g1", "hello", now.Add(time.Hour))
	require.NoError(t, err)
	pending := start(t, "pending", "g2", "Mike Chen", "Modern City Apartment", "pending")
	done := start(t, "done", "g3", "Emma Davis", "Beachfront Cottage", "completed")
	other, err := Start(StartParams{ID: "other", HostID: "someone", GuestID: "g4", Now: now})
	require.NoError(t, err)

	all := []*Conversation{done, pending, unread, other}
	assert.Equal(t, []ConversationID{"unread", "done", "pending"}, convIDs(Inbox(all, "host", FilterAll, "")))
	assert.Equal(t, []ConversationID{"unread"}, convIDs(Inbox(all, "host", FilterUnread, "")))
	assert.Equal(t, []ConversationID{"pending"}, convIDs(Inbox(all, "host", FilterPending, "")))
	assert.Equal(t, []ConversationID{"unread", "pending"}, convIDs(Inbox(all, "host", FilterActive, "")))
	assert.Equal(t, []ConversationID{"pending"}, convIDs(Inbox(all, "host", FilterAll, "mike")))
	assert.Equal(t, []ConversationID{"done"}, convIDs(Inbox(all, "host", ParseFilter("bogus"), "beachfront")))
	assert.Equal(t, []ConversationID{"pending"}, convIDs(Inbox(all, "g2", FilterAll, "hana")))
}

func convIDs(items []*Conversation) []ConversationID {
	out := make([]ConversationID, len(items))
	for i, c := range items {
		out[i] = c.ID
	}
	return out
}
