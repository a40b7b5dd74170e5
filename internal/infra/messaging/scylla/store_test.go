package scylla

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainmessaging "addisstay/internal/domain/messaging"
)

func TestConversationRowToDomain(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	row := conversationRow{
		ID:            "c1",
		ListingID:     "l1",
		HostID:        "h1",
		GuestID:       "g1",
		BookingStatus: "confirmed",
		LastMessageAt: at,
		Unread:        map[string]int{"h1": 2},
		CreatedAt:     at.Add(-time.Hour),
	}
	c := row.toDomain()
	assert.Equal(t, domainmessaging.ConversationID("c1"), c.ID)
	assert.Equal(t, domainmessaging.BookingStatus("confirmed"), c.BookingStatus)
	assert.Equal(t, 2, c.UnreadFor("h1"))
	assert.True(t, c.IsParticipant("g1"))

	row.Unread["h1"] = 7
	assert.Equal(t, 2, c.UnreadFor("h1"), "domain copy must not alias the row map")
}

func TestUnsetTimestampsBecomeZero(t *testing.T) {
	assert.True(t, utcOrZero(time.Unix(0, 0)).IsZero())
	assert.Nil(t, nullableTime(time.Time{}))
	assert.NotNil(t, nullableTime(time.Now()))
}

func TestOldestFirstReverses(t *testing.T) {
	msgs := []domainmessaging.Message{{ID: "3"}, {ID: "2"}, {ID: "1"}}
	got := oldestFirst(msgs)
	assert.Equal(t, domainmessaging.MessageID("1"), got[0].ID)
	assert.Equal(t, domainmessaging.MessageID("3"), got[2].ID)
}

func TestStoreWithoutSession(t *testing.T) {
	s := NewStore(nil, nil)
	_, err := s.Conversation(context.Background(), "c1")
	require.ErrorIs(t, err, errNoSession)
	assert.ErrorIs(t, s.AppendMessage(context.Background(), domainmessaging.Message{}), errNoSession)
}
