package dto

import (
	"time"

	"addisstay/internal/domain/messaging"
)

type Conversation struct {
	ID              string    `json:"id"`
	ListingID       string    `json:"listing_id"`
	ListingTitle    string    `json:"listing_title"`
	CounterpartID   string    `json:"counterpart_id"`
	CounterpartName string    `json:"counterpart_name"`
	BookingID       string    `json:"booking_id,omitempty"`
	BookingStatus   string    `json:"booking_status,omitempty"`
	LastMessage     string    `json:"last_message,omitempty"`
	LastMessageAt   time.Time `json:"last_message_at,omitempty"`
	Unread          int       `json:"unread"`
	CreatedAt       time.Time `json:"created_at"`
}

type ConversationCollection struct {
	Items []Conversation `json:"items"`
}

type MessageCollection struct {
	ConversationID string              `json:"conversation_id"`
	Items          []messaging.Message `json:"items"`
}

// MapConversation renders c from viewer's side.
func MapConversation(c *messaging.Conversation, viewer string) Conversation {
	name := c.HostName
	if viewer == c.HostID {
		name = c.GuestName
	}
	return Conversation{
		ID:              string(c.ID),
		ListingID:       c.ListingID,
		ListingTitle:    c.ListingTitle,
		CounterpartID:   c.Counterpart(viewer),
		CounterpartName: name,
		BookingID:       c.BookingID,
		BookingStatus:   string(c.BookingStatus),
		LastMessage:     c.LastMessage,
		LastMessageAt:   c.LastMessageAt,
		Unread:          c.UnreadFor(viewer),
		CreatedAt:       c.CreatedAt,
	}
}
