package messaging

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"addisstay/internal/domain/shared/events"
)

const MaxMessageLength = 2000

var (
	ErrConversationNotFound = errors.New("messaging: conversation not found")
	ErrNotParticipant       = errors.New("messaging: not a participant")
	ErrEmptyMessage         = errors.New("messaging: message is empty")
	ErrMessageTooLong       = errors.New("messaging: message too long")
	ErrSelfConversation     = errors.New("messaging: cannot message yourself")
)

type ConversationID string
type MessageID string

// BookingStatus mirrors the linked booking so the inbox can filter without a
// join. Empty means no booking yet.
type BookingStatus string

type Conversation struct {
	ID            ConversationID
	ListingID     string
	ListingTitle  string
	HostID        string
	HostName      string
	GuestID       string
	GuestName     string
	BookingID     string
	BookingStatus BookingStatus
	LastMessage   string
	LastMessageAt time.Time
	Unread        map[string]int
	CreatedAt     time.Time
	events.EventRecorder
}

type Message struct {
	ID             MessageID      `json:"id"`
	ConversationID ConversationID `json:"conversation_id"`
	SenderID       string         `json:"sender_id"`
	SenderName     string         `json:"sender_name"`
	Text           string         `json:"text"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Store persists conversations and their messages.
type Store interface {
	Conversation(ctx context.Context, id ConversationID) (*Conversation, error)
	FindByListingAndGuest(ctx context.Context, listingID, guestID string) (*Conversation, error)
	ListForUser(ctx context.Context, userID string) ([]*Conversation, error)
	ListByBooking(ctx context.Context, bookingID string) ([]*Conversation, error)
	SaveConversation(ctx context.Context, c *Conversation) error
	AppendMessage(ctx context.Context, m Message) error
	Messages(ctx context.Context, id ConversationID, limit int) ([]Message, error)
}

type StartParams struct {
	ID           ConversationID
	ListingID    string
	ListingTitle string
	HostID       string
	HostName     string
	GuestID      string
	GuestName    string
	BookingID    string
	Status       BookingStatus
	Now          time.Time
}

func Start(params StartParams) (*Conversation, error) {
	if params.HostID == "" || params.GuestID == "" {
		return nil, ErrNotParticipant
	}
	if params.HostID == params.GuestID {
		return nil, ErrSelfConversation
	}
	return &Conversation{
		ID:            params.ID,
		ListingID:     params.ListingID,
		ListingTitle:  params.ListingTitle,
		HostID:        params.HostID,
		HostName:      params.HostName,
		GuestID:       params.GuestID,
		GuestName:     params.GuestName,
		BookingID:     params.BookingID,
		BookingStatus: params.Status,
		Unread:        map[string]int{},
		CreatedAt:     params.Now.UTC(),
	}, nil
}

func (c *Conversation) IsParticipant(userID string) bool {
	return userID != "" && (userID == c.HostID || userID == c.GuestID)
}

// Counterpart returns the other participant.
func (c *Conversation) Counterpart(userID string) string {
	if userID == c.HostID {
		return c.GuestID
	}
	return c.HostID
}

func (c *Conversation) UnreadFor(userID string) int {
	return c.Unread[userID]
}

// Send appends a message from sender and bumps the recipient's unread count.
func (c *Conversation) Send(id MessageID, senderID, text string, now time.Time) (Message, error) {
	if !c.IsParticipant(senderID) {
		return Message{}, ErrNotParticipant
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return Message{}, ErrMessageTooLong
	}
	senderName := c.GuestName
	if senderID == c.HostID {
		senderName = c.HostName
	}
	msg := Message{
		ID:             id,
		ConversationID: c.ID,
		SenderID:       senderID,
		SenderName:     senderName,
		Text:           text,
		CreatedAt:      now.UTC(),
	}
	if c.Unread == nil {
		c.Unread = map[string]int{}
	}
	recipient := c.Counterpart(senderID)
	c.Unread[recipient]++
	c.LastMessage = preview(text)
	c.LastMessageAt = msg.CreatedAt
	c.Record(MessageSent{
		ConversationID: c.ID,
		MessageID:      id,
		SenderID:       senderID,
		SenderName:     senderName,
		RecipientID:    recipient,
		ListingTitle:   c.ListingTitle,
		Preview:        c.LastMessage,
		At:             msg.CreatedAt,
	})
	return msg, nil
}

// MarkRead clears the unread counter of reader.
func (c *Conversation) MarkRead(readerID string) error {
	if !c.IsParticipant(readerID) {
		return ErrNotParticipant
	}
	if c.Unread != nil {
		c.Unread[readerID] = 0
	}
	return nil
}

func (c *Conversation) LinkBooking(bookingID string, status BookingStatus) {
	c.BookingID = bookingID
	c.BookingStatus = status
}

// Filter is one of the inbox tabs.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterUnread  Filter = "unread"
	FilterPending Filter = "pending"
	FilterActive  Filter = "active"
)

func ParseFilter(raw string) Filter {
	switch Filter(raw) {
	case FilterUnread, FilterPending, FilterActive:
		return Filter(raw)
	default:
		return FilterAll
	}
}

// Inbox filters conversations for viewer and orders them by latest activity.
// query matches the counterpart's name or the listing title.
func Inbox(items []*Conversation, viewer string, f Filter, query string) []*Conversation {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]*Conversation, 0, len(items))
	for _, c := range items {
		if !c.IsParticipant(viewer) {
			continue
		}
		switch f {
		case FilterUnread:
			if c.UnreadFor(viewer) == 0 {
				continue
			}
		case FilterPending:
			if c.BookingStatus != "pending" {
				continue
			}
		case FilterActive:
			if c.BookingStatus == "completed" {
				continue
			}
		}
		if query != "" {
			name := c.GuestName
			if viewer == c.GuestID {
				name = c.HostName
			}
			if !strings.Contains(strings.ToLower(name), query) && !strings.Contains(strings.ToLower(c.ListingTitle), query) {
				continue
			}
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return activity(out[i]).After(activity(out[j])) })
	return out
}

func activity(c *Conversation) time.Time {
	if c.LastMessageAt.IsZero() {
		return c.CreatedAt
	}
	return c.LastMessageAt
}

func preview(text string) string {
	const max = 120
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	r := []rune(text)
	return string(r[:max]) + "…"
}

type MessageSent struct {
	ConversationID ConversationID `json:"conversation_id"`
	MessageID      MessageID      `json:"message_id"`
	SenderID       string         `json:"sender_id"`
	SenderName     string         `json:"sender_name"`
	RecipientID    string         `json:"recipient_id"`
	ListingTitle   string         `json:"listing_title"`
	Preview        string         `json:"preview"`
	At             time.Time      `json:"at"`
}

func (e MessageSent) EventName() string     { return "message.sent" }
func (e MessageSent) AggregateID() string   { return string(e.ConversationID) }
func (e MessageSent) OccurredAt() time.Time { return e.At }
