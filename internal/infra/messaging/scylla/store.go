package scylla

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gocql/gocql"

	domainmessaging "addisstay/internal/domain/messaging"
)

const conversationColumns = `id, listing_id, listing_title, host_id, host_name, guest_id, guest_name, booking_id, booking_status, last_message, last_message_at, unread, created_at`

var errNoSession = errors.New("scylla: session not initialized")

// Store keeps conversations and messages in Scylla. Messages are clustered
// newest first per conversation.
type Store struct {
	session *gocql.Session
	logger  *slog.Logger
}

func NewStore(session *gocql.Session, logger *slog.Logger) *Store {
	return &Store{session: session, logger: logger}
}

func (s *Store) Conversation(ctx context.Context, id domainmessaging.ConversationID) (*domainmessaging.Conversation, error) {
	if s.session == nil {
		return nil, errNoSession
	}
	var row conversationRow
	err := s.session.
		Query(`SELECT `+conversationColumns+` FROM conversations WHERE id = ? LIMIT 1`, string(id)).
		WithContext(ctx).
		Consistency(gocql.One).
		Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, domainmessaging.ErrConversationNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *Store) FindByListingAndGuest(ctx context.Context, listingID, guestID string) (*domainmessaging.Conversation, error) {
	found, err := s.query(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE listing_id = ? AND guest_id = ? ALLOW FILTERING`, listingID, guestID)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, domainmessaging.ErrConversationNotFound
	}
	return found[0], nil
}

func (s *Store) ListForUser(ctx context.Context, userID string) ([]*domainmessaging.Conversation, error) {
	return s.query(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE participants CONTAINS ? ALLOW FILTERING`, userID)
}

func (s *Store) ListByBooking(ctx context.Context, bookingID string) ([]*domainmessaging.Conversation, error) {
	if bookingID == "" {
		return nil, nil
	}
	return s.query(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE booking_id = ? ALLOW FILTERING`, bookingID)
}

func (s *Store) SaveConversation(ctx context.Context, c *domainmessaging.Conversation) error {
	if s.session == nil {
		return errNoSession
	}
	unread := c.Unread
	if unread == nil {
		unread = map[string]int{}
	}
	return s.session.
		Query(`INSERT INTO conversations (`+conversationColumns+`, participants) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(c.ID), c.ListingID, c.ListingTitle, c.HostID, c.HostName, c.GuestID, c.GuestName,
			c.BookingID, string(c.BookingStatus), c.LastMessage, nullableTime(c.LastMessageAt), unread, c.CreatedAt,
			[]string{c.HostID, c.GuestID}).
		WithContext(ctx).
		Consistency(gocql.Quorum).
		Exec()
}

func (s *Store) AppendMessage(ctx context.Context, m domainmessaging.Message) error {
	if s.session == nil {
		return errNoSession
	}
	return s.session.
		Query(`INSERT INTO messages (conversation_id, created_at, message_id, sender_id, sender_name, text) VALUES (?, ?, ?, ?, ?, ?)`,
			string(m.ConversationID), m.CreatedAt.UTC(), string(m.ID), m.SenderID, m.SenderName, m.Text).
		WithContext(ctx).
		Consistency(gocql.Quorum).
		Exec()
}

// Messages returns the last limit messages in the order they were sent.
func (s *Store) Messages(ctx context.Context, id domainmessaging.ConversationID, limit int) ([]domainmessaging.Message, error) {
	if s.session == nil {
		return nil, errNoSession
	}
	if limit <= 0 {
		limit = 200
	}
	iter := s.session.
		Query(`SELECT conversation_id, created_at, message_id, sender_id, sender_name, text FROM messages WHERE conversation_id = ? LIMIT ?`, string(id), limit).
		WithContext(ctx).
		Consistency(gocql.One).
		Iter()
	var (
		out        []domainmessaging.Message
		convID     string
		createdAt  time.Time
		messageID  string
		senderID   string
		senderName string
		text       string
	)
	for iter.Scan(&convID, &createdAt, &messageID, &senderID, &senderName, &text) {
		out = append(out, domainmessaging.Message{
			ID:             domainmessaging.MessageID(messageID),
			ConversationID: domainmessaging.ConversationID(convID),
			SenderID:       senderID,
			SenderName:     senderName,
			Text:           text,
			CreatedAt:      createdAt.UTC(),
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return oldestFirst(out), nil
}

func (s *Store) query(ctx context.Context, cql string, args ...any) ([]*domainmessaging.Conversation, error) {
	if s.session == nil {
		return nil, errNoSession
	}
	iter := s.session.Query(cql, args...).WithContext(ctx).Consistency(gocql.One).Iter()
	out := make([]*domainmessaging.Conversation, 0)
	var row conversationRow
	for iter.Scan(row.dest()...) {
		out = append(out, row.toDomain())
		row = conversationRow{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

type conversationRow struct {
	ID            string
	ListingID     string
	ListingTitle  string
	HostID        string
	HostName      string
	GuestID       string
	GuestName     string
	BookingID     string
	BookingStatus string
	LastMessage   string
	LastMessageAt time.Time
	Unread        map[string]int
	CreatedAt     time.Time
}

// dest lists scan targets in conversationColumns order.
func (r *conversationRow) dest() []any {
	return []any{
		&r.ID, &r.ListingID, &r.ListingTitle, &r.HostID, &r.HostName, &r.GuestID, &r.GuestName,
		&r.BookingID, &r.BookingStatus, &r.LastMessage, &r.LastMessageAt, &r.Unread, &r.CreatedAt,
	}
}

func (r conversationRow) toDomain() *domainmessaging.Conversation {
	unread := make(map[string]int, len(r.Unread))
	for k, v := range r.Unread {
		unread[k] = v
	}
	return &domainmessaging.Conversation{
		ID:            domainmessaging.ConversationID(r.ID),
		ListingID:     r.ListingID,
		ListingTitle:  r.ListingTitle,
		HostID:        r.HostID,
		HostName:      r.HostName,
		GuestID:       r.GuestID,
		GuestName:     r.GuestName,
		BookingID:     r.BookingID,
		BookingStatus: domainmessaging.BookingStatus(r.BookingStatus),
		LastMessage:   r.LastMessage,
		LastMessageAt: utcOrZero(r.LastMessageAt),
		Unread:        unread,
		CreatedAt:     utcOrZero(r.CreatedAt),
	}
}

func oldestFirst(msgs []domainmessaging.Message) []domainmessaging.Message {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs
}

// nullableTime keeps zero times out of the table; gocql would store year 1.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func utcOrZero(t time.Time) time.Time {
	if t.IsZero() || t.Unix() <= 0 {
		return time.Time{}
	}
	return t.UTC()
}

var _ domainmessaging.Store = (*Store)(nil)
