package memory

import (
	"context"
	"maps"
	"sync"

	domainmessaging "addisstay/internal/domain/messaging"
)

type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[domainmessaging.ConversationID]*domainmessaging.Conversation
	messages      map[domainmessaging.ConversationID][]domainmessaging.Message
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[domainmessaging.ConversationID]*domainmessaging.Conversation),
		messages:      make(map[domainmessaging.ConversationID][]domainmessaging.Message),
	}
}

func (s *ConversationStore) Conversation(ctx context.Context, id domainmessaging.ConversationID) (*domainmessaging.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, domainmessaging.ErrConversationNotFound
	}
	return cloneConversation(c), nil
}

func (s *ConversationStore) FindByListingAndGuest(ctx context.Context, listingID, guestID string) (*domainmessaging.Conversation, error) {
	found := s.filter(func(c *domainmessaging.Conversation) bool { return c.ListingID == listingID && c.GuestID == guestID })
	if len(found) == 0 {
		return nil, domainmessaging.ErrConversationNotFound
	}
	return found[0], nil
}

func (s *ConversationStore) ListForUser(ctx context.Context, userID string) ([]*domainmessaging.Conversation, error) {
	return s.filter(func(c *domainmessaging.Conversation) bool { return c.IsParticipant(userID) }), nil
}

func (s *ConversationStore) ListByBooking(ctx context.Context, bookingID string) ([]*domainmessaging.Conversation, error) {
	return s.filter(func(c *domainmessaging.Conversation) bool { return bookingID != "" && c.BookingID == bookingID }), nil
}

func (s *ConversationStore) SaveConversation(ctx context.Context, c *domainmessaging.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[c.ID] = cloneConversation(c)
	return nil
}

func (s *ConversationStore) AppendMessage(ctx context.Context, m domainmessaging.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[m.ConversationID] = append(s.messages[m.ConversationID], m)
	return nil
}

// Messages returns the last limit messages in the order they were sent.
func (s *ConversationStore) Messages(ctx context.Context, id domainmessaging.ConversationID, limit int) ([]domainmessaging.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.messages[id]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return append([]domainmessaging.Message(nil), all...), nil
}

func (s *ConversationStore) filter(keep func(*domainmessaging.Conversation) bool) []*domainmessaging.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domainmessaging.Conversation, 0)
	for _, c := range s.conversations {
		if keep(c) {
			out = append(out, cloneConversation(c))
		}
	}
	return out
}

func cloneConversation(c *domainmessaging.Conversation) *domainmessaging.Conversation {
	cp := *c
	cp.Unread = maps.Clone(c.Unread)
	if cp.Unread == nil {
		cp.Unread = map[string]int{}
	}
	cp.ClearEvents()
	return &cp
}

var _ domainmessaging.Store = (*ConversationStore)(nil)
