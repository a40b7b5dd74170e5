package messaging

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/outbox"
	"addisstay/internal/app/queries"
	"addisstay/internal/app/uow"
	domainbooking "addisstay/internal/domain/booking"
	domainlistings "addisstay/internal/domain/listings"
	domainmessaging "addisstay/internal/domain/messaging"
	domainuser "addisstay/internal/domain/user"
)

const (
	startConversationKey = "messaging.start"
	sendMessageKey       = "messaging.send"
	markReadKey          = "messaging.read"
	listConversationsKey = "messaging.conversations"
	listMessagesKey      = "messaging.messages"
	defaultMessageLimit  = 200
)

// StartConversationCommand returns the guest's conversation about a listing,
// creating it on first contact. An optional first message is sent with it.
type StartConversationCommand struct {
	GuestID   string `validate:"required"`
	ListingID string `validate:"required"`
	Message   string `validate:"max=2000"`
}

func (StartConversationCommand) Key() string       { return startConversationKey }
func (c StartConversationCommand) ActorID() string { return c.GuestID }

type SendMessageCommand struct {
	ConversationID string `validate:"required"`
	SenderID       string `validate:"required"`
	Text           string `validate:"required,max=2000"`
}

func (SendMessageCommand) Key() string       { return sendMessageKey }
func (c SendMessageCommand) ActorID() string { return c.SenderID }

type MarkReadCommand struct {
	ConversationID string `validate:"required"`
	ReaderID       string `validate:"required"`
}

func (MarkReadCommand) Key() string       { return markReadKey }
func (c MarkReadCommand) ActorID() string { return c.ReaderID }

// Conversations is shared by every messaging handler. Conversations live in
// their own store; the unit of work is only used for listing and user lookups
// and for the message.sent outbox record.
type Conversations struct {
	Store   domainmessaging.Store
	Encoder outbox.EventEncoder
	Clock   support.Clock
}

type StartConversationHandler struct{ Conversations }

type SendMessageHandler struct{ Conversations }

type MarkReadHandler struct{ Conversations }

func (h *StartConversationHandler) Handle(ctx context.Context, cmd StartConversationCommand) (dto.Conversation, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return dto.Conversation{}, err
	}
	c, err := h.Store.FindByListingAndGuest(ctx, cmd.ListingID, cmd.GuestID)
	if errors.Is(err, domainmessaging.ErrConversationNotFound) {
		c, err = h.open(ctx, unit, cmd)
	}
	if err != nil {
		return dto.Conversation{}, err
	}
	if cmd.Message != "" {
		if _, err := h.deliver(ctx, unit, c, cmd.GuestID, cmd.Message); err != nil {
			return dto.Conversation{}, err
		}
	}
	return dto.MapConversation(c, cmd.GuestID), nil
}

func (h *StartConversationHandler) open(ctx context.Context, unit uow.UnitOfWork, cmd StartConversationCommand) (*domainmessaging.Conversation, error) {
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	host, err := unit.Users().ByID(ctx, domainuser.ID(listing.Host))
	if err != nil {
		return nil, err
	}
	guest, err := unit.Users().ByID(ctx, domainuser.ID(cmd.GuestID))
	if err != nil {
		return nil, err
	}
	params := domainmessaging.StartParams{
		ID:           domainmessaging.ConversationID(uuid.NewString()),
		ListingID:    string(listing.ID),
		ListingTitle: listing.Title,
		HostID:       string(listing.Host),
		HostName:     host.FullName(),
		GuestID:      cmd.GuestID,
		GuestName:    guest.FullName(),
		Now:          h.Clock.Now(),
	}
	if b := latestBooking(ctx, unit, listing.ID, cmd.GuestID); b != nil {
		params.BookingID = string(b.ID)
		params.Status = domainmessaging.BookingStatus(b.Status)
	}
	c, err := domainmessaging.Start(params)
	if err != nil {
		return nil, err
	}
	if err := h.Store.SaveConversation(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// latestBooking finds the guest's most recent booking of the listing, if any.
func latestBooking(ctx context.Context, unit uow.UnitOfWork, id domainlistings.ListingID, guestID string) *domainbooking.Booking {
	items, err := unit.Bookings().ListByGuest(ctx, guestID)
	if err != nil {
		return nil
	}
	var latest *domainbooking.Booking
	for _, b := range items {
		if b.ListingID == id && (latest == nil || b.CreatedAt.After(latest.CreatedAt)) {
			latest = b
		}
	}
	return latest
}

func (h *SendMessageHandler) Handle(ctx context.Context, cmd SendMessageCommand) (domainmessaging.Message, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return domainmessaging.Message{}, err
	}
	c, err := h.Store.Conversation(ctx, domainmessaging.ConversationID(cmd.ConversationID))
	if err != nil {
		return domainmessaging.Message{}, err
	}
	return h.deliver(ctx, unit, c, cmd.SenderID, cmd.Text)
}

func (h *Conversations) deliver(ctx context.Context, unit uow.UnitOfWork, c *domainmessaging.Conversation, sender, text string) (domainmessaging.Message, error) {
	msg, err := c.Send(domainmessaging.MessageID(uuid.NewString()), sender, text, h.Clock.Now())
	if err != nil {
		return domainmessaging.Message{}, err
	}
	if err := h.Store.AppendMessage(ctx, msg); err != nil {
		return domainmessaging.Message{}, err
	}
	if err := h.Store.SaveConversation(ctx, c); err != nil {
		return domainmessaging.Message{}, err
	}
	if err := support.PublishEvents(ctx, unit, h.Encoder, c); err != nil {
		return domainmessaging.Message{}, err
	}
	return msg, nil
}

func (h *MarkReadHandler) Handle(ctx context.Context, cmd MarkReadCommand) (dto.Conversation, error) {
	c, err := h.Store.Conversation(ctx, domainmessaging.ConversationID(cmd.ConversationID))
	if err != nil {
		return dto.Conversation{}, err
	}
	if err := c.MarkRead(cmd.ReaderID); err != nil {
		return dto.Conversation{}, err
	}
	if err := h.Store.SaveConversation(ctx, c); err != nil {
		return dto.Conversation{}, err
	}
	return dto.MapConversation(c, cmd.ReaderID), nil
}

type ListConversationsQuery struct {
	UserID string `validate:"required"`
	Filter string
	Search string
}

func (ListConversationsQuery) Key() string { return listConversationsKey }

type ListConversationsHandler struct {
	Store domainmessaging.Store
}

func (h *ListConversationsHandler) Handle(ctx context.Context, q ListConversationsQuery) (dto.ConversationCollection, error) {
	items, err := h.Store.ListForUser(ctx, q.UserID)
	if err != nil {
		return dto.ConversationCollection{}, err
	}
	items = domainmessaging.Inbox(items, q.UserID, domainmessaging.ParseFilter(q.Filter), q.Search)
	out := make([]dto.Conversation, len(items))
	for i, c := range items {
		out[i] = dto.MapConversation(c, q.UserID)
	}
	return dto.ConversationCollection{Items: out}, nil
}

type ListMessagesQuery struct {
	ConversationID string `validate:"required"`
	UserID         string `validate:"required"`
	Limit          int
}

func (ListMessagesQuery) Key() string { return listMessagesKey }

type ListMessagesHandler struct {
	Store domainmessaging.Store
}

// Handle returns the latest messages oldest first.
func (h *ListMessagesHandler) Handle(ctx context.Context, q ListMessagesQuery) (dto.MessageCollection, error) {
	c, err := h.Store.Conversation(ctx, domainmessaging.ConversationID(q.ConversationID))
	if err != nil {
		return dto.MessageCollection{}, err
	}
	if !c.IsParticipant(q.UserID) {
		return dto.MessageCollection{}, domainmessaging.ErrNotParticipant
	}
	limit := q.Limit
	if limit <= 0 || limit > defaultMessageLimit {
		limit = defaultMessageLimit
	}
	items, err := h.Store.Messages(ctx, c.ID, limit)
	if err != nil {
		return dto.MessageCollection{}, err
	}
	if items == nil {
		items = []domainmessaging.Message{}
	}
	return dto.MessageCollection{ConversationID: string(c.ID), Items: items}, nil
}

var (
	_ commands.Handler[StartConversationCommand, dto.Conversation]        = (*StartConversationHandler)(nil)
	_ commands.Handler[SendMessageCommand, domainmessaging.Message]       = (*SendMessageHandler)(nil)
	_ commands.Handler[MarkReadCommand, dto.Conversation]                 = (*MarkReadHandler)(nil)
	_ queries.Handler[ListConversationsQuery, dto.ConversationCollection] = (*ListConversationsHandler)(nil)
	_ queries.Handler[ListMessagesQuery, dto.MessageCollection]           = (*ListMessagesHandler)(nil)
)
