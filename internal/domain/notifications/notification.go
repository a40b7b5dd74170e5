package notifications

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("notifications: not found")
	ErrNotOwner        = errors.New("notifications: belongs to another user")
	ErrInvalidType     = errors.New("notifications: invalid type")
	ErrInvalidPriority = errors.New("notifications: invalid priority")
	ErrTitleRequired   = errors.New("notifications: title is required")
	ErrUserRequired    = errors.New("notifications: recipient is required")
)

type ID string

type Type string

const (
	TypeMessage  Type = "message"
	TypeBooking  Type = "booking"
	TypePayment  Type = "payment"
	TypeReview   Type = "review"
	TypeSystem   Type = "system"
	TypeReminder Type = "reminder"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Metadata carries the optional context shown next to a notification.
type Metadata struct {
	GuestName    string `json:"guest_name,omitempty" bson:"guest_name,omitempty"`
	PropertyName string `json:"property_name,omitempty" bson:"property_name,omitempty"`
	BookingID    string `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	Amount       string `json:"amount,omitempty" bson:"amount,omitempty"`
	Currency     string `json:"currency,omitempty" bson:"currency,omitempty"`
	Rating       int    `json:"rating,omitempty" bson:"rating,omitempty"`
}

type Notification struct {
	ID        ID
	UserID    string
	Type      Type
	Title     string
	Message   string
	Priority  Priority
	ActionURL string
	Metadata  Metadata
	// Key de-duplicates notifications derived from the same fact.
	Key       string
	Read      bool
	CreatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Notification, error)
	Save(ctx context.Context, n *Notification) error
	Delete(ctx context.Context, id ID) error
	ListByUser(ctx context.Context, userID string) ([]*Notification, error)
	ExistsByKey(ctx context.Context, userID, key string) (bool, error)
}

type CreateParams struct {
	ID        ID
	UserID    string
	Type      Type
	Title     string
	Message   string
	Priority  Priority
	ActionURL string
	Metadata  Metadata
	Key       string
	Now       time.Time
}

func New(params CreateParams) (*Notification, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	if !validType(params.Type) {
		return nil, ErrInvalidType
	}
	priority := params.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !validPriority(priority) {
		return nil, ErrInvalidPriority
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	return &Notification{
		ID:        params.ID,
		UserID:    params.UserID,
		Type:      params.Type,
		Title:     strings.TrimSpace(params.Title),
		Message:   strings.TrimSpace(params.Message),
		Priority:  priority,
		ActionURL: strings.TrimSpace(params.ActionURL),
		Metadata:  params.Metadata,
		Key:       params.Key,
		CreatedAt: params.Now.UTC(),
	}, nil
}

func (n *Notification) MarkRead() {
	n.Read = true
}

func (n *Notification) EnsureOwner(userID string) error {
	if n.UserID != userID {
		return ErrNotOwner
	}
	return nil
}

// Filter is one of the notification center tabs.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterUnread   Filter = "unread"
	FilterMessages Filter = "messages"
	FilterBookings Filter = "bookings"
	FilterPayments Filter = "payments"
)

func ParseFilter(raw string) Filter {
	switch Filter(raw) {
	case FilterUnread, FilterMessages, FilterBookings, FilterPayments:
		return Filter(raw)
	default:
		return FilterAll
	}
}

// Matches reports whether n belongs to the tab. Bookings include reminders.
func (f Filter) Matches(n *Notification) bool {
	switch f {
	case FilterUnread:
		return !n.Read
	case FilterMessages:
		return n.Type == TypeMessage
	case FilterBookings:
		return n.Type == TypeBooking || n.Type == TypeReminder
	case FilterPayments:
		return n.Type == TypePayment
	default:
		return true
	}
}

// Apply filters items and orders them newest first.
func Apply(items []*Notification, f Filter) []*Notification {
	out := make([]*Notification, 0, len(items))
	for _, n := range items {
		if f.Matches(n) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func UnreadCount(items []*Notification) int {
	count := 0
	for _, n := range items {
		if !n.Read {
			count++
		}
	}
	return count
}

func validType(t Type) bool {
	switch t {
	case TypeMessage, TypeBooking, TypePayment, TypeReview, TypeSystem, TypeReminder:
		return true
	}
	return false
}

func validPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
