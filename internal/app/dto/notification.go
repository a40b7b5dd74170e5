package dto

import (
	"time"

	"addisstay/internal/domain/notifications"
)

type Notification struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Priority  string                 `json:"priority"`
	ActionURL string                 `json:"action_url,omitempty"`
	Metadata  notifications.Metadata `json:"metadata"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}

type NotificationCollection struct {
	Items  []Notification `json:"items"`
	Unread int            `json:"unread"`
	Total  int            `json:"total"`
}

func MapNotification(n *notifications.Notification) Notification {
	return Notification{
		ID:        string(n.ID),
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Priority:  string(n.Priority),
		ActionURL: n.ActionURL,
		Metadata:  n.Metadata,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
