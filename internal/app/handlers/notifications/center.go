package notifications

import (
	"context"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	"addisstay/internal/app/handlers/support"
	"addisstay/internal/app/queries"
	"addisstay/internal/app/uow"
	domainnotifications "addisstay/internal/domain/notifications"
)

const (
	listNotificationsKey = "notifications.list"
	markReadKey          = "notifications.read"
	markAllReadKey       = "notifications.read_all"
	deleteKey            = "notifications.delete"
)

type ListNotificationsQuery struct {
	UserID string `validate:"required"`
	Filter string
}

func (ListNotificationsQuery) Key() string { return listNotificationsKey }

type ListNotificationsHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle returns the tab selected by Filter. Unread and Total always count
// every notification of the user.
func (h *ListNotificationsHandler) Handle(ctx context.Context, q ListNotificationsQuery) (dto.NotificationCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.NotificationCollection{}, err
	}
	defer support.Release(cleanup)

	all, err := unit.Notifications().ListByUser(ctx, q.UserID)
	if err != nil {
		return dto.NotificationCollection{}, err
	}
	items := domainnotifications.Apply(all, domainnotifications.ParseFilter(q.Filter))
	out := make([]dto.Notification, len(items))
	for i, n := range items {
		out[i] = dto.MapNotification(n)
	}
	return dto.NotificationCollection{
		Items:  out,
		Unread: domainnotifications.UnreadCount(all),
		Total:  len(all),
	}, nil
}

type MarkReadCommand struct {
	UserID         string `validate:"required"`
	NotificationID string `validate:"required"`
}

func (MarkReadCommand) Key() string       { return markReadKey }
func (c MarkReadCommand) ActorID() string { return c.UserID }

type MarkReadHandler struct{}

func (MarkReadHandler) Handle(ctx context.Context, cmd MarkReadCommand) (dto.Notification, error) {
	unit, n, err := loadOwned(ctx, cmd.UserID, cmd.NotificationID)
	if err != nil {
		return dto.Notification{}, err
	}
	n.MarkRead()
	if err := unit.Notifications().Save(ctx, n); err != nil {
		return dto.Notification{}, err
	}
	return dto.MapNotification(n), nil
}

type MarkAllReadCommand struct {
	UserID string `validate:"required"`
}

func (MarkAllReadCommand) Key() string       { return markAllReadKey }
func (c MarkAllReadCommand) ActorID() string { return c.UserID }

type MarkAllReadHandler struct{}

// Handle returns how many notifications changed.
func (MarkAllReadHandler) Handle(ctx context.Context, cmd MarkAllReadCommand) (int, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return 0, err
	}
	items, err := unit.Notifications().ListByUser(ctx, cmd.UserID)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, n := range items {
		if n.Read {
			continue
		}
		n.MarkRead()
		if err := unit.Notifications().Save(ctx, n); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

type DeleteCommand struct {
	UserID         string `validate:"required"`
	NotificationID string `validate:"required"`
}

func (DeleteCommand) Key() string       { return deleteKey }
func (c DeleteCommand) ActorID() string { return c.UserID }

type DeleteHandler struct{}

func (DeleteHandler) Handle(ctx context.Context, cmd DeleteCommand) (struct{}, error) {
	unit, n, err := loadOwned(ctx, cmd.UserID, cmd.NotificationID)
	if err != nil {
		return struct{}{}, err
	}
	return struct{}{}, unit.Notifications().Delete(ctx, n.ID)
}

func loadOwned(ctx context.Context, userID, id string) (uow.UnitOfWork, *domainnotifications.Notification, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return nil, nil, err
	}
	n, err := unit.Notifications().ByID(ctx, domainnotifications.ID(id))
	if err != nil {
		return nil, nil, err
	}
	if err := n.EnsureOwner(userID); err != nil {
		return nil, nil, err
	}
	return unit, n, nil
}

var (
	_ queries.Handler[ListNotificationsQuery, dto.NotificationCollection] = (*ListNotificationsHandler)(nil)
	_ commands.Handler[MarkReadCommand, dto.Notification]                  = MarkReadHandler{}
	_ commands.Handler[MarkAllReadCommand, int]                            = MarkAllReadHandler{}
	_ commands.Handler[DeleteCommand, struct{}]                            = DeleteHandler{}
)
