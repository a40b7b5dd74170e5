package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	notificationapp "addisstay/internal/app/handlers/notifications"
	wishlistapp "addisstay/internal/app/handlers/wishlist"
	"addisstay/internal/app/queries"
)

type WishlistHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h *WishlistHandler) List(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	currency, ok := displayCurrency(c)
	if !ok {
		return
	}
	query := wishlistapp.WishlistQuery{UserID: p.ID, Currency: currency}
	items, err := queries.Ask[wishlistapp.WishlistQuery, []dto.ListingCard](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []dto.ListingCard{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// Toggle saves the listing, or removes it when already saved.
func (h *WishlistHandler) Toggle(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := wishlistapp.ToggleWishlistCommand{UserID: p.ID, ListingID: c.Param("listingId")}
	result, err := commands.Dispatch[wishlistapp.ToggleWishlistCommand, wishlistapp.ToggleResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type NotificationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// List accepts ?filter=all|unread|messages|bookings|payments.
func (h *NotificationHandler) List(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	query := notificationapp.ListNotificationsQuery{UserID: p.ID, Filter: c.Query("filter")}
	result, err := queries.Ask[notificationapp.ListNotificationsQuery, dto.NotificationCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := notificationapp.MarkReadCommand{UserID: p.ID, NotificationID: c.Param("id")}
	result, err := commands.Dispatch[notificationapp.MarkReadCommand, dto.Notification](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	n, err := commands.Dispatch[notificationapp.MarkAllReadCommand, int](c.Request.Context(), h.Commands, notificationapp.MarkAllReadCommand{UserID: p.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := notificationapp.DeleteCommand{UserID: p.ID, NotificationID: c.Param("id")}
	if _, err := commands.Dispatch[notificationapp.DeleteCommand, struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
