package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	messagingapp "addisstay/internal/app/handlers/messaging"
	"addisstay/internal/app/queries"
	domainmessaging "addisstay/internal/domain/messaging"
)

type ConversationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type startConversationRequest struct {
	ListingID string `json:"listing_id"`
	Message   string `json:"message"`
}

type messageRequest struct {
	Text string `json:"text"`
}

func (h *ConversationHandler) List(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	query := messagingapp.ListConversationsQuery{UserID: p.ID, Filter: c.Query("filter"), Search: c.Query("search")}
	result, err := queries.Ask[messagingapp.ListConversationsQuery, dto.ConversationCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Start opens, or reuses, the guest's thread about a listing.
func (h *ConversationHandler) Start(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := messagingapp.StartConversationCommand{GuestID: p.ID, ListingID: req.ListingID, Message: req.Message}
	result, err := commands.Dispatch[messagingapp.StartConversationCommand, dto.Conversation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *ConversationHandler) Messages(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	query := messagingapp.ListMessagesQuery{ConversationID: c.Param("id"), UserID: p.ID, Limit: parseInt(c.Query("limit"))}
	result, err := queries.Ask[messagingapp.ListMessagesQuery, dto.MessageCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ConversationHandler) Send(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := messagingapp.SendMessageCommand{ConversationID: c.Param("id"), SenderID: p.ID, Text: req.Text}
	msg, err := commands.Dispatch[messagingapp.SendMessageCommand, domainmessaging.Message](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *ConversationHandler) MarkRead(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	cmd := messagingapp.MarkReadCommand{ConversationID: c.Param("id"), ReaderID: p.ID}
	result, err := commands.Dispatch[messagingapp.MarkReadCommand, dto.Conversation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
