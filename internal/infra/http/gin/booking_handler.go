package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	bookingapp "addisstay/internal/app/handlers/booking"
	"addisstay/internal/app/queries"
)

// BookingHandler covers the guest side of bookings.
type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	ListingID       string `json:"listing_id"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	Adults          int    `json:"adults"`
	Children        int    `json:"children"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	SpecialRequests string `json:"special_requests"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Create accepts an Idempotency-Key header; a retried request with the same
// key replays the first outcome.
func (h *BookingHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	checkIn, err := parseDate("check_in", req.CheckIn)
	if err != nil {
		respondError(c, err)
		return
	}
	checkOut, err := parseDate("check_out", req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}
	currency, ok := displayCurrency(c)
	if !ok {
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		ListingID:       req.ListingID,
		GuestID:         p.ID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Adults:          req.Adults,
		Children:        req.Children,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		SpecialRequests: req.SpecialRequests,
		Currency:        currency,
		RequestKey:      c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *BookingHandler) List(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	currency, ok := displayCurrency(c)
	if !ok {
		return
	}
	query := bookingapp.GuestBookingsQuery{GuestID: p.ID, Currency: currency}
	result, err := queries.Ask[bookingapp.GuestBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	cancelBooking(c, h.Commands, p.ID)
}

// HostBookingHandler is the host board: list, confirm, cancel and complete.
type HostBookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h *HostBookingHandler) List(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	currency, ok := displayCurrency(c)
	if !ok {
		return
	}
	query := bookingapp.HostBookingsQuery{HostID: p.ID, View: c.Query("view"), Currency: currency}
	result, err := queries.Ask[bookingapp.HostBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *HostBookingHandler) Confirm(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	cmd := bookingapp.ConfirmBookingCommand{BookingID: c.Param("id"), HostID: p.ID}
	result, err := commands.Dispatch[bookingapp.ConfirmBookingCommand, dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *HostBookingHandler) Cancel(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	cancelBooking(c, h.Commands, p.ID)
}

func (h *HostBookingHandler) Complete(c *gin.Context) {
	p, ok := requireRole(c, "host")
	if !ok {
		return
	}
	cmd := bookingapp.CompleteBookingCommand{BookingID: c.Param("id"), HostID: p.ID}
	result, err := commands.Dispatch[bookingapp.CompleteBookingCommand, dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// cancelBooking reads an optional reason; an empty body is allowed.
func cancelBooking(c *gin.Context, bus commands.Bus, actorID string) {
	var req cancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	cmd := bookingapp.CancelBookingCommand{BookingID: c.Param("id"), ActorUser: actorID, Reason: req.Reason}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, dto.Booking](c.Request.Context(), bus, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
