package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"addisstay/internal/app/commands"
	"addisstay/internal/app/dto"
	profileapp "addisstay/internal/app/handlers/profile"
)

type ProfileHandler struct {
	Commands commands.Bus
}

// Absent fields are left untouched.
type profileRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Phone       *string `json:"phone"`
	Avatar      *string `json:"avatar"`
	DateOfBirth *string `json:"date_of_birth"`
	Nationality *string `json:"nationality"`
	Currency    *string `json:"currency"`
	Language    *string `json:"language"`
}

func (h *ProfileHandler) Update(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cmd := profileapp.UpdateProfileCommand{
		UserID:      p.ID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Avatar:      req.Avatar,
		Nationality: req.Nationality,
		Currency:    req.Currency,
		Language:    req.Language,
	}
	if req.DateOfBirth != nil {
		dob, err := parseDate("date_of_birth", *req.DateOfBirth)
		if err != nil {
			respondError(c, err)
			return
		}
		cmd.DateOfBirth = &dob
	}
	user, err := commands.Dispatch[profileapp.UpdateProfileCommand, dto.User](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) BecomeHost(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	user, err := commands.Dispatch[profileapp.BecomeHostCommand, dto.User](c.Request.Context(), h.Commands, profileapp.BecomeHostCommand{UserID: p.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

