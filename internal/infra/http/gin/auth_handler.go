package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"addisstay/internal/app/dto"
	profileapp "addisstay/internal/app/handlers/profile"
	"addisstay/internal/app/queries"
	authsvc "addisstay/internal/app/services/auth"
	domainuser "addisstay/internal/domain/user"
)

type AuthHandler struct {
	Service Authenticator
	Queries queries.Bus
	Logger  *slog.Logger
}

type registerRequest struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	AcceptTerms bool   `json:"accept_terms"`
	WantToHost  bool   `json:"want_to_host"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.Service.Register(c.Request.Context(), authsvc.RegisterParams{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Password:    req.Password,
		AcceptTerms: req.AcceptTerms,
		WantToHost:  req.WantToHost,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session(result))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.Service.Login(c.Request.Context(), authsvc.LoginParams{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session(result))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if err := h.Service.Logout(c.Request.Context(), p.Token); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("logout failed", "user_id", p.ID, "error", err)
		}
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	user, err := queries.Ask[profileapp.GetProfileQuery, dto.User](c.Request.Context(), h.Queries, profileapp.GetProfileQuery{UserID: p.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// RequestPasswordReset always answers 202 so the endpoint cannot be used to
// discover which emails are registered.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil && h.Logger != nil {
		h.Logger.Warn("password reset request failed", "error", err)
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}

func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.Service.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUser(user))
}

func (h *AuthHandler) RequestVerification(c *gin.Context) {
	p, ok := requireRole(c, "")
	if !ok {
		return
	}
	if err := h.Service.RequestVerification(c.Request.Context(), domainuser.ID(p.ID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}

func session(result *authsvc.AuthResult) dto.Session {
	return dto.Session{Token: result.Token, ExpiresAt: result.ExpiresAt, User: dto.MapUser(result.User)}
}
