package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"addisstay/internal/app/actor"
	"addisstay/internal/app/services/auth"
	domainauth "addisstay/internal/domain/auth"
	domainuser "addisstay/internal/domain/user"
)

const principalContextKey = "addisstay.principal"

// Authenticator is the slice of the auth service the HTTP layer calls.
type Authenticator interface {
	Register(ctx context.Context, params auth.RegisterParams) (*auth.AuthResult, error)
	Login(ctx context.Context, params auth.LoginParams) (*auth.AuthResult, error)
	Logout(ctx context.Context, token string) error
	ResolveToken(ctx context.Context, token string) (*auth.ResolveResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	RequestVerification(ctx context.Context, id domainuser.ID) error
	VerifyEmail(ctx context.Context, token string) (*domainuser.User, error)
}

type principal struct {
	ID       string
	Email    string
	Name     string
	Roles    []string
	Currency string
	Token    string
}

func (p principal) HasRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	for _, r := range p.Roles {
		if strings.ToLower(r) == role {
			return true
		}
	}
	return false
}

// AuthMiddleware resolves the bearer token, if any, and attaches the caller
// to both the gin context and the request context. Bad tokens leave the
// request anonymous; routes that need a user reject it later.
type AuthMiddleware struct {
	Service Authenticator
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	resolved, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && !errors.Is(err, domainauth.ErrSessionExpired) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	user := resolved.User
	p := principal{
		ID:       string(user.ID),
		Email:    user.Email,
		Name:     user.FullName(),
		Roles:    mapRoles(user.Roles),
		Currency: user.Preferences.Currency,
		Token:    token,
	}
	c.Set(principalContextKey, p)
	ctx := actor.WithActor(c.Request.Context(), actor.Actor{ID: p.ID, Name: p.Name, Roles: p.Roles})
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

func mapRoles(roles []domainuser.Role) []string {
	result := make([]string, 0, len(roles))
	for _, r := range roles {
		result = append(result, string(r))
	}
	return result
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireRole(c *gin.Context, role string) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	if role != "" && !p.HasRole(role) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
