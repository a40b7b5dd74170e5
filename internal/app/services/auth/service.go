package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"addisstay/internal/app/policies"
	domainauth "addisstay/internal/domain/auth"
	domainuser "addisstay/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrInvalidActionToken = errors.New("auth: link is invalid or expired")
)

const (
	PurposePasswordReset = "password_reset"
	PurposeVerifyEmail   = "verify_email"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

// ActionClaims are carried by emailed links. Fingerprint pins the token to
// the account state it was issued for.
type ActionClaims struct {
	Subject     string
	Purpose     string
	Fingerprint string
}

// ActionSigner issues and verifies short-lived signed links.
type ActionSigner interface {
	Sign(claims ActionClaims, ttl time.Duration) (string, error)
	Verify(token, purpose string) (ActionClaims, error)
}

type Service struct {
	Users      domainuser.Repository
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	Signer     ActionSigner
	Mailer     policies.Mailer
	SessionTTL time.Duration
	LinkTTL    time.Duration
	// PublicURL prefixes the links sent by email.
	PublicURL string
	Now       func() time.Time
	Logger    *slog.Logger
}

type RegisterParams struct {
	Email       string
	FirstName   string
	LastName    string
	Phone       string
	Password    string
	AcceptTerms bool
	WantToHost  bool
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User      *domainuser.User
	Token     string
	ExpiresAt time.Time
}

type ResolveResult struct {
	User    *domainuser.User
	Session *domainauth.Session
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email, err := domainuser.NormalizeEmail(params.Email)
	if err != nil {
		return nil, err
	}
	if !params.AcceptTerms {
		return nil, domainuser.ErrTermsNotAccepted
	}
	if err := s.validatePassword(params.Password); err != nil {
		return nil, err
	}
	if _, err := s.Users.ByEmail(ctx, email); err == nil {
		return nil, domainuser.ErrEmailAlreadyUsed
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	roles := []domainuser.Role{domainuser.RoleGuest}
	if params.WantToHost {
		roles = append(roles, domainuser.RoleHost)
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Phone:        params.Phone,
		PasswordHash: hash,
		AcceptTerms:  params.AcceptTerms,
		Roles:        roles,
		Now:          s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if s.Signer != nil && s.Mailer != nil {
		if err := s.RequestVerification(ctx, user.ID); err != nil && s.Logger != nil {
			s.Logger.Warn("verification email not sent", "user_id", user.ID, "error", err)
		}
	}
	if s.Logger != nil {
		s.Logger.Info("user registered", "user_id", user.ID, "roles", user.Roles)
	}
	return result, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(user.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user authenticated", "user_id", user.ID)
	}
	return result, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, domainauth.Token(token))
}

// ResolveToken loads the session and its user. Roles come from the user so a
// guest who became a host keeps the same token.
func (s *Service) ResolveToken(ctx context.Context, token string) (*ResolveResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domainauth.ErrTokenRequired
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(token))
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.Sessions.Delete(ctx, session.Token)
		return nil, domainauth.ErrSessionExpired
	}
	user, err := s.Users.ByID(ctx, session.UserID)
	if err != nil {
		_ = s.Sessions.Delete(ctx, session.Token)
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	return &ResolveResult{User: user, Session: session}, nil
}

// RequestPasswordReset mails a reset link. Unknown addresses succeed silently
// so the endpoint cannot be used to enumerate accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if err := s.ensureLinks(); err != nil {
		return err
	}
	normalized, err := domainuser.NormalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.Users.ByEmail(ctx, normalized)
	if errors.Is(err, domainuser.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	link, err := s.link(user, PurposePasswordReset, "/reset-password")
	if err != nil {
		return err
	}
	return s.Mailer.Send(ctx, user.Email, PurposePasswordReset, map[string]string{"name": user.FirstName, "link": link})
}

// ResetPassword sets a new password and ends every session of the user. The
// link stops working once the password changed.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if err := s.ensureLinks(); err != nil {
		return err
	}
	if err := s.validatePassword(password); err != nil {
		return err
	}
	user, err := s.consume(ctx, token, PurposePasswordReset)
	if err != nil {
		return err
	}
	hash, err := s.Passwords.Hash(password)
	if err != nil {
		return err
	}
	if err := user.SetPasswordHash(hash, s.now()); err != nil {
		return err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("password reset", "user_id", user.ID)
	}
	return s.Sessions.DeleteByUser(ctx, user.ID)
}

func (s *Service) RequestVerification(ctx context.Context, id domainuser.ID) error {
	if err := s.ensureLinks(); err != nil {
		return err
	}
	user, err := s.Users.ByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Verified {
		return nil
	}
	link, err := s.link(user, PurposeVerifyEmail, "/verify-email")
	if err != nil {
		return err
	}
	return s.Mailer.Send(ctx, user.Email, PurposeVerifyEmail, map[string]string{"name": user.FirstName, "link": link})
}

func (s *Service) VerifyEmail(ctx context.Context, token string) (*domainuser.User, error) {
	if err := s.ensureLinks(); err != nil {
		return nil, err
	}
	user, err := s.consume(ctx, token, PurposeVerifyEmail)
	if err != nil {
		return nil, err
	}
	user.MarkVerified(s.now())
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) link(user *domainuser.User, purpose, path string) (string, error) {
	token, err := s.Signer.Sign(ActionClaims{
		Subject:     string(user.ID),
		Purpose:     purpose,
		Fingerprint: fingerprint(user, purpose),
	}, s.linkTTL())
	if err != nil {
		return "", err
	}
	return strings.TrimRight(s.PublicURL, "/") + path + "?token=" + token, nil
}

func (s *Service) consume(ctx context.Context, token, purpose string) (*domainuser.User, error) {
	claims, err := s.Signer.Verify(strings.TrimSpace(token), purpose)
	if err != nil {
		return nil, ErrInvalidActionToken
	}
	user, err := s.Users.ByID(ctx, domainuser.ID(claims.Subject))
	if errors.Is(err, domainuser.ErrNotFound) {
		return nil, ErrInvalidActionToken
	}
	if err != nil {
		return nil, err
	}
	if claims.Fingerprint != fingerprint(user, purpose) {
		return nil, ErrInvalidActionToken
	}
	return user, nil
}

// fingerprint changes whenever the state a link acts on changes.
func fingerprint(user *domainuser.User, purpose string) string {
	var state string
	switch purpose {
	case PurposePasswordReset:
		state = user.PasswordHash
	case PurposeVerifyEmail:
		state = user.Email
	}
	sum := sha256.Sum256([]byte(purpose + ":" + state))
	return hex.EncodeToString(sum[:8])
}

func (s *Service) issueSession(ctx context.Context, user *domainuser.User) (*AuthResult, error) {
	token, err := s.Tokens.NewToken()
	if err != nil {
		return nil, err
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  domainauth.Token(token),
		UserID: user.ID,
		Roles:  append([]domainuser.Role(nil), user.Roles...),
		TTL:    s.sessionTTL(),
		Now:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

func (s *Service) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 24 * time.Hour
}

func (s *Service) linkTTL() time.Duration {
	if s.LinkTTL > 0 {
		return s.LinkTTL
	}
	return time.Hour
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Users == nil:
		return errors.New("auth: user repository required")
	case s.Sessions == nil:
		return errors.New("auth: session store required")
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.Tokens == nil:
		return errors.New("auth: token generator required")
	default:
		return nil
	}
}

func (s *Service) ensureLinks() error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	switch {
	case s.Signer == nil:
		return errors.New("auth: action signer required")
	case s.Mailer == nil:
		return errors.New("auth: mailer required")
	default:
		return nil
	}
}
