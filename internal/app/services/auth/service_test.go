package auth_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"addisstay/internal/app/services/auth"
	domainauth "addisstay/internal/domain/auth"
	domainuser "addisstay/internal/domain/user"
	"addisstay/internal/infra/security"
	"addisstay/internal/infra/storage/memory"
)

type sentMail struct {
	to, template string
	data         map[string]string
}

type recordingMailer struct{ sent []sentMail }

func (m *recordingMailer) Send(ctx context.Context, to, template string, data map[string]string) error {
	m.sent = append(m.sent, sentMail{to: to, template: template, data: data})
	return nil
}

func (m *recordingMailer) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.sent)
	u, err := url.Parse(m.sent[len(m.sent)-1].data["link"])
	require.NoError(t, err)
	return u.Query().Get("token")
}

func newService() (*auth.Service, *recordingMailer) {
	mailer := &recordingMailer{}
	return &auth.Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:     security.RandomTokenGenerator{},
		Signer:     security.JWTSigner{Secret: []byte("secret")},
		Mailer:     mailer,
		SessionTTL: time.Hour,
		PublicURL:  "https://addisstay.test/",
	}, mailer
}

func register(t *testing.T, s *auth.Service) *auth.AuthResult {
	t.Helper()
	res, err := s.Register(context.Background(), auth.RegisterParams{
		Email:       "Abebe@Example.com",
		FirstName:   "Abebe",
		LastName:    "Kebede",
		Password:    "correct-horse",
		AcceptTerms: true,
	})
	require.NoError(t, err)
	return res
}

func TestRegisterLoginResolve(t *testing.T) {
	ctx := context.Background()
	s, mailer := newService()
	res := register(t, s)
	assert.Equal(t, "abebe@example.com", res.User.Email)
	assert.Equal(t, []domainuser.Role{domainuser.RoleGuest}, res.User.Roles)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, auth.PurposeVerifyEmail, mailer.sent[0].template)

	_, err := s.Register(ctx, auth.RegisterParams{Email: "abebe@example.com", FirstName: "A", LastName: "B", Password: "12345678", AcceptTerms: true})
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)

	login, err := s.Login(ctx, auth.LoginParams{Email: "ABEBE@example.com ", Password: "correct-horse"})
	require.NoError(t, err)
	resolved, err := s.ResolveToken(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, resolved.User.ID)

	_, err = s.Login(ctx, auth.LoginParams{Email: "abebe@example.com", Password: "nope-nope"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.NoError(t, s.Logout(ctx, login.Token))
	_, err = s.ResolveToken(ctx, login.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()
	_, err := s.Register(ctx, auth.RegisterParams{Email: "a@b.co", FirstName: "A", LastName: "B", Password: "short", AcceptTerms: true})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
	_, err = s.Register(ctx, auth.RegisterParams{Email: "a@b.co", FirstName: "A", LastName: "B", Password: "long-enough"})
	assert.ErrorIs(t, err, domainuser.ErrTermsNotAccepted)
}

func TestExpiredSessionIsRejected(t *testing.T) {
	s, _ := newService()
	res := register(t, s)
	s.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err := s.ResolveToken(context.Background(), res.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionExpired)
}

func TestPasswordResetIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s, mailer := newService()
	res := register(t, s)

	require.NoError(t, s.RequestPasswordReset(ctx, "nobody@example.com"))
	require.Len(t, mailer.sent, 1)

	require.NoError(t, s.RequestPasswordReset(ctx, "abebe@example.com"))
	token := mailer.lastToken(t)
	assert.Contains(t, mailer.sent[1].data["link"], "https://addisstay.test/reset-password?token=")

	require.NoError(t, s.ResetPassword(ctx, token, "brand-new-pass"))
	_, err := s.ResolveToken(ctx, res.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	_, err = s.Login(ctx, auth.LoginParams{Email: "abebe@example.com", Password: "brand-new-pass"})
	require.NoError(t, err)

	err = s.ResetPassword(ctx, token, "another-pass")
	assert.ErrorIs(t, err, auth.ErrInvalidActionToken)
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()
	s, mailer := newService()
	register(t, s)
	token := mailer.lastToken(t)

	u, err := s.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, u.Verified)

	_, err = s.VerifyEmail(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidActionToken)
}
