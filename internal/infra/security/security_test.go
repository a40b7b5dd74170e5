package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"addisstay/internal/app/services/auth"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "s3cret-pass"))
	assert.Error(t, h.Compare(hash, "wrong"))
}

func TestRandomTokensDiffer(t *testing.T) {
	g := RandomTokenGenerator{}
	a, err := g.NewToken()
	require.NoError(t, err)
	b, err := g.NewToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
}

func TestJWTSignerVerifiesPurposeAndExpiry(t *testing.T) {
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	signer := JWTSigner{Secret: []byte("test-secret"), Issuer: "addisstay", Now: func() time.Time { return at }}
	token, err := signer.Sign(auth.ActionClaims{Subject: "u1", Purpose: auth.PurposePasswordReset, Fingerprint: "fp"}, time.Hour)
	require.NoError(t, err)

	claims, err := signer.Verify(token, auth.PurposePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "fp", claims.Fingerprint)

	_, err = signer.Verify(token, auth.PurposeVerifyEmail)
	assert.Error(t, err)

	later := JWTSigner{Secret: signer.Secret, Issuer: "addisstay", Now: func() time.Time { return at.Add(2 * time.Hour) }}
	_, err = later.Verify(token, auth.PurposePasswordReset)
	assert.Error(t, err)

	other := JWTSigner{Secret: []byte("other"), Now: signer.Now}
	_, err = other.Verify(token, auth.PurposePasswordReset)
	assert.Error(t, err)
}
