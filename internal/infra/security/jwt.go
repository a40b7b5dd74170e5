package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"addisstay/internal/app/services/auth"
)

var ErrSecretRequired = errors.New("security: signing secret required")

// JWTSigner signs emailed action links with HMAC-SHA256.
type JWTSigner struct {
	Secret []byte
	Issuer string
	Now    func() time.Time
}

type actionClaims struct {
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

func (s JWTSigner) Sign(claims auth.ActionClaims, ttl time.Duration) (string, error) {
	if len(s.Secret) == 0 {
		return "", ErrSecretRequired
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, actionClaims{
		Purpose:     claims.Purpose,
		Fingerprint: claims.Fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(s.Secret)
}

func (s JWTSigner) Verify(raw, purpose string) (auth.ActionClaims, error) {
	if len(s.Secret) == 0 {
		return auth.ActionClaims{}, ErrSecretRequired
	}
	var claims actionClaims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.Issuer))
	}
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return s.Secret, nil }, opts...)
	if err != nil {
		return auth.ActionClaims{}, err
	}
	if claims.Purpose != purpose {
		return auth.ActionClaims{}, fmt.Errorf("security: token issued for %q", claims.Purpose)
	}
	return auth.ActionClaims{Subject: claims.Subject, Purpose: claims.Purpose, Fingerprint: claims.Fingerprint}, nil
}

func (s JWTSigner) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

var _ auth.ActionSigner = JWTSigner{}
