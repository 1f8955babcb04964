// Package tokens implements the stateless magic-link token codec.
// Tokens are HS256 JWTs carrying an opaque payload and an absolute
// expiry; no server-side record is needed to validate them, which is
// what distinguishes them from refresh sessions. Single-use semantics
// for invite tokens come from the invite row's used_at column, not from
// the codec.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "swingtrack/internal/errors"
)

// Codec issues and verifies signed, expiring bearer tokens.
type Codec struct {
	secret []byte
}

// NewCodec creates a Codec signing with the given shared secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// linkClaims carries the caller's payload alongside the registered
// expiry claim.
type linkClaims struct {
	Payload string `json:"p"`
	jwt.RegisteredClaims
}

// Issue signs payload into a URL-safe token valid for ttl. Because the
// expiry is embedded, signing the same payload with different TTLs
// yields different tokens.
func (c *Codec) Issue(payload string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &linkClaims{
		Payload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "swingtrack",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify recomputes the signature over the received token and returns
// the original payload. Failures map onto a fixed taxonomy: a signature
// mismatch yields ErrBadSignature, a past expiry ErrTokenExpired, and
// any structural malformation ErrInvalidToken. The library's HMAC
// verification uses a constant-time compare.
func (c *Codec) Verify(tokenString string) (string, error) {
	claims := &linkClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)

	switch {
	case err == nil && token.Valid:
		return claims.Payload, nil
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", apperrors.Wrap(apperrors.ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", apperrors.Wrap(apperrors.ErrTokenExpired, err)
	default:
		return "", apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}
}
