// internal/pkg/token/signer.go
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	xerrors "sentra-auth/internal/pkg/errors"
)

// Signer issues and verifies symmetric bearer tokens (HS256). Verification
// failures are routine outcomes, never errors that escape the caller's
// control flow; a missing secret at issuance is a fatal configuration error.
type Signer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewSigner(secret []byte, issuer, audience string, ttl time.Duration) *Signer {
	return &Signer{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}
}

// Generate signs a payload with the shared secret. Each token gets a fresh
// ULID jti.
func (s *Signer) Generate(p *Payload) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("token signer has no secret")
	}

	now := time.Now()
	claims := &Claims{
		Payload: *p,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   "auth",
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        ulid.Make().String(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify reports whether the token carries a valid signature and claim set.
// It never exposes the payload on failure.
func (s *Signer) Verify(tokenString string) bool {
	_, err := s.parse(tokenString)
	return err == nil
}

// Decode returns the payload of a valid token, or ErrTokenExpired /
// ErrTokenInvalid.
func (s *Signer) Decode(tokenString string) (*Payload, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	return &claims.Payload, nil
}

func (s *Signer) parse(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, xerrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", xerrors.ErrTokenInvalid, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, xerrors.ErrTokenInvalid
	}
	return claims, nil
}
