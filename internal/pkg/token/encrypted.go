// internal/pkg/token/encrypted.go
package token

import (
	"crypto/rsa"
	"fmt"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	josejwt "github.com/go-jose/go-jose/v4/jwt"
	"github.com/oklog/ulid/v2"
)

// clock skew tolerated when validating encrypted token claims
const encryptedLeeway = 5 * time.Second

// Encryptor issues and opens fully encrypted tokens: a compact JWE whose
// content-encryption key is wrapped under the RSA public key (RSA-OAEP) and
// whose payload is sealed with A256GCM. Unlike the signed mode the payload
// is confidential, not just tamper evident.
type Encryptor struct {
	priv     *rsa.PrivateKey
	issuer   string
	audience string
	ttl      time.Duration
}

func NewEncryptor(priv *rsa.PrivateKey, issuer, audience string, ttl time.Duration) *Encryptor {
	return &Encryptor{
		priv:     priv,
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}
}

// Generate wraps the payload in an encrypted token with a fresh jti.
func (e *Encryptor) Generate(p *Payload) (string, error) {
	if e.priv == nil {
		return "", fmt.Errorf("token encryptor has nil private key")
	}

	enc, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.RSA_OAEP, Key: &e.priv.PublicKey},
		(&jose.EncrypterOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("init encrypter: %w", err)
	}

	now := time.Now()
	registered := josejwt.Claims{
		Issuer:   e.issuer,
		Subject:  "auth",
		Audience: josejwt.Audience{e.audience},
		IssuedAt: josejwt.NewNumericDate(now),
		Expiry:   josejwt.NewNumericDate(now.Add(e.ttl)),
		ID:       ulid.Make().String(),
	}

	return josejwt.Encrypted(enc).Claims(registered).Claims(p).Serialize()
}

// Decrypt opens and validates an encrypted token. It returns nil on any
// parse, decryption or claim failure: callers treat an invalid token as
// absent, not as an operational error.
func (e *Encryptor) Decrypt(tokenString string) *Payload {
	if e.priv == nil {
		return nil
	}

	parsed, err := josejwt.ParseEncrypted(tokenString,
		[]jose.KeyAlgorithm{jose.RSA_OAEP},
		[]jose.ContentEncryption{jose.A256GCM},
	)
	if err != nil {
		return nil
	}

	var registered josejwt.Claims
	var p Payload
	if err := parsed.Claims(e.priv, &registered, &p); err != nil {
		return nil
	}

	err = registered.ValidateWithLeeway(josejwt.Expected{
		Issuer:      e.issuer,
		AnyAudience: josejwt.Audience{e.audience},
		Time:        time.Now(),
	}, encryptedLeeway)
	if err != nil {
		return nil
	}

	return &p
}
