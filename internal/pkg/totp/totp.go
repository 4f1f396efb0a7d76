// internal/pkg/totp/totp.go
package totp

import (
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	secretSize = 20 // bytes, 160 bits
	period     = 30 // seconds per time step
)

// Secret is a freshly generated 2FA secret in the encodings callers need:
// base32 for authenticator apps and persistence, hex/raw for legacy
// integrations, plus the otpauth provisioning URL.
type Secret struct {
	Raw        string `json:"-"`
	Hex        string `json:"hex"`
	Base32     string `json:"base32"`
	OtpauthURL string `json:"otpauth_url"`
}

// Manager generates per-user TOTP secrets and verifies submitted codes.
// It holds no per-user state; the caller owns persistence and the
// pending → enabled lifecycle.
type Manager struct {
	issuer string
}

func NewManager(issuer string) *Manager {
	return &Manager{issuer: issuer}
}

// Generate produces a new random secret for the given account name.
func (m *Manager) Generate(account string) (*Secret, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.issuer,
		AccountName: account,
		SecretSize:  secretSize,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(key.Secret())
	if err != nil {
		return nil, fmt.Errorf("decode totp secret: %w", err)
	}

	return &Secret{
		Raw:        string(raw),
		Hex:        hex.EncodeToString(raw),
		Base32:     key.Secret(),
		OtpauthURL: key.URL(),
	}, nil
}

// Verify checks a 6-digit code against the base32 secret, tolerating one
// time step of drift in either direction. Mismatch is a boolean outcome,
// never an error.
func (m *Manager) Verify(base32Secret, code string) bool {
	return m.verifyAt(base32Secret, code, time.Now().UTC())
}

func (m *Manager) verifyAt(base32Secret, code string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, base32Secret, at, totp.ValidateOpts{
		Period:    period,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
