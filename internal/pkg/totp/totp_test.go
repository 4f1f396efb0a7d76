package totp

import (
	"encoding/base32"
	"encoding/hex"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codeAt(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    period,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestGenerateEncodings(t *testing.T) {
	m := NewManager("sentra-auth")

	secret, err := m.Generate("user@example.com")
	require.NoError(t, err)

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret.Base32)
	require.NoError(t, err)
	assert.Len(t, raw, 20, "secret must be at least 160 bits")
	assert.Equal(t, string(raw), secret.Raw)
	assert.Equal(t, hex.EncodeToString(raw), secret.Hex)
	assert.Contains(t, secret.OtpauthURL, "otpauth://totp/")
	assert.Contains(t, secret.OtpauthURL, "sentra-auth")
}

func TestGenerateFreshSecrets(t *testing.T) {
	m := NewManager("sentra-auth")

	a, err := m.Generate("user@example.com")
	require.NoError(t, err)
	b, err := m.Generate("user@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, a.Base32, b.Base32)
}

func TestVerifyDriftTolerance(t *testing.T) {
	m := NewManager("sentra-auth")
	secret, err := m.Generate("user@example.com")
	require.NoError(t, err)

	now := time.Now().UTC()

	assert.True(t, m.verifyAt(secret.Base32, codeAt(t, secret.Base32, now), now))
	assert.True(t, m.verifyAt(secret.Base32, codeAt(t, secret.Base32, now.Add(-period*time.Second)), now),
		"code from the immediately preceding step must be accepted")
	assert.True(t, m.verifyAt(secret.Base32, codeAt(t, secret.Base32, now.Add(period*time.Second)), now))
	assert.False(t, m.verifyAt(secret.Base32, codeAt(t, secret.Base32, now.Add(-3*period*time.Second)), now),
		"code from several steps away must be rejected")
}

func TestVerifyMismatchIsFalseNotError(t *testing.T) {
	m := NewManager("sentra-auth")
	secret, err := m.Generate("user@example.com")
	require.NoError(t, err)

	assert.False(t, m.Verify(secret.Base32, "000000"))
	assert.False(t, m.Verify(secret.Base32, "not-a-code"))
	assert.False(t, m.Verify("not-base32!!", "123456"))
}
