package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xerrors "sentra-auth/internal/pkg/errors"
	"sentra-auth/internal/pkg/session"
)

func samplePayload() *Payload {
	return &Payload{
		ClientID: "01J9ZX3BC4D5E6F7G8H9J0K1M2",
		Role:     "user",
		Provider: session.ProviderInfo{ID: "prov-1", Kind: session.ProviderLocal, Completed: true},
		TFA:      session.TFAStatus{Enabled: true, Authenticated: true},
	}
}

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner([]byte("test-secret"), "app-auth", "my-client", time.Hour)

	tok, err := s.Generate(samplePayload())
	require.NoError(t, err)
	assert.True(t, s.Verify(tok))

	p, err := s.Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, samplePayload(), p)
}

func TestSignerExpiredToken(t *testing.T) {
	s := NewSigner([]byte("test-secret"), "app-auth", "my-client", -time.Minute)

	tok, err := s.Generate(samplePayload())
	require.NoError(t, err)

	assert.False(t, s.Verify(tok))
	_, err = s.Decode(tok)
	assert.ErrorIs(t, err, xerrors.ErrTokenExpired)
}

func TestSignerRejectsWrongSecret(t *testing.T) {
	a := NewSigner([]byte("secret-a"), "app-auth", "my-client", time.Hour)
	b := NewSigner([]byte("secret-b"), "app-auth", "my-client", time.Hour)

	tok, err := a.Generate(samplePayload())
	require.NoError(t, err)

	assert.False(t, b.Verify(tok))
	_, err = b.Decode(tok)
	assert.ErrorIs(t, err, xerrors.ErrTokenInvalid)
}

func TestSignerRejectsWrongIssuerAndAudience(t *testing.T) {
	s := NewSigner([]byte("test-secret"), "app-auth", "my-client", time.Hour)
	tok, err := s.Generate(samplePayload())
	require.NoError(t, err)

	assert.False(t, NewSigner([]byte("test-secret"), "other-issuer", "my-client", time.Hour).Verify(tok))
	assert.False(t, NewSigner([]byte("test-secret"), "app-auth", "other-client", time.Hour).Verify(tok))
}

func TestSignerFreshJTIPerToken(t *testing.T) {
	s := NewSigner([]byte("test-secret"), "app-auth", "my-client", time.Hour)

	a, err := s.Generate(samplePayload())
	require.NoError(t, err)
	b, err := s.Generate(samplePayload())
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "each token must carry a unique jti")
}

func TestSignerMissingSecretIsFatal(t *testing.T) {
	s := NewSigner(nil, "app-auth", "my-client", time.Hour)
	_, err := s.Generate(samplePayload())
	assert.Error(t, err)
}

func TestSignerVerifyGarbage(t *testing.T) {
	s := NewSigner([]byte("test-secret"), "app-auth", "my-client", time.Hour)
	assert.False(t, s.Verify(""))
	assert.False(t, s.Verify("not.a.jwt"))
}
