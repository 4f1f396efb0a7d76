package session

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCookieManager(t *testing.T, opts CookieOptions) *CookieManager {
	t.Helper()
	return NewCookieManager(newTestCodec(t), opts, zap.NewNop())
}

func TestCookieManagerRoundTrip(t *testing.T) {
	m := newTestCookieManager(t, CookieOptions{Name: "_session", Domain: "example.com"})
	state := sampleState()

	ck, err := m.EncodeOutgoing(state)
	require.NoError(t, err)

	got := m.DecodeIncoming(ck.Value)
	require.NotNil(t, got)
	assert.Equal(t, state, got)
}

func TestCookieManagerBadCookieMeansNoSession(t *testing.T) {
	m := newTestCookieManager(t, CookieOptions{})

	assert.Nil(t, m.DecodeIncoming(""))
	assert.Nil(t, m.DecodeIncoming("garbage"))
	assert.Nil(t, m.DecodeIncoming("YWJj.ZGVm"))
}

func TestCookieManagerAttributes(t *testing.T) {
	m := newTestCookieManager(t, CookieOptions{
		Name:   "_session",
		Domain: "example.com",
		Secure: true,
	})

	ck, err := m.EncodeOutgoing(sampleState())
	require.NoError(t, err)

	assert.Equal(t, "_session", ck.Name)
	assert.Equal(t, "example.com", ck.Domain)
	assert.Equal(t, "/", ck.Path)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, 3600, ck.MaxAge, "session MaxAge overrides the configured lifetime")
}

func TestCookieManagerDefaultMaxAge(t *testing.T) {
	m := newTestCookieManager(t, CookieOptions{})

	ck, err := m.EncodeOutgoing(&State{User: &UserState{ClientID: "c1"}})
	require.NoError(t, err)
	assert.Equal(t, int(DefaultMaxAge/time.Second), ck.MaxAge)
}

func TestCookieManagerNilStateClears(t *testing.T) {
	m := newTestCookieManager(t, CookieOptions{Name: "_session"})

	ck, err := m.EncodeOutgoing(nil)
	require.NoError(t, err)
	assert.Equal(t, "_session", ck.Name)
	assert.Empty(t, ck.Value)
	assert.Equal(t, -1, ck.MaxAge)
}
