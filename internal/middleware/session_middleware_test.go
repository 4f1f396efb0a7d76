package middleware

import (
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sentra-auth/internal/pkg/session"
)

func newTestCookies(t *testing.T) *session.CookieManager {
	t.Helper()

	cipherKey := make([]byte, 32)
	macKey := make([]byte, 64)
	_, err := rand.Read(cipherKey)
	require.NoError(t, err)
	_, err = rand.Read(macKey)
	require.NoError(t, err)

	codec, err := session.NewCodec(cipherKey, macKey)
	require.NoError(t, err)

	return session.NewCookieManager(codec, session.CookieOptions{Name: "_session"}, zap.NewNop())
}

func testState() *session.State {
	return &session.State{
		User: &session.UserState{
			ClientID: "c1",
			Role:     "user",
			Provider: session.ProviderInfo{Kind: session.ProviderLocal, Completed: true},
		},
	}
}

func sessionCookies(rec *httptest.ResponseRecorder) []string {
	var out []string
	for _, v := range rec.Header().Values("Set-Cookie") {
		if strings.HasPrefix(v, "_session=") {
			out = append(out, v)
		}
	}
	return out
}

func newTestEngine(t *testing.T) (*gin.Engine, *SessionMiddleware, *session.CookieManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cookies := newTestCookies(t)
	mw := NewSessionMiddleware(cookies, zap.NewNop())

	r := gin.New()
	r.Use(mw.Handler())
	return r, mw, cookies
}

func TestAnonymousRequestGetsNoCookie(t *testing.T) {
	r, _, _ := newTestEngine(t)
	r.GET("/x", func(c *gin.Context) {
		assert.Nil(t, CurrentSession(c))
		c.JSON(http.StatusOK, gin.H{})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Empty(t, sessionCookies(rec))
}

func TestValidCookieDecodesAndRefreshes(t *testing.T) {
	r, _, cookies := newTestEngine(t)
	r.GET("/x", func(c *gin.Context) {
		state := CurrentSession(c)
		require.NotNil(t, state)
		assert.Equal(t, "c1", state.User.ClientID)
		c.JSON(http.StatusOK, gin.H{})
	})

	ck, err := cookies.EncodeOutgoing(testState())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	staged := sessionCookies(rec)
	require.Len(t, staged, 1)
	assert.NotContains(t, staged[0], "Max-Age=0")
}

func TestGarbageCookieIsCleared(t *testing.T) {
	r, _, _ := newTestEngine(t)
	r.GET("/x", func(c *gin.Context) {
		assert.Nil(t, CurrentSession(c))
		c.JSON(http.StatusOK, gin.H{})
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: "_session", Value: "not.a-session"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	staged := sessionCookies(rec)
	require.Len(t, staged, 1)
	assert.Contains(t, staged[0], "Max-Age=0", "clearing directive expected")
}

func TestSetSessionReplacesStagedCookie(t *testing.T) {
	r, mw, cookies := newTestEngine(t)
	r.GET("/x", func(c *gin.Context) {
		state := CurrentSession(c)
		require.NotNil(t, state)
		state.User.TFA = session.TFAStatus{Enabled: true, Authenticated: true}
		require.NoError(t, mw.SetSession(c, state))
		c.JSON(http.StatusOK, gin.H{})
	})

	ck, err := cookies.EncodeOutgoing(testState())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// exactly one directive survives, and it decodes to the mutated state
	staged := sessionCookies(rec)
	require.Len(t, staged, 1)

	value := strings.TrimPrefix(strings.SplitN(staged[0], ";", 2)[0], "_session=")
	decoded := cookies.DecodeIncoming(value)
	require.NotNil(t, decoded)
	assert.True(t, decoded.User.TFA.Authenticated)
}

func TestClearSessionStagesRemoval(t *testing.T) {
	r, mw, cookies := newTestEngine(t)
	r.POST("/logout", func(c *gin.Context) {
		mw.ClearSession(c)
		assert.Nil(t, CurrentSession(c))
		c.JSON(http.StatusOK, gin.H{})
	})

	ck, err := cookies.EncodeOutgoing(testState())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(ck)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	staged := sessionCookies(rec)
	require.Len(t, staged, 1)
	assert.Contains(t, staged[0], "Max-Age=0")
}
