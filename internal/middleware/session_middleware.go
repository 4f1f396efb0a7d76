// internal/middleware/session_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sentra-auth/internal/pkg/session"
)

const sessionContextKey = "session_state"

// SessionMiddleware decodes the session cookie at request start and
// re-encrypts it at response construction. Handlers read the state through
// CurrentSession and commit mutations through SetSession / ClearSession.
type SessionMiddleware struct {
	cookies *session.CookieManager
	logger  *zap.Logger
}

func NewSessionMiddleware(cookies *session.CookieManager, logger *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{cookies: cookies, logger: logger}
}

// Handler attaches the decoded session to the request context. Undecodable
// cookies are treated as absent and actively cleared. A live session gets
// its refreshed cookie staged immediately; gin flushes headers on the first
// body write, so staging cannot wait until after the handler runs.
func (m *SessionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(m.cookies.Name())
		state := m.cookies.DecodeIncoming(raw)

		if state == nil {
			if raw != "" {
				m.stageCookie(c, m.cookies.ClearCookie())
			}
			c.Next()
			return
		}

		c.Set(sessionContextKey, state)

		ck, err := m.cookies.EncodeOutgoing(state)
		if err != nil {
			m.logger.Error("failed to refresh session cookie", zap.Error(err))
			m.stageCookie(c, m.cookies.ClearCookie())
			c.Next()
			return
		}
		m.stageCookie(c, ck)

		c.Next()
	}
}

// CurrentSession returns the decoded session for this request, or nil.
func CurrentSession(c *gin.Context) *session.State {
	v, exists := c.Get(sessionContextKey)
	if !exists {
		return nil
	}
	state, ok := v.(*session.State)
	if !ok {
		return nil
	}
	return state
}

// SetSession commits a mutated session: it replaces the staged Set-Cookie
// directive with a freshly encrypted one. Must be called before the
// response body is written.
func (m *SessionMiddleware) SetSession(c *gin.Context, state *session.State) error {
	ck, err := m.cookies.EncodeOutgoing(state)
	if err != nil {
		return err
	}
	c.Set(sessionContextKey, state)
	m.stageCookie(c, ck)
	return nil
}

// ClearSession removes the session cookie and drops the context state.
func (m *SessionMiddleware) ClearSession(c *gin.Context) {
	c.Set(sessionContextKey, (*session.State)(nil))
	m.stageCookie(c, m.cookies.ClearCookie())
}

// stageCookie replaces any staged Set-Cookie entry for our cookie name so a
// request never leaves with two conflicting session directives.
func (m *SessionMiddleware) stageCookie(c *gin.Context, ck *http.Cookie) {
	header := c.Writer.Header()
	existing := header["Set-Cookie"]
	if len(existing) > 0 {
		kept := existing[:0]
		prefix := m.cookies.Name() + "="
		for _, v := range existing {
			if !strings.HasPrefix(v, prefix) {
				kept = append(kept, v)
			}
		}
		header["Set-Cookie"] = kept
	}
	http.SetCookie(c.Writer, ck)
}
