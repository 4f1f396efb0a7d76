// internal/pkg/session/cookie.go
package session

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const DefaultMaxAge = 7 * 24 * time.Hour

// CookieOptions configures the session cookie attributes.
type CookieOptions struct {
	Name   string
	Domain string
	Path   string
	Secure bool
	MaxAge time.Duration
}

// CookieManager is the two-phase boundary between HTTP and the codec:
// DecodeIncoming at request start, EncodeOutgoing at response construction.
type CookieManager struct {
	codec  *Codec
	opts   CookieOptions
	logger *zap.Logger
}

func NewCookieManager(codec *Codec, opts CookieOptions, logger *zap.Logger) *CookieManager {
	if opts.Name == "" {
		opts.Name = "_session"
	}
	if opts.Path == "" {
		opts.Path = "/"
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	return &CookieManager{codec: codec, opts: opts, logger: logger}
}

func (m *CookieManager) Name() string {
	return m.opts.Name
}

// DecodeIncoming turns a raw cookie value into a session state. Any decode
// failure means "no session": fail open to anonymous, never to a forged
// identity. The caller should clear the cookie when nil comes back for a
// non-empty input.
func (m *CookieManager) DecodeIncoming(raw string) *State {
	if raw == "" {
		return nil
	}
	s, err := m.codec.Decrypt(raw)
	if err != nil {
		m.logger.Warn("invalid session cookie, clearing", zap.Error(err))
		return nil
	}
	return s
}

// EncodeOutgoing re-encrypts the session into a Set-Cookie directive. A nil
// state yields a clearing cookie. Encode failure is a hard error: the
// subsystem is asserting this should work.
func (m *CookieManager) EncodeOutgoing(s *State) (*http.Cookie, error) {
	if s == nil {
		return m.ClearCookie(), nil
	}

	value, err := m.codec.Encrypt(s)
	if err != nil {
		return nil, err
	}

	maxAge := m.opts.MaxAge
	if s.MaxAge > 0 {
		maxAge = time.Duration(s.MaxAge) * time.Second
	}

	ck := &http.Cookie{
		Name:     m.opts.Name,
		Value:    value,
		Path:     m.opts.Path,
		Domain:   m.opts.Domain,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.Expires != nil {
		ck.Expires = *s.Expires
	}
	return ck, nil
}

// ClearCookie returns a directive that removes any existing session cookie.
func (m *CookieManager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.opts.Name,
		Value:    "",
		Path:     m.opts.Path,
		Domain:   m.opts.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
