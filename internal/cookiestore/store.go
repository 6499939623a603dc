// Package cookiestore is the durable client-side store for the two session
// identifiers. The pair of cookies is the whole persisted state: either both
// are present (authenticated) or both absent, no partial state is valid.
package cookiestore

import (
	"net/http"

	"github.com/contexmem/console/internal/config"
)

const (
	UserIDCookie    = "user_id"
	SessionIDCookie = "session_id"
)

// Session is the (user_id, session_id) pair identifying an authenticated
// device session.
type Session struct {
	UserID    string
	SessionID string
}

// Jar is the cookie medium. Implementations mimic browser semantics:
// removal silently no-ops unless the removal cookie's path and domain match
// the stored one, and expired cookies are not returned.
type Jar interface {
	Set(c *http.Cookie) error
	Get(name string) (*http.Cookie, bool)
	Remove(c *http.Cookie) error
}

// Store writes and reads the session cookie pair with fixed attributes
// (SameSite=Strict, Secure, Path=/, configurable expiration).
type Store struct {
	jar     Jar
	userTpl config.CookieTemplate
	sessTpl config.CookieTemplate
}

func New(jar Jar, cfg config.Session) *Store {
	return &Store{
		jar:     jar,
		userTpl: cfg.SessionCookieTemplate(UserIDCookie),
		sessTpl: cfg.SessionCookieTemplate(SessionIDCookie),
	}
}

// SetSession writes both cookies. The two writes are independent and there
// is no rollback if the second one fails; write failures are not surfaced,
// matching the browser behaviour where storage errors go unreported.
func (s *Store) SetSession(userID, sessionID string) {
	_ = s.jar.Set(s.userTpl.ToCookie(userID))
	_ = s.jar.Set(s.sessTpl.ToCookie(sessionID))
}

// SetSessionID replaces only the session_id cookie. Used when the backend
// rotates the session during validation; user_id is left untouched.
func (s *Store) SetSessionID(sessionID string) {
	_ = s.jar.Set(s.sessTpl.ToCookie(sessionID))
}

// Session returns the stored pair. ok is false unless both cookies are
// present and non-empty.
func (s *Store) Session() (Session, bool) {
	userCookie, ok := s.jar.Get(UserIDCookie)
	if !ok || userCookie.Value == "" {
		return Session{}, false
	}

	sessCookie, ok := s.jar.Get(SessionIDCookie)
	if !ok || sessCookie.Value == "" {
		return Session{}, false
	}

	return Session{UserID: userCookie.Value, SessionID: sessCookie.Value}, true
}

// Clear removes both cookies. Removal reuses the creation attributes, since
// a mismatched path or domain makes browsers ignore the removal.
func (s *Store) Clear() {
	_ = s.jar.Remove(s.userTpl.ToExpiredCookie())
	_ = s.jar.Remove(s.sessTpl.ToExpiredCookie())
}

// IsAuthenticated reports whether both cookies are present.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Session()
	return ok
}
