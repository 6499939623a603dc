package cookiestore

import (
	"net/http"
	"sync"
	"time"
)

type storedCookie struct {
	cookie  http.Cookie
	expires time.Time // zero means no expiry
}

// MemoryJar is an in-memory Jar. It is used by tests and by short-lived
// flows that should not touch the cookie file.
type MemoryJar struct {
	mu      sync.Mutex
	cookies map[string]storedCookie
	now     func() time.Time
}

func NewMemoryJar() *MemoryJar {
	return &MemoryJar{
		cookies: make(map[string]storedCookie),
		now:     time.Now,
	}
}

// SetClock replaces the time source; tests use it to force expiry.
func (j *MemoryJar) SetClock(now func() time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.now = now
}

func (j *MemoryJar) Set(c *http.Cookie) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var expires time.Time
	if c.MaxAge > 0 {
		expires = j.now().Add(time.Duration(c.MaxAge) * time.Second)
	}

	j.cookies[c.Name] = storedCookie{cookie: *c, expires: expires}

	return nil
}

func (j *MemoryJar) Get(name string) (*http.Cookie, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	sc, ok := j.cookies[name]
	if !ok {
		return nil, false
	}
	if !sc.expires.IsZero() && j.now().After(sc.expires) {
		delete(j.cookies, name)
		return nil, false
	}

	c := sc.cookie

	return &c, true
}

func (j *MemoryJar) Remove(c *http.Cookie) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	sc, ok := j.cookies[c.Name]
	if !ok {
		return nil
	}
	// Browsers match removal against path and domain; a mismatch no-ops.
	if sc.cookie.Path != c.Path || sc.cookie.Domain != c.Domain {
		return nil
	}

	delete(j.cookies, c.Name)

	return nil
}
