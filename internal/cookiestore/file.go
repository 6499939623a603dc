package cookiestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path"`
	Domain   string    `json:"domain,omitempty"`
	Secure   bool      `json:"secure"`
	HTTPOnly bool      `json:"http_only"`
	SameSite string    `json:"same_site"`
	Expires  time.Time `json:"expires,omitempty"`
}

// FileJar persists cookies to a JSON file so the CLI keeps its session
// across invocations. The file is created with mode 0600.
type FileJar struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewFileJar(path string) (*FileJar, error) {
	if path == "" {
		return nil, errors.New("cookie file path is empty")
	}

	path = os.ExpandEnv(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating cookie file directory: %w", err)
	}

	return &FileJar{path: path, now: time.Now}, nil
}

func (j *FileJar) Set(c *http.Cookie) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	cookies, err := j.load()
	if err != nil {
		return err
	}

	fc := fileCookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Domain:   c.Domain,
		Secure:   c.Secure,
		HTTPOnly: c.HttpOnly,
		SameSite: sameSiteName(c.SameSite),
	}
	if c.MaxAge > 0 {
		fc.Expires = j.now().Add(time.Duration(c.MaxAge) * time.Second)
	}

	cookies[c.Name] = fc

	return j.save(cookies)
}

func (j *FileJar) Get(name string) (*http.Cookie, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	cookies, err := j.load()
	if err != nil {
		return nil, false
	}

	fc, ok := cookies[name]
	if !ok {
		return nil, false
	}
	if !fc.Expires.IsZero() && j.now().After(fc.Expires) {
		delete(cookies, name)
		_ = j.save(cookies)

		return nil, false
	}

	return &http.Cookie{
		Name:     fc.Name,
		Value:    fc.Value,
		Path:     fc.Path,
		Domain:   fc.Domain,
		Secure:   fc.Secure,
		HttpOnly: fc.HTTPOnly,
	}, true
}

func (j *FileJar) Remove(c *http.Cookie) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	cookies, err := j.load()
	if err != nil {
		return err
	}

	fc, ok := cookies[c.Name]
	if !ok {
		return nil
	}
	if fc.Path != c.Path || fc.Domain != c.Domain {
		return nil
	}

	delete(cookies, c.Name)

	return j.save(cookies)
}

func (j *FileJar) load() (map[string]fileCookie, error) {
	data, err := os.ReadFile(j.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]fileCookie), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cookie file: %w", err)
	}

	cookies := make(map[string]fileCookie)
	if err := json.Unmarshal(data, &cookies); err != nil {
		// A corrupt jar behaves like an empty one rather than wedging the CLI.
		return make(map[string]fileCookie), nil
	}

	return cookies, nil
}

func (j *FileJar) save(cookies map[string]fileCookie) error {
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cookie file: %w", err)
	}

	if err := os.WriteFile(j.path, data, 0o600); err != nil {
		return fmt.Errorf("writing cookie file: %w", err)
	}

	return nil
}

func sameSiteName(s http.SameSite) string {
	switch s {
	case http.SameSiteStrictMode:
		return "strict"
	case http.SameSiteLaxMode:
		return "lax"
	case http.SameSiteNoneMode:
		return "none"
	default:
		return ""
	}
}
