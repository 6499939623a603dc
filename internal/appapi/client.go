// Package appapi is a typed client for the external app service: projects,
// API keys, billing and per-project preferences. Unlike the auth service,
// the app service takes the session identifiers as X-User-Id/X-Session-Id
// headers on every call.
package appapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/contexmem/console/internal/cookiestore"
	"github.com/contexmem/console/internal/serviceerr"
)

const maxErrorBody = 1 << 20

// SessionSource yields the current session for header attachment.
type SessionSource interface {
	Session() (cookiestore.Session, bool)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   SessionSource
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func NewClient(baseURL string, sessions SessionSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		sessions:   sessions,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, err
	}

	return projects, nil
}

func (c *Client) CreateProject(ctx context.Context, name, description string) (Project, error) {
	req := struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}{Name: name, Description: description}

	var project Project
	if err := c.do(ctx, http.MethodPost, "/projects", req, &project); err != nil {
		return Project{}, err
	}

	return project, nil
}

func (c *Client) RenameProject(ctx context.Context, projectID, name string) (Project, error) {
	req := struct {
		Name string `json:"name"`
	}{Name: name}

	var project Project
	if err := c.do(ctx, http.MethodPatch, "/projects/"+url.PathEscape(projectID), req, &project); err != nil {
		return Project{}, err
	}

	return project, nil
}

func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(projectID), nil, nil)
}

func (c *Client) ListAPIKeys(ctx context.Context, projectID string) ([]APIKey, error) {
	var keys []APIKey
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/keys", nil, &keys); err != nil {
		return nil, err
	}

	return keys, nil
}

func (c *Client) CreateAPIKey(ctx context.Context, projectID, name string) (CreatedAPIKey, error) {
	req := struct {
		Name string `json:"name"`
	}{Name: name}

	var key CreatedAPIKey
	if err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(projectID)+"/keys", req, &key); err != nil {
		return CreatedAPIKey{}, err
	}

	return key, nil
}

func (c *Client) RevokeAPIKey(ctx context.Context, projectID, keyID string) error {
	path := fmt.Sprintf("/projects/%s/keys/%s", url.PathEscape(projectID), url.PathEscape(keyID))

	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) Balance(ctx context.Context) (Balance, error) {
	var balance Balance
	if err := c.do(ctx, http.MethodGet, "/billing/balance", nil, &balance); err != nil {
		return Balance{}, err
	}

	return balance, nil
}

func (c *Client) TopUp(ctx context.Context, amountCents int64) (TopUpIntent, error) {
	req := struct {
		AmountCents int64 `json:"amount_cents"`
	}{AmountCents: amountCents}

	var intent TopUpIntent
	if err := c.do(ctx, http.MethodPost, "/billing/top-up", req, &intent); err != nil {
		return TopUpIntent{}, err
	}

	return intent, nil
}

func (c *Client) Preferences(ctx context.Context, projectID string) (Preferences, error) {
	var prefs Preferences
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/preferences", nil, &prefs); err != nil {
		return Preferences{}, err
	}

	return prefs, nil
}

func (c *Client) UpdatePreferences(ctx context.Context, projectID string, prefs Preferences) (Preferences, error) {
	var updated Preferences
	if err := c.do(ctx, http.MethodPut, "/projects/"+url.PathEscape(projectID)+"/preferences", prefs, &updated); err != nil {
		return Preferences{}, err
	}

	return updated, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	sess, ok := c.sessions.Session()
	if !ok {
		// Do not even attempt the call without a session.
		return &serviceerr.AuthError{Status: http.StatusUnauthorized, Message: serviceerr.ErrNoSession.Error()}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	req.Header.Set("X-User-Id", sess.UserID)
	req.Header.Set("X-Session-Id", sess.SessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &serviceerr.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &serviceerr.NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return serviceerr.FromResponse(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
	}

	return nil
}
