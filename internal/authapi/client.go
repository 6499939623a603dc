// Package authapi is a stateless typed client for the external auth
// service. Every method is a single request/response round trip: no
// retries, no caching. Non-2xx responses are classified into the
// serviceerr taxonomy at this boundary.
package authapi

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
	"github.com/contexmem/console/internal/device"
	"github.com/contexmem/console/internal/serviceerr"
)

const maxErrorBody = 1 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
	devices    *device.Resolver
	userAgent  string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithUserAgent sets the user-agent string device info is derived from.
func WithUserAgent(ua string) Option {
	return func(cl *Client) { cl.userAgent = ua }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		devices:    device.NewResolver(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// RequestSignup starts a signup transaction for the address. The server
// mails an OTP and returns the transaction handle.
func (c *Client) RequestSignup(ctx context.Context, email string) (Transaction, error) {
	req := struct {
		Email      string      `json:"email"`
		DeviceInfo device.Info `json:"device_info"`
	}{Email: email, DeviceInfo: c.deviceInfo()}

	var txn Transaction
	if err := c.post(ctx, "/signup/request", req, &txn); err != nil {
		return Transaction{}, err
	}

	return txn, nil
}

// VerifyOTP confirms the emailed code for the transaction.
func (c *Client) VerifyOTP(ctx context.Context, transactionID, code string) error {
	req := struct {
		TransactionID string `json:"transaction_id"`
		Code          string `json:"code"`
	}{TransactionID: transactionID, Code: code}

	return c.post(ctx, "/otp/verify", req, nil)
}

// ResendOTP asks for a fresh code and returns the new expiry.
func (c *Client) ResendOTP(ctx context.Context, transactionID string) (Transaction, error) {
	req := struct {
		TransactionID string `json:"transaction_id"`
	}{TransactionID: transactionID}

	var resp Transaction
	if err := c.post(ctx, "/otp/resend", req, &resp); err != nil {
		return Transaction{}, err
	}

	resp.TransactionID = transactionID

	return resp, nil
}

// CompleteSignup finishes an OTP-verified signup with the profile fields
// and password, establishing a session.
func (c *Client) CompleteSignup(ctx context.Context, email, firstName, lastName, password, transactionID string) (LoginResult, error) {
	req := struct {
		User          User   `json:"user"`
		Password      string `json:"password"`
		TransactionID string `json:"transaction_id"`
	}{
		User:          User{Email: email, FirstName: firstName, LastName: lastName},
		Password:      password,
		TransactionID: transactionID,
	}

	var res LoginResult
	if err := c.post(ctx, "/signup/complete", req, &res); err != nil {
		return LoginResult{}, err
	}

	return res, nil
}

// RequestLogin checks the credentials and starts an OTP transaction.
func (c *Client) RequestLogin(ctx context.Context, email, password string) (Transaction, error) {
	req := struct {
		Email      string      `json:"email"`
		Password   string      `json:"password"`
		DeviceInfo device.Info `json:"device_info"`
	}{Email: email, Password: password, DeviceInfo: c.deviceInfo()}

	var txn Transaction
	if err := c.post(ctx, "/login/request", req, &txn); err != nil {
		return Transaction{}, err
	}

	return txn, nil
}

// CompleteLogin establishes the session for an OTP-verified login
// transaction.
func (c *Client) CompleteLogin(ctx context.Context, transactionID string) (LoginResult, error) {
	req := struct {
		TransactionID string `json:"transaction_id"`
	}{TransactionID: transactionID}

	var res LoginResult
	if err := c.post(ctx, "/login/complete", req, &res); err != nil {
		return LoginResult{}, err
	}

	return res, nil
}

// GoogleLogin exchanges a Google ID token for a session.
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (LoginResult, error) {
	req := struct {
		IDToken    string      `json:"id_token"`
		DeviceInfo device.Info `json:"device_info"`
	}{IDToken: idToken, DeviceInfo: c.deviceInfo()}

	var res LoginResult
	if err := c.post(ctx, "/google/login", req, &res); err != nil {
		return LoginResult{}, err
	}

	return res, nil
}

// Logout invalidates the session server-side. The auth service takes the
// identifiers as body fields, not headers.
func (c *Client) Logout(ctx context.Context, sess cookiestore.Session) error {
	return c.post(ctx, "/logout", sessionBody(sess), nil)
}

// CurrentSession returns the user the session belongs to.
func (c *Client) CurrentSession(ctx context.Context, sess cookiestore.Session) (User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.post(ctx, "/sessions/current", sessionBody(sess), &resp); err != nil {
		return User{}, err
	}

	return resp.User, nil
}

// AllSessions lists every device session of the account.
func (c *Client) AllSessions(ctx context.Context, sess cookiestore.Session) ([]SessionRecord, error) {
	req := struct {
		UserID     string      `json:"user_id"`
		SessionID  string      `json:"session_id"`
		DeviceInfo device.Info `json:"device_info"`
	}{UserID: sess.UserID, SessionID: sess.SessionID, DeviceInfo: c.deviceInfo()}

	var records []SessionRecord
	if err := c.post(ctx, "/sessions/all", req, &records); err != nil {
		return nil, err
	}

	return records, nil
}

// RevokeSession terminates another device session of the account.
func (c *Client) RevokeSession(ctx context.Context, _ cookiestore.Session, targetUserID, targetSessionID string) error {
	path := fmt.Sprintf("/sessions/%s/%s/revoke", url.PathEscape(targetUserID), url.PathEscape(targetSessionID))

	// The target travels in the path; the body is deliberately empty.
	return c.post(ctx, path, struct{}{}, nil)
}

// ValidateSession confirms the session is still accepted. The response
// carries a session only when the server rotated it.
func (c *Client) ValidateSession(ctx context.Context, sess cookiestore.Session) (*Session, error) {
	var resp struct {
		Session *Session `json:"session,omitempty"`
	}
	if err := c.post(ctx, "/sessions/validate-session", sessionBody(sess), &resp); err != nil {
		return nil, err
	}

	return resp.Session, nil
}

func sessionBody(sess cookiestore.Session) any {
	return struct {
		UserID    string `json:"user_id"`
		SessionID string `json:"session_id"`
	}{UserID: sess.UserID, SessionID: sess.SessionID}
}

func (c *Client) deviceInfo() device.Info {
	return c.devices.FromUserAgent(c.userAgent)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

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
