// Package session owns the process-wide authenticated state: the current
// user, the cookie pair, and the background validation loop. It is an
// explicit object handed to its consumers, not ambient global state.
package session

import (
	"context"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/contexmem/console/internal/authapi"
	"github.com/contexmem/console/internal/cookiestore"
	"github.com/contexmem/console/internal/serviceerr"
)

// AuthAPI is the auth-service surface the manager delegates to.
// *authapi.Client satisfies it.
type AuthAPI interface {
	RequestSignup(ctx context.Context, email string) (authapi.Transaction, error)
	VerifyOTP(ctx context.Context, transactionID, code string) error
	ResendOTP(ctx context.Context, transactionID string) (authapi.Transaction, error)
	CompleteSignup(ctx context.Context, email, firstName, lastName, password, transactionID string) (authapi.LoginResult, error)
	RequestLogin(ctx context.Context, email, password string) (authapi.Transaction, error)
	CompleteLogin(ctx context.Context, transactionID string) (authapi.LoginResult, error)
	GoogleLogin(ctx context.Context, idToken string) (authapi.LoginResult, error)
	Logout(ctx context.Context, sess cookiestore.Session) error
	CurrentSession(ctx context.Context, sess cookiestore.Session) (authapi.User, error)
	AllSessions(ctx context.Context, sess cookiestore.Session) ([]authapi.SessionRecord, error)
	RevokeSession(ctx context.Context, sess cookiestore.Session, targetUserID, targetSessionID string) error
	ValidateSession(ctx context.Context, sess cookiestore.Session) (*authapi.Session, error)
}

type Manager struct {
	auth  AuthAPI
	store *cookiestore.Store

	mu      sync.Mutex
	user    *authapi.User
	loading bool
}

func NewManager(auth AuthAPI, store *cookiestore.Store) *Manager {
	return &Manager{
		auth:    auth,
		store:   store,
		loading: true,
	}
}

// Initialize resolves the stored session into a user, once per process.
// An auth rejection clears the cookies; any other failure leaves them in
// place so a transient outage does not log the user out.
func (m *Manager) Initialize(ctx context.Context) error {
	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	sess, ok := m.store.Session()
	if !ok {
		return nil
	}

	user, err := m.auth.CurrentSession(ctx, sess)
	if err != nil {
		if serviceerr.IsAuthError(err) {
			m.clear()
			return err
		}

		slogctx.Debug(ctx, "Could not resolve the stored session", "error", err)

		return err
	}

	m.adoptUser(user)

	return nil
}

// Loading reports whether Initialize has resolved yet.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.loading
}

// User returns the cached authenticated principal.
func (m *Manager) User() (authapi.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return authapi.User{}, false
	}

	return *m.user, true
}

// Session exposes the stored cookie pair; appapi uses this for header
// attachment.
func (m *Manager) Session() (cookiestore.Session, bool) {
	return m.store.Session()
}

func (m *Manager) IsAuthenticated() bool {
	return m.store.IsAuthenticated()
}

// RequestSignup through CompleteLogin are the pass-throughs the OTP state
// machine drives. The completion calls additionally write the session
// cookies and adopt the returned user.

func (m *Manager) RequestSignup(ctx context.Context, email string) (authapi.Transaction, error) {
	return m.auth.RequestSignup(ctx, email)
}

func (m *Manager) VerifyOTP(ctx context.Context, transactionID, code string) error {
	return m.auth.VerifyOTP(ctx, transactionID, code)
}

func (m *Manager) ResendOTP(ctx context.Context, transactionID string) (authapi.Transaction, error) {
	return m.auth.ResendOTP(ctx, transactionID)
}

func (m *Manager) RequestLogin(ctx context.Context, email, password string) (authapi.Transaction, error) {
	return m.auth.RequestLogin(ctx, email, password)
}

func (m *Manager) CompleteLogin(ctx context.Context, transactionID string) (authapi.LoginResult, error) {
	result, err := m.auth.CompleteLogin(ctx, transactionID)
	if err != nil {
		return authapi.LoginResult{}, err
	}

	m.adoptResult(result)

	return result, nil
}

func (m *Manager) CompleteSignup(ctx context.Context, email, firstName, lastName, password, transactionID string) (authapi.LoginResult, error) {
	result, err := m.auth.CompleteSignup(ctx, email, firstName, lastName, password, transactionID)
	if err != nil {
		return authapi.LoginResult{}, err
	}

	m.adoptResult(result)

	return result, nil
}

func (m *Manager) GoogleLogin(ctx context.Context, idToken string) (authapi.LoginResult, error) {
	result, err := m.auth.GoogleLogin(ctx, idToken)
	if err != nil {
		return authapi.LoginResult{}, err
	}

	m.adoptResult(result)

	return result, nil
}

// Logout invalidates the session server-side and clears the local state
// regardless of the server's answer.
func (m *Manager) Logout(ctx context.Context) error {
	sess, ok := m.store.Session()
	if !ok {
		return nil
	}

	err := m.auth.Logout(ctx, sess)
	m.clear()

	return err
}

func (m *Manager) AllSessions(ctx context.Context) ([]authapi.SessionRecord, error) {
	sess, ok := m.store.Session()
	if !ok {
		return nil, serviceerr.ErrNoSession
	}

	return m.auth.AllSessions(ctx, sess)
}

func (m *Manager) RevokeSession(ctx context.Context, targetUserID, targetSessionID string) error {
	sess, ok := m.store.Session()
	if !ok {
		return serviceerr.ErrNoSession
	}

	return m.auth.RevokeSession(ctx, sess, targetUserID, targetSessionID)
}

// Validate performs one validation round. An auth rejection destroys the
// local session; a rotated session_id is adopted with user_id unchanged;
// anything else (network, 5xx) is reported but treated as transient by the
// caller.
func (m *Manager) Validate(ctx context.Context) error {
	sess, ok := m.store.Session()
	if !ok {
		return nil
	}

	rotated, err := m.auth.ValidateSession(ctx, sess)
	if err != nil {
		if serviceerr.IsAuthError(err) {
			m.clear()
		}

		return err
	}

	if rotated != nil && rotated.SessionID != "" {
		m.store.SetSessionID(rotated.SessionID)
	}

	return nil
}

func (m *Manager) adoptResult(result authapi.LoginResult) {
	m.store.SetSession(result.Session.UserID, result.Session.SessionID)
	m.adoptUser(result.User)
}

func (m *Manager) adoptUser(user authapi.User) {
	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()
}

func (m *Manager) clear() {
	m.store.Clear()

	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
}
