package session_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contexmem/console/internal/authapi"
	"github.com/contexmem/console/internal/config"
	"github.com/contexmem/console/internal/cookiestore"
	"github.com/contexmem/console/internal/flow"
	"github.com/contexmem/console/internal/serviceerr"
	"github.com/contexmem/console/internal/session"
	sessionmock "github.com/contexmem/console/internal/session/mock"
)

func newStore() *cookiestore.Store {
	return cookiestore.New(cookiestore.NewMemoryJar(), config.Session{ExpirationDays: 7})
}

func TestInitializeWithoutSession(t *testing.T) {
	auth := &sessionmock.AuthAPI{}
	m := session.NewManager(auth, newStore())
	require.True(t, m.Loading())

	require.NoError(t, m.Initialize(context.Background()))
	assert.False(t, m.Loading())
	assert.Zero(t, auth.CurrentSessionCalls, "no stored session, no lookup")

	_, ok := m.User()
	assert.False(t, ok)
}

func TestInitializeResolvesUser(t *testing.T) {
	auth := &sessionmock.AuthAPI{
		CurrentSessionFn: func(_ context.Context, sess cookiestore.Session) (authapi.User, error) {
			assert.Equal(t, "u1", sess.UserID)
			assert.Equal(t, "s1", sess.SessionID)
			return authapi.User{Email: "a@b.com"}, nil
		},
	}

	store := newStore()
	store.SetSession("u1", "s1")

	m := session.NewManager(auth, store)
	require.NoError(t, m.Initialize(context.Background()))

	user, ok := m.User()
	require.True(t, ok)
	assert.Equal(t, "a@b.com", user.Email)
	assert.True(t, m.IsAuthenticated())
}

func TestInitializeAuthRejectionClearsSession(t *testing.T) {
	auth := &sessionmock.AuthAPI{
		CurrentSessionFn: func(context.Context, cookiestore.Session) (authapi.User, error) {
			return authapi.User{}, &serviceerr.AuthError{Status: http.StatusUnauthorized, Message: "expired"}
		},
	}

	store := newStore()
	store.SetSession("u1", "s1")

	m := session.NewManager(auth, store)
	err := m.Initialize(context.Background())
	require.Error(t, err)
	assert.False(t, store.IsAuthenticated())
	assert.False(t, m.Loading())
}

func TestInitializeTransientErrorKeepsSession(t *testing.T) {
	auth := &sessionmock.AuthAPI{
		CurrentSessionFn: func(context.Context, cookiestore.Session) (authapi.User, error) {
			return authapi.User{}, &serviceerr.NetworkError{Err: errors.New("connection refused")}
		},
	}

	store := newStore()
	store.SetSession("u1", "s1")

	m := session.NewManager(auth, store)
	err := m.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, store.IsAuthenticated(), "transient failure must not log the user out")
}

func TestCompleteLoginAdoptsSession(t *testing.T) {
	auth := &sessionmock.AuthAPI{
		CompleteLoginFn: func(_ context.Context, transactionID string) (authapi.LoginResult, error) {
			require.Equal(t, "t1", transactionID)
			return authapi.LoginResult{
				User:    authapi.User{Email: "a@b.com"},
				Session: authapi.Session{UserID: "u1", SessionID: "s1"},
			}, nil
		},
	}

	store := newStore()
	m := session.NewManager(auth, store)

	_, err := m.CompleteLogin(context.Background(), "t1")
	require.NoError(t, err)

	sess, ok := m.Session()
	require.True(t, ok)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "s1", sess.SessionID)

	user, ok := m.User()
	require.True(t, ok)
	assert.Equal(t, "a@b.com", user.Email)
}

func TestCompleteLoginFailureAdoptsNothing(t *testing.T) {
	auth := &sessionmock.AuthAPI{
		CompleteLoginFn: func(context.Context, string) (authapi.LoginResult, error) {
			return authapi.LoginResult{}, &serviceerr.ServerError{Status: http.StatusInternalServerError}
		},
	}

	m := session.NewManager(auth, newStore())

	_, err := m.CompleteLogin(context.Background(), "t1")
	require.Error(t, err)
	assert.False(t, m.IsAuthenticated())
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	auth := &sessionmock.AuthAPI{
		LogoutFn: func(context.Context, cookiestore.Session) error {
			return &serviceerr.ServerError{Status: http.StatusInternalServerError}
		},
	}

	store := newStore()
	store.SetSession("u1", "s1")

	m := session.NewManager(auth, store)
	err := m.Logout(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, auth.LogoutCalls)
	assert.False(t, store.IsAuthenticated())
}

func TestLogoutWithoutSessionIsNoop(t *testing.T) {
	auth := &sessionmock.AuthAPI{}
	m := session.NewManager(auth, newStore())

	require.NoError(t, m.Logout(context.Background()))
	assert.Zero(t, auth.LogoutCalls)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		response      *authapi.Session
		err           error
		wantErr       bool
		wantSessionID string
		wantCleared   bool
	}{
		{
			name:          "accepted unchanged",
			wantSessionID: "s1",
		},
		{
			name:          "rotated session id adopted",
			response:      &authapi.Session{UserID: "u1", SessionID: "s2"},
			wantSessionID: "s2",
		},
		{
			name:        "auth rejection destroys session",
			err:         &serviceerr.AuthError{Status: http.StatusUnauthorized, Message: "revoked"},
			wantErr:     true,
			wantCleared: true,
		},
		{
			name:          "server error keeps session",
			err:           &serviceerr.ServerError{Status: http.StatusInternalServerError},
			wantErr:       true,
			wantSessionID: "s1",
		},
		{
			name:          "network error keeps session",
			err:           &serviceerr.NetworkError{Err: errors.New("timeout")},
			wantErr:       true,
			wantSessionID: "s1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &sessionmock.AuthAPI{
				ValidateSessionFn: func(context.Context, cookiestore.Session) (*authapi.Session, error) {
					return tt.response, tt.err
				},
			}

			store := newStore()
			store.SetSession("u1", "s1")

			m := session.NewManager(auth, store)
			err := m.Validate(context.Background())

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			if tt.wantCleared {
				assert.False(t, store.IsAuthenticated())
				return
			}

			sess, ok := store.Session()
			require.True(t, ok)
			assert.Equal(t, "u1", sess.UserID, "user_id never changes on rotation")
			assert.Equal(t, tt.wantSessionID, sess.SessionID)
		})
	}
}

func TestLoginFlowEstablishesSession(t *testing.T) {
	ctx := context.Background()

	auth := &sessionmock.AuthAPI{
		RequestLoginFn: func(context.Context, string, string) (authapi.Transaction, error) {
			return authapi.Transaction{TransactionID: "t1"}, nil
		},
		CompleteLoginFn: func(context.Context, string) (authapi.LoginResult, error) {
			return authapi.LoginResult{
				User:    authapi.User{Email: "a@b.com"},
				Session: authapi.Session{UserID: "u1", SessionID: "s1"},
			}, nil
		},
	}

	store := newStore()
	m := session.NewManager(auth, store)

	// the manager is the flow's authenticator, so completion writes the
	// cookies and caches the user in one step
	f := flow.NewLogin(m)
	require.NoError(t, f.SubmitEmail(ctx, "a@b.com"))
	require.NoError(t, f.SubmitPassword(ctx, "correct"))
	require.NoError(t, f.SubmitOTP(ctx, "123456"))

	assert.True(t, store.IsAuthenticated())

	sess, ok := store.Session()
	require.True(t, ok)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "s1", sess.SessionID)

	user, ok := m.User()
	require.True(t, ok)
	assert.Equal(t, "a@b.com", user.Email)
}

func TestValidateWithoutSessionSkipsCall(t *testing.T) {
	auth := &sessionmock.AuthAPI{}
	m := session.NewManager(auth, newStore())

	require.NoError(t, m.Validate(context.Background()))
	assert.Zero(t, auth.ValidateSessionCalls)
}

func TestAllSessionsRequiresSession(t *testing.T) {
	m := session.NewManager(&sessionmock.AuthAPI{}, newStore())

	_, err := m.AllSessions(context.Background())
	assert.ErrorIs(t, err, serviceerr.ErrNoSession)

	err = m.RevokeSession(context.Background(), "u2", "s9")
	assert.ErrorIs(t, err, serviceerr.ErrNoSession)
}
