package flow_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contexmem/console/internal/authapi"
	"github.com/contexmem/console/internal/flow"
	flowmock "github.com/contexmem/console/internal/flow/mock"
	"github.com/contexmem/console/internal/serviceerr"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestLoginFlow(t *testing.T) {
	ctx := context.Background()
	clock := newClock()

	auth := &flowmock.Authenticator{
		RequestLoginFn: func(_ context.Context, email, password string) (authapi.Transaction, error) {
			if password != "hunter2" {
				return authapi.Transaction{}, &serviceerr.AuthError{Status: http.StatusUnauthorized, Message: "bad credentials"}
			}
			return authapi.Transaction{TransactionID: "t1", OTPExpiresAt: clock.Now().Add(5 * time.Minute)}, nil
		},
		VerifyOTPFn: func(_ context.Context, transactionID, code string) error {
			require.Equal(t, "t1", transactionID)
			if code != "123456" {
				return &serviceerr.ValidationError{Message: "wrong code"}
			}
			return nil
		},
		CompleteLoginFn: func(_ context.Context, transactionID string) (authapi.LoginResult, error) {
			require.Equal(t, "t1", transactionID)
			return authapi.LoginResult{
				User:    authapi.User{Email: "a@b.com"},
				Session: authapi.Session{UserID: "u1", SessionID: "s1"},
			}, nil
		},
	}

	f := flow.NewLogin(auth, flow.WithClock(clock.Now))
	require.Equal(t, flow.StepEmail, f.Step())

	// email is validated locally, no server call
	require.NoError(t, f.SubmitEmail(ctx, "a@b.com"))
	assert.Equal(t, flow.StepPassword, f.Step())
	assert.Zero(t, auth.RequestLoginCalls.Load())

	// wrong password stays on the step, no transaction yet
	err := f.SubmitPassword(ctx, "wrong")
	require.Error(t, err)
	assert.True(t, serviceerr.IsAuthError(err))
	assert.Equal(t, flow.StepPassword, f.Step())
	assert.NotEmpty(t, f.Message())
	assert.Zero(t, f.SecondsRemaining())

	require.NoError(t, f.SubmitPassword(ctx, "hunter2"))
	assert.Equal(t, flow.StepOTP, f.Step())
	assert.Empty(t, f.Message())
	assert.Equal(t, 300, f.SecondsRemaining())

	// wrong code stays on the otp step
	err = f.SubmitOTP(ctx, "000000")
	require.Error(t, err)
	assert.Equal(t, flow.StepOTP, f.Step())
	assert.NotEmpty(t, f.Message())

	require.NoError(t, f.SubmitOTP(ctx, "123456"))
	assert.Equal(t, flow.StepComplete, f.Step())

	result, done := f.Result()
	require.True(t, done)
	assert.Equal(t, "u1", result.Session.UserID)
	assert.Equal(t, "s1", result.Session.SessionID)
	assert.Equal(t, "a@b.com", result.User.Email)
}

func TestSignupFlow(t *testing.T) {
	ctx := context.Background()
	clock := newClock()

	auth := &flowmock.Authenticator{
		RequestSignupFn: func(_ context.Context, email string) (authapi.Transaction, error) {
			require.Equal(t, "new@b.com", email)
			return authapi.Transaction{TransactionID: "t2", OTPExpiresAt: clock.Now().Add(5 * time.Minute)}, nil
		},
		CompleteSignupFn: func(_ context.Context, email, firstName, lastName, password, transactionID string) (authapi.LoginResult, error) {
			assert.Equal(t, "new@b.com", email)
			assert.Equal(t, "Ada", firstName)
			assert.Equal(t, "t2", transactionID)
			return authapi.LoginResult{Session: authapi.Session{UserID: "u2", SessionID: "s2"}}, nil
		},
	}

	f := flow.NewSignup(auth, flow.WithClock(clock.Now))

	require.NoError(t, f.SubmitEmail(ctx, "new@b.com"))
	assert.Equal(t, flow.StepOTP, f.Step())
	assert.EqualValues(t, 1, auth.RequestSignupCalls.Load())

	require.NoError(t, f.SubmitOTP(ctx, "123456"))
	assert.Equal(t, flow.StepUserInfo, f.Step())
	// signup must not complete the login transaction
	assert.Zero(t, auth.CompleteLoginCalls.Load())

	// mismatched confirmation is rejected before any request
	err := f.SubmitUserInfo(ctx, "Ada", "B", "pw1", "pw2")
	require.Error(t, err)
	assert.Equal(t, flow.StepUserInfo, f.Step())
	assert.Zero(t, auth.CompleteSignupCalls.Load())

	require.NoError(t, f.SubmitUserInfo(ctx, "Ada", "B", "pw1", "pw1"))
	assert.Equal(t, flow.StepComplete, f.Step())

	result, done := f.Result()
	require.True(t, done)
	assert.Equal(t, "u2", result.Session.UserID)
}

func TestSubmitEmailRejectsInvalid(t *testing.T) {
	auth := &flowmock.Authenticator{}
	f := flow.NewSignup(auth)

	for _, email := range []string{"", "   ", "not-an-address"} {
		err := f.SubmitEmail(context.Background(), email)
		require.Error(t, err)
		assert.Equal(t, flow.StepEmail, f.Step())
	}
	assert.Zero(t, auth.RequestSignupCalls.Load())
}

func TestInvalidTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("password during signup", func(t *testing.T) {
		f := flow.NewSignup(&flowmock.Authenticator{})
		err := f.SubmitPassword(ctx, "pw")
		assert.ErrorIs(t, err, flow.ErrInvalidTransition)
	})

	t.Run("otp before transaction", func(t *testing.T) {
		f := flow.NewLogin(&flowmock.Authenticator{})
		err := f.SubmitOTP(ctx, "123456")
		assert.ErrorIs(t, err, flow.ErrInvalidTransition)
	})

	t.Run("user info during login", func(t *testing.T) {
		f := flow.NewLogin(&flowmock.Authenticator{})
		err := f.SubmitUserInfo(ctx, "A", "B", "pw", "pw")
		assert.ErrorIs(t, err, flow.ErrInvalidTransition)
	})
}

func TestResendGatedOnCountdown(t *testing.T) {
	ctx := context.Background()
	clock := newClock()

	auth := &flowmock.Authenticator{
		RequestSignupFn: func(context.Context, string) (authapi.Transaction, error) {
			return authapi.Transaction{TransactionID: "t1", OTPExpiresAt: clock.Now().Add(5 * time.Minute)}, nil
		},
		ResendOTPFn: func(_ context.Context, transactionID string) (authapi.Transaction, error) {
			require.Equal(t, "t1", transactionID)
			return authapi.Transaction{TransactionID: transactionID, OTPExpiresAt: clock.Now().Add(5 * time.Minute)}, nil
		},
	}

	f := flow.NewSignup(auth, flow.WithClock(clock.Now))
	require.NoError(t, f.SubmitEmail(ctx, "a@b.com"))
	require.Equal(t, 300, f.SecondsRemaining())

	err := f.ResendOTP(ctx)
	assert.ErrorIs(t, err, flow.ErrResendNotReady)
	assert.Zero(t, auth.ResendOTPCalls.Load())

	clock.Advance(5 * time.Minute)
	require.Zero(t, f.SecondsRemaining())

	require.NoError(t, f.ResendOTP(ctx))
	assert.EqualValues(t, 1, auth.ResendOTPCalls.Load())
	// the fresh expiry restarts the countdown
	assert.Equal(t, 300, f.SecondsRemaining())
	assert.Equal(t, flow.StepOTP, f.Step())
}

func TestBack(t *testing.T) {
	ctx := context.Background()
	clock := newClock()

	t.Run("login otp back to password", func(t *testing.T) {
		auth := &flowmock.Authenticator{
			RequestLoginFn: func(context.Context, string, string) (authapi.Transaction, error) {
				return authapi.Transaction{TransactionID: "t1", OTPExpiresAt: clock.Now().Add(time.Minute)}, nil
			},
		}
		f := flow.NewLogin(auth, flow.WithClock(clock.Now))
		require.NoError(t, f.SubmitEmail(ctx, "a@b.com"))
		require.NoError(t, f.SubmitPassword(ctx, "pw"))
		require.Equal(t, flow.StepOTP, f.Step())

		f.Back()
		assert.Equal(t, flow.StepPassword, f.Step())
		// the abandoned transaction no longer drives the countdown
		assert.Zero(t, f.SecondsRemaining())

		f.Back()
		assert.Equal(t, flow.StepEmail, f.Step())
	})

	t.Run("signup otp back to email", func(t *testing.T) {
		auth := &flowmock.Authenticator{
			RequestSignupFn: func(context.Context, string) (authapi.Transaction, error) {
				return authapi.Transaction{TransactionID: "t1", OTPExpiresAt: clock.Now().Add(time.Minute)}, nil
			},
		}
		f := flow.NewSignup(auth, flow.WithClock(clock.Now))
		require.NoError(t, f.SubmitEmail(ctx, "a@b.com"))
		require.Equal(t, flow.StepOTP, f.Step())

		f.Back()
		assert.Equal(t, flow.StepEmail, f.Step())
	})

	t.Run("signup user info back to otp", func(t *testing.T) {
		auth := &flowmock.Authenticator{
			RequestSignupFn: func(context.Context, string) (authapi.Transaction, error) {
				return authapi.Transaction{TransactionID: "t1", OTPExpiresAt: clock.Now().Add(time.Minute)}, nil
			},
		}
		f := flow.NewSignup(auth, flow.WithClock(clock.Now))
		require.NoError(t, f.SubmitEmail(ctx, "a@b.com"))
		require.NoError(t, f.SubmitOTP(ctx, "123456"))
		require.Equal(t, flow.StepUserInfo, f.Step())

		f.Back()
		assert.Equal(t, flow.StepOTP, f.Step())
	})
}

func TestNewSubmissionCancelsInFlight(t *testing.T) {
	ctx := context.Background()
	clock := newClock()

	started := make(chan struct{})
	proceed := make(chan struct{})

	auth := &flowmock.Authenticator{}
	auth.RequestLoginFn = func(callCtx context.Context, _, password string) (authapi.Transaction, error) {
		if password == "slow" {
			close(started)
			<-proceed
			// the superseding submission must have cancelled us
			if err := callCtx.Err(); err != nil {
				return authapi.Transaction{}, err
			}
			return authapi.Transaction{TransactionID: "stale"}, nil
		}
		return authapi.Transaction{TransactionID: "fresh", OTPExpiresAt: clock.Now().Add(time.Minute)}, nil
	}

	f := flow.NewLogin(auth, flow.WithClock(clock.Now))
	require.NoError(t, f.SubmitEmail(ctx, "a@b.com"))

	slowErr := make(chan error, 1)
	go func() { slowErr <- f.SubmitPassword(ctx, "slow") }()
	<-started

	require.NoError(t, f.SubmitPassword(ctx, "fast"))
	close(proceed)

	err := <-slowErr
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	// the fresh transaction won, and the stale failure left no trace in
	// the user-visible message
	assert.Equal(t, flow.StepOTP, f.Step())
	assert.Empty(t, f.Message())
}

func TestCountdownReachesZero(t *testing.T) {
	clock := newClock()

	auth := &flowmock.Authenticator{
		RequestSignupFn: func(context.Context, string) (authapi.Transaction, error) {
			return authapi.Transaction{TransactionID: "t1", OTPExpiresAt: clock.Now().Add(2 * time.Second)}, nil
		},
	}

	f := flow.NewSignup(auth, flow.WithClock(clock.Now))
	require.NoError(t, f.SubmitEmail(context.Background(), "a@b.com"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var seen []int
	for remaining := range f.Countdown(ctx) {
		seen = append(seen, remaining)
		clock.Advance(time.Second)
	}

	require.NotEmpty(t, seen)
	assert.Equal(t, 2, seen[0])
	assert.Zero(t, seen[len(seen)-1])
}
