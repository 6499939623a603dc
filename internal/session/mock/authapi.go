// Package sessionmock provides a scripted AuthAPI for session manager
// tests. Unset functions succeed with zero values.
package sessionmock

import (
	"context"

	"github.com/contexmem/console/internal/authapi"
	"github.com/contexmem/console/internal/cookiestore"
)

type AuthAPI struct {
	RequestSignupFn   func(ctx context.Context, email string) (authapi.Transaction, error)
	VerifyOTPFn       func(ctx context.Context, transactionID, code string) error
	ResendOTPFn       func(ctx context.Context, transactionID string) (authapi.Transaction, error)
	CompleteSignupFn  func(ctx context.Context, email, firstName, lastName, password, transactionID string) (authapi.LoginResult, error)
	RequestLoginFn    func(ctx context.Context, email, password string) (authapi.Transaction, error)
	CompleteLoginFn   func(ctx context.Context, transactionID string) (authapi.LoginResult, error)
	GoogleLoginFn     func(ctx context.Context, idToken string) (authapi.LoginResult, error)
	LogoutFn          func(ctx context.Context, sess cookiestore.Session) error
	CurrentSessionFn  func(ctx context.Context, sess cookiestore.Session) (authapi.User, error)
	AllSessionsFn     func(ctx context.Context, sess cookiestore.Session) ([]authapi.SessionRecord, error)
	RevokeSessionFn   func(ctx context.Context, sess cookiestore.Session, targetUserID, targetSessionID string) error
	ValidateSessionFn func(ctx context.Context, sess cookiestore.Session) (*authapi.Session, error)

	ValidateSessionCalls int
	CurrentSessionCalls  int
	LogoutCalls          int
}

func (a *AuthAPI) RequestSignup(ctx context.Context, email string) (authapi.Transaction, error) {
	if a.RequestSignupFn == nil {
		return authapi.Transaction{}, nil
	}
	return a.RequestSignupFn(ctx, email)
}

func (a *AuthAPI) VerifyOTP(ctx context.Context, transactionID, code string) error {
	if a.VerifyOTPFn == nil {
		return nil
	}
	return a.VerifyOTPFn(ctx, transactionID, code)
}

func (a *AuthAPI) ResendOTP(ctx context.Context, transactionID string) (authapi.Transaction, error) {
	if a.ResendOTPFn == nil {
		return authapi.Transaction{}, nil
	}
	return a.ResendOTPFn(ctx, transactionID)
}

func (a *AuthAPI) CompleteSignup(ctx context.Context, email, firstName, lastName, password, transactionID string) (authapi.LoginResult, error) {
	if a.CompleteSignupFn == nil {
		return authapi.LoginResult{}, nil
	}
	return a.CompleteSignupFn(ctx, email, firstName, lastName, password, transactionID)
}

func (a *AuthAPI) RequestLogin(ctx context.Context, email, password string) (authapi.Transaction, error) {
	if a.RequestLoginFn == nil {
		return authapi.Transaction{}, nil
	}
	return a.RequestLoginFn(ctx, email, password)
}

func (a *AuthAPI) CompleteLogin(ctx context.Context, transactionID string) (authapi.LoginResult, error) {
	if a.CompleteLoginFn == nil {
		return authapi.LoginResult{}, nil
	}
	return a.CompleteLoginFn(ctx, transactionID)
}

func (a *AuthAPI) GoogleLogin(ctx context.Context, idToken string) (authapi.LoginResult, error) {
	if a.GoogleLoginFn == nil {
		return authapi.LoginResult{}, nil
	}
	return a.GoogleLoginFn(ctx, idToken)
}

func (a *AuthAPI) Logout(ctx context.Context, sess cookiestore.Session) error {
	a.LogoutCalls++
	if a.LogoutFn == nil {
		return nil
	}
	return a.LogoutFn(ctx, sess)
}

func (a *AuthAPI) CurrentSession(ctx context.Context, sess cookiestore.Session) (authapi.User, error) {
	a.CurrentSessionCalls++
	if a.CurrentSessionFn == nil {
		return authapi.User{}, nil
	}
	return a.CurrentSessionFn(ctx, sess)
}

func (a *AuthAPI) AllSessions(ctx context.Context, sess cookiestore.Session) ([]authapi.SessionRecord, error) {
	if a.AllSessionsFn == nil {
		return nil, nil
	}
	return a.AllSessionsFn(ctx, sess)
}

func (a *AuthAPI) RevokeSession(ctx context.Context, sess cookiestore.Session, targetUserID, targetSessionID string) error {
	if a.RevokeSessionFn == nil {
		return nil
	}
	return a.RevokeSessionFn(ctx, sess, targetUserID, targetSessionID)
}

func (a *AuthAPI) ValidateSession(ctx context.Context, sess cookiestore.Session) (*authapi.Session, error) {
	a.ValidateSessionCalls++
	if a.ValidateSessionFn == nil {
		return nil, nil
	}
	return a.ValidateSessionFn(ctx, sess)
}
