// Package flowmock provides a scripted Authenticator for state machine
// tests. Unset functions succeed with zero values.
package flowmock

import (
	"context"
	"sync/atomic"

	"github.com/contexmem/console/internal/authapi"
)

type Authenticator struct {
	RequestSignupFn  func(ctx context.Context, email string) (authapi.Transaction, error)
	VerifyOTPFn      func(ctx context.Context, transactionID, code string) error
	ResendOTPFn      func(ctx context.Context, transactionID string) (authapi.Transaction, error)
	CompleteSignupFn func(ctx context.Context, email, firstName, lastName, password, transactionID string) (authapi.LoginResult, error)
	RequestLoginFn   func(ctx context.Context, email, password string) (authapi.Transaction, error)
	CompleteLoginFn  func(ctx context.Context, transactionID string) (authapi.LoginResult, error)

	RequestSignupCalls  atomic.Int64
	VerifyOTPCalls      atomic.Int64
	ResendOTPCalls      atomic.Int64
	CompleteSignupCalls atomic.Int64
	RequestLoginCalls   atomic.Int64
	CompleteLoginCalls  atomic.Int64
}

func (a *Authenticator) RequestSignup(ctx context.Context, email string) (authapi.Transaction, error) {
	a.RequestSignupCalls.Add(1)
	if a.RequestSignupFn == nil {
		return authapi.Transaction{}, nil
	}
	return a.RequestSignupFn(ctx, email)
}

func (a *Authenticator) VerifyOTP(ctx context.Context, transactionID, code string) error {
	a.VerifyOTPCalls.Add(1)
	if a.VerifyOTPFn == nil {
		return nil
	}
	return a.VerifyOTPFn(ctx, transactionID, code)
}

func (a *Authenticator) ResendOTP(ctx context.Context, transactionID string) (authapi.Transaction, error) {
	a.ResendOTPCalls.Add(1)
	if a.ResendOTPFn == nil {
		return authapi.Transaction{}, nil
	}
	return a.ResendOTPFn(ctx, transactionID)
}

func (a *Authenticator) CompleteSignup(ctx context.Context, email, firstName, lastName, password, transactionID string) (authapi.LoginResult, error) {
	a.CompleteSignupCalls.Add(1)
	if a.CompleteSignupFn == nil {
		return authapi.LoginResult{}, nil
	}
	return a.CompleteSignupFn(ctx, email, firstName, lastName, password, transactionID)
}

func (a *Authenticator) RequestLogin(ctx context.Context, email, password string) (authapi.Transaction, error) {
	a.RequestLoginCalls.Add(1)
	if a.RequestLoginFn == nil {
		return authapi.Transaction{}, nil
	}
	return a.RequestLoginFn(ctx, email, password)
}

func (a *Authenticator) CompleteLogin(ctx context.Context, transactionID string) (authapi.LoginResult, error) {
	a.CompleteLoginCalls.Add(1)
	if a.CompleteLoginFn == nil {
		return authapi.LoginResult{}, nil
	}
	return a.CompleteLoginFn(ctx, transactionID)
}
