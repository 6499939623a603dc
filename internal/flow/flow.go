// Package flow implements the OTP-gated signup and login state machine.
//
// Login walks email → password → otp → complete; signup walks
// email → otp → userInfo → complete. Every transition that talks to the
// auth service keeps the flow in its current step on failure and records a
// user-visible message; nothing retries automatically. A new submission
// cancels the previous in-flight call for the same flow, so overlapping
// responses cannot race each other.
package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/contexmem/console/internal/authapi"
)

type Kind string

const (
	KindLogin  Kind = "login"
	KindSignup Kind = "signup"
)

type Step string

const (
	StepEmail    Step = "email"
	StepPassword Step = "password"
	StepOTP      Step = "otp"
	StepUserInfo Step = "userInfo"
	StepComplete Step = "complete"
)

var (
	// ErrInvalidTransition is returned when a submission does not apply to
	// the current step, e.g. a password submitted during signup.
	ErrInvalidTransition = errors.New("transition not valid in current step")
	// ErrResendNotReady rejects a resend while the countdown is still
	// running. The request is not dispatched.
	ErrResendNotReady = errors.New("resend not available until the countdown expires")
)

// Authenticator is the slice of the auth surface the state machine drives.
// authapi.Client and session.Manager both satisfy it; the latter also
// adopts the user and writes the session cookies on completion.
type Authenticator interface {
	RequestSignup(ctx context.Context, email string) (authapi.Transaction, error)
	VerifyOTP(ctx context.Context, transactionID, code string) error
	ResendOTP(ctx context.Context, transactionID string) (authapi.Transaction, error)
	CompleteSignup(ctx context.Context, email, firstName, lastName, password, transactionID string) (authapi.LoginResult, error)
	RequestLogin(ctx context.Context, email, password string) (authapi.Transaction, error)
	CompleteLogin(ctx context.Context, transactionID string) (authapi.LoginResult, error)
}

type Flow struct {
	kind Kind
	auth Authenticator
	now  func() time.Time

	mu             sync.Mutex
	step           Step
	email          string
	txn            authapi.Transaction
	hasTxn         bool
	otpVerified    bool
	message        string
	result         authapi.LoginResult
	done           bool
	cancelInFlight context.CancelFunc
}

type Option func(*Flow)

// WithClock injects the time source the countdown derives from.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

func NewLogin(auth Authenticator, opts ...Option) *Flow {
	return newFlow(KindLogin, auth, opts...)
}

func NewSignup(auth Authenticator, opts ...Option) *Flow {
	return newFlow(KindSignup, auth, opts...)
}

func newFlow(kind Kind, auth Authenticator, opts ...Option) *Flow {
	f := &Flow{
		kind: kind,
		auth: auth,
		now:  time.Now,
		step: StepEmail,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Kind is fixed at construction, so no lock is needed.
func (f *Flow) Kind() Kind {
	return f.kind
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.step
}

// Message returns the inline message of the last failed transition, empty
// after a successful one.
func (f *Flow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.message
}

// Result returns the established user and session once the flow completed.
func (f *Flow) Result() (authapi.LoginResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.result, f.done
}

// SubmitEmail handles the first step. Login defers the server call to the
// password step; signup starts the transaction immediately and only
// transitions on success.
func (f *Flow) SubmitEmail(ctx context.Context, email string) error {
	if step := f.Step(); step != StepEmail {
		return ErrInvalidTransition
	}

	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return f.fail("enter a valid email address", nil)
	}

	if f.kind == KindLogin {
		f.mu.Lock()
		f.email = email
		f.step = StepPassword
		f.message = ""
		f.mu.Unlock()

		return nil
	}

	callCtx, release := f.beginCall(ctx)
	txn, err := f.auth.RequestSignup(callCtx, email)
	release()
	if err != nil {
		return f.fail("could not start signup", err)
	}

	f.mu.Lock()
	f.email = email
	f.txn = txn
	f.hasTxn = true
	f.step = StepOTP
	f.message = ""
	f.mu.Unlock()

	return nil
}

// SubmitPassword handles the login password step. On failure the flow
// stays on the password step and no transaction is stored.
func (f *Flow) SubmitPassword(ctx context.Context, password string) error {
	if f.Kind() != KindLogin {
		return ErrInvalidTransition
	}
	if step := f.Step(); step != StepPassword {
		return ErrInvalidTransition
	}

	f.mu.Lock()
	email := f.email
	f.mu.Unlock()

	callCtx, release := f.beginCall(ctx)
	txn, err := f.auth.RequestLogin(callCtx, email, password)
	release()
	if err != nil {
		return f.fail("email or password is incorrect", err)
	}

	f.mu.Lock()
	f.txn = txn
	f.hasTxn = true
	f.step = StepOTP
	f.message = ""
	f.mu.Unlock()

	return nil
}

// SubmitOTP verifies the code. Login completes the session immediately
// after verification; signup moves on to collect the profile first.
// Any failure keeps the flow on the otp step.
func (f *Flow) SubmitOTP(ctx context.Context, code string) error {
	if step := f.Step(); step != StepOTP {
		return ErrInvalidTransition
	}

	f.mu.Lock()
	transactionID := f.txn.TransactionID
	f.mu.Unlock()

	callCtx, release := f.beginCall(ctx)
	err := f.auth.VerifyOTP(callCtx, transactionID, code)
	release()
	if err != nil {
		return f.fail("the code is wrong or has expired", err)
	}

	f.mu.Lock()
	f.otpVerified = true
	f.mu.Unlock()

	if f.kind == KindSignup {
		f.mu.Lock()
		f.step = StepUserInfo
		f.message = ""
		f.mu.Unlock()

		return nil
	}

	callCtx, release = f.beginCall(ctx)
	result, err := f.auth.CompleteLogin(callCtx, transactionID)
	release()
	if err != nil {
		return f.fail("could not complete the login", err)
	}

	f.complete(result)

	return nil
}

// SubmitUserInfo finishes a signup. The password confirmation is checked
// client-side before anything is sent.
func (f *Flow) SubmitUserInfo(ctx context.Context, firstName, lastName, password, confirmation string) error {
	if f.Kind() != KindSignup {
		return ErrInvalidTransition
	}
	if step := f.Step(); step != StepUserInfo {
		return ErrInvalidTransition
	}

	if password != confirmation {
		return f.fail("passwords do not match", nil)
	}

	f.mu.Lock()
	email, transactionID := f.email, f.txn.TransactionID
	f.mu.Unlock()

	callCtx, release := f.beginCall(ctx)
	result, err := f.auth.CompleteSignup(callCtx, email, firstName, lastName, password, transactionID)
	release()
	if err != nil {
		return f.fail("could not complete the signup", err)
	}

	f.complete(result)

	return nil
}

// ResendOTP requests a fresh code. It applies only on the otp step and
// only once the countdown reached zero; the new expiry restarts it. The
// step does not change.
func (f *Flow) ResendOTP(ctx context.Context) error {
	if step := f.Step(); step != StepOTP {
		return ErrInvalidTransition
	}
	if f.SecondsRemaining() > 0 {
		return ErrResendNotReady
	}

	f.mu.Lock()
	transactionID := f.txn.TransactionID
	f.mu.Unlock()

	callCtx, release := f.beginCall(ctx)
	txn, err := f.auth.ResendOTP(callCtx, transactionID)
	release()
	if err != nil {
		return f.fail("could not resend the code", err)
	}

	f.mu.Lock()
	f.txn.OTPExpiresAt = txn.OTPExpiresAt
	f.message = ""
	f.mu.Unlock()

	return nil
}

// Back moves to the previous step, discarding partial server state. The
// transaction stays valid server-side but the client abandons it unless
// the user returns.
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case StepPassword:
		f.step = StepEmail
	case StepOTP:
		if f.kind == KindLogin {
			f.step = StepPassword
		} else {
			f.step = StepEmail
		}
		f.hasTxn = false
		f.txn = authapi.Transaction{}
		f.otpVerified = false
	case StepUserInfo:
		f.step = StepOTP
	}
	f.message = ""
}

// SecondsRemaining derives the OTP countdown from the server-supplied
// expiry. It is a UI affordance only; the server stays authoritative.
func (f *Flow) SecondsRemaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.hasTxn {
		return 0
	}

	remaining := f.txn.OTPExpiresAt.Sub(f.now())
	if remaining <= 0 {
		return 0
	}

	return int(remaining / time.Second)
}

// Countdown emits the remaining seconds once per second until it reaches
// zero or ctx is cancelled. The ticker is torn down deterministically.
func (f *Flow) Countdown(ctx context.Context) <-chan int {
	out := make(chan int, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			remaining := f.SecondsRemaining()
			select {
			case out <- remaining:
			case <-ctx.Done():
				return
			}
			if remaining == 0 {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// beginCall cancels any previous in-flight call for this flow and returns
// a cancellable context for the new one. Whichever response belonged to
// the superseded call resolves into a cancelled context instead of racing
// the fresh submission.
func (f *Flow) beginCall(ctx context.Context) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithCancel(ctx)

	f.mu.Lock()
	if f.cancelInFlight != nil {
		f.cancelInFlight()
	}
	f.cancelInFlight = cancel
	f.mu.Unlock()

	return callCtx, cancel
}

func (f *Flow) complete(result authapi.LoginResult) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.result = result
	f.done = true
	f.step = StepComplete
	f.message = ""
}

// fail records the inline message and returns the underlying error (or a
// fresh one for client-side validation) without changing the step. A call
// that failed because it was cancelled was superseded by a newer
// submission; its outcome must not overwrite the fresh one's message.
func (f *Flow) fail(message string, err error) error {
	if err != nil && errors.Is(err, context.Canceled) {
		return err
	}

	f.mu.Lock()
	f.message = message
	f.mu.Unlock()

	if err != nil {
		return err
	}

	return errors.New(message)
}
