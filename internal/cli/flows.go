// Package cli drives the signup and login state machines interactively:
// one prompt per step, inline messages on failure, "back" and "resend"
// where the flow allows them.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/contexmem/console/internal/flow"
	"github.com/contexmem/console/internal/session"
)

type runner struct {
	in  *bufio.Scanner
	out io.Writer
}

func (r *runner) prompt(label string) (string, error) {
	_, _ = fmt.Fprintf(r.out, "%s: ", label)
	if !r.in.Scan() {
		if err := r.in.Err(); err != nil {
			return "", err
		}

		return "", io.EOF
	}

	return strings.TrimSpace(r.in.Text()), nil
}

func (r *runner) show(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format+"\n", args...)
}

// RunLogin walks the email → password → otp flow until the session is
// established or the input ends.
func RunLogin(ctx context.Context, in io.Reader, out io.Writer, manager *session.Manager) error {
	f := flow.NewLogin(manager)

	return (&runner{in: bufio.NewScanner(in), out: out}).drive(ctx, f)
}

// RunSignup walks the email → otp → userInfo flow.
func RunSignup(ctx context.Context, in io.Reader, out io.Writer, manager *session.Manager) error {
	f := flow.NewSignup(manager)

	return (&runner{in: bufio.NewScanner(in), out: out}).drive(ctx, f)
}

func (r *runner) drive(ctx context.Context, f *flow.Flow) error {
	for f.Step() != flow.StepComplete {
		var err error

		switch f.Step() {
		case flow.StepEmail:
			err = r.emailStep(ctx, f)
		case flow.StepPassword:
			err = r.passwordStep(ctx, f)
		case flow.StepOTP:
			err = r.otpStep(ctx, f)
		case flow.StepUserInfo:
			err = r.userInfoStep(ctx, f)
		}

		if errors.Is(err, io.EOF) {
			return errors.New("input ended before the flow completed")
		}
		if err != nil && f.Message() != "" {
			r.show("%s", f.Message())
		}
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
	}

	result, _ := f.Result()
	r.show("Signed in as %s", result.User.Email)

	return nil
}

func (r *runner) emailStep(ctx context.Context, f *flow.Flow) error {
	email, err := r.prompt("Email")
	if err != nil {
		return err
	}

	return f.SubmitEmail(ctx, email)
}

func (r *runner) passwordStep(ctx context.Context, f *flow.Flow) error {
	password, err := r.prompt("Password (or 'back')")
	if err != nil {
		return err
	}
	if password == "back" {
		f.Back()
		return nil
	}

	return f.SubmitPassword(ctx, password)
}

func (r *runner) otpStep(ctx context.Context, f *flow.Flow) error {
	if remaining := f.SecondsRemaining(); remaining > 0 {
		r.show("A code was emailed to you; it expires in %ds.", remaining)
	} else {
		r.show("The code has expired; type 'resend' for a fresh one.")
	}

	code, err := r.prompt("Code (or 'resend'/'back')")
	if err != nil {
		return err
	}

	switch code {
	case "back":
		f.Back()
		return nil
	case "resend":
		if err := f.ResendOTP(ctx); err != nil {
			if errors.Is(err, flow.ErrResendNotReady) {
				r.show("Resend is available once the countdown reaches zero.")
			}

			return err
		}
		r.show("A new code is on its way.")

		return nil
	default:
		return f.SubmitOTP(ctx, code)
	}
}

func (r *runner) userInfoStep(ctx context.Context, f *flow.Flow) error {
	firstName, err := r.prompt("First name")
	if err != nil {
		return err
	}

	lastName, err := r.prompt("Last name")
	if err != nil {
		return err
	}

	password, err := r.prompt("Password")
	if err != nil {
		return err
	}

	confirmation, err := r.prompt("Confirm password")
	if err != nil {
		return err
	}

	return f.SubmitUserInfo(ctx, firstName, lastName, password, confirmation)
}
