// Package login models the admin sign-in form.
package login

import (
	"context"
	"errors"
	"sync"

	"schooladmin/internal/application/validation"
)

// Submit button captions.
const (
	LabelIdle       = "Log in"
	LabelSubmitting = "Logging in…"
)

// MsgRequestFailed is shown when the request fails without field errors.
const MsgRequestFailed = "Unable to sign in right now. Please try again."

// ErrSubmitInFlight is returned when Submit is called while a submit is pending.
var ErrSubmitInFlight = errors.New("login already in progress")

// Authenticator performs the sign-in request.
type Authenticator interface {
	Login(ctx context.Context, username, password string) error
}

// Form is the login form state: {idle, submitting}.
type Form struct {
	mu           sync.Mutex
	username     string
	password     string
	showPassword bool
	submitting   bool
	errors       validation.FieldErrors
	failure      string
}

// NewForm returns an idle, empty form.
func NewForm() *Form {
	return &Form{}
}

// SetUsername updates the username input.
func (f *Form) SetUsername(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.username = v
}

// SetPassword updates the password input.
func (f *Form) SetPassword(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.password = v
}

// Username returns the username input.
func (f *Form) Username() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.username
}

// Password returns the stored password regardless of visibility.
func (f *Form) Password() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.password
}

// TogglePasswordVisibility flips between masked and plain display. It only
// changes how the password is shown.
func (f *Form) TogglePasswordVisibility() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.showPassword = !f.showPassword
}

// InputType is the password input's type attribute.
func (f *Form) InputType() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.showPassword {
		return "text"
	}
	return "password"
}

// Submitting reports whether a request is in flight.
func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// SubmitDisabled reports whether the submit control is disabled.
func (f *Form) SubmitDisabled() bool {
	return f.Submitting()
}

// SubmitLabel is the submit control's caption.
func (f *Form) SubmitLabel() string {
	if f.Submitting() {
		return LabelSubmitting
	}
	return LabelIdle
}

// Errors returns a copy of the per-field messages from the last attempt.
func (f *Form) Errors() validation.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(validation.FieldErrors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Failure returns the form-level message from the last attempt, if any.
func (f *Form) Failure() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failure
}

// Submit sends the credentials once. A second call while the first is pending
// returns ErrSubmitInFlight without a request. On failure the field errors are
// kept and the form can be submitted again.
func (f *Form) Submit(ctx context.Context, auth Authenticator) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.submitting = true
	f.errors = nil
	f.failure = ""
	username, password := f.username, f.password
	f.mu.Unlock()

	err := auth.Login(ctx, username, password)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err == nil {
		return nil
	}
	if fe, ok := validation.AsFieldErrors(err); ok {
		f.errors = fe
	} else {
		f.failure = MsgRequestFailed
	}
	return err
}
