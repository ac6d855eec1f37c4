package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	emailAdapter "schooladmin/internal/adapters/email"
	"schooladmin/internal/application/validation"
	"schooladmin/internal/domain/account"
	"schooladmin/internal/metrics"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByUsername(ctx context.Context, username string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// LoginInput carries the submitted credentials.
type LoginInput struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	AccountID int64
	Username  string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Alerts       emailAdapter.Sender // optional
	AlertTo      string
	Now          func() time.Time
}

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

// MsgInvalidCredentials is shown under the username field on a failed login.
const MsgInvalidCredentials = "These credentials do not match our records."

// ExecuteLogin validates credentials and returns account info for session creation.
// PRE: none; blank fields come back as validation.FieldErrors
// POST: failures wrap ErrInvalidCredentials or ErrAccountLocked together with
// field errors for the form; success resets the failed login counter
// INVARIANT: a locked account never signs in, even with the right password
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if err := validation.Struct(input); err != nil {
		metrics.LoginAttempt("invalid_input")
		return LoginResult{}, err
	}
	now := deps.now()

	acct, err := deps.AccountStore.GetByUsername(ctx, input.Username)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "username", input.Username, "reason", "not_found")
		metrics.LoginAttempt("rejected")
		return LoginResult{}, credentialsError()
	}

	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "username", acct.Username, "reason", "locked")
		metrics.LoginAttempt("locked")
		return LoginResult{}, lockedError(acct.LockedUntil.Sub(now))
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		locked := acct.RecordFailedLogin(now)
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return LoginResult{}, fmt.Errorf("record failed login: %w", err)
		}
		slog.Info("auth_event", "event", "login_failed", "username", acct.Username, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		metrics.LoginAttempt("rejected")
		if locked {
			slog.Warn("auth_event", "event", "account_locked", "username", acct.Username, "until", acct.LockedUntil)
			deps.sendLockoutAlert(ctx, acct)
		}
		return LoginResult{}, credentialsError()
	}

	if acct.FailedLogins > 0 || !acct.LockedUntil.IsZero() {
		acct.ResetFailedLogins()
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return LoginResult{}, fmt.Errorf("reset failed logins: %w", err)
		}
	}

	slog.Info("auth_event", "event", "login_success", "username", acct.Username)
	metrics.LoginAttempt("success")
	return LoginResult{AccountID: acct.ID, Username: acct.Username}, nil
}

func (d LoginDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// sendLockoutAlert notifies the configured address. Delivery failures are logged only.
func (d LoginDeps) sendLockoutAlert(ctx context.Context, acct account.Account) {
	if d.Alerts == nil || d.AlertTo == "" {
		return
	}
	msg, err := emailAdapter.LockoutAlert(d.AlertTo, acct.Username, acct.FailedLogins, acct.LockedUntil)
	if err != nil {
		slog.Error("auth_event", "event", "lockout_alert_failed", "error", err)
		return
	}
	if _, err := d.Alerts.Send(ctx, msg); err != nil {
		slog.Error("auth_event", "event", "lockout_alert_failed", "username", acct.Username, "error", err)
	}
}

func credentialsError() error {
	return fmt.Errorf("%w: %w", ErrInvalidCredentials, validation.FieldErrors{"username": MsgInvalidCredentials})
}

func lockedError(remaining time.Duration) error {
	minutes := int(remaining.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	msg := fmt.Sprintf("Too many login attempts. Please try again in %d minutes.", minutes)
	if minutes == 1 {
		msg = "Too many login attempts. Please try again in 1 minute."
	}
	return fmt.Errorf("%w: %w", ErrAccountLocked, validation.FieldErrors{"username": msg})
}
