package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	accountStorage "schooladmin/internal/adapters/storage/account"
	"schooladmin/internal/domain/account"
)

// AccountStoreForSeed defines the store interface needed by SeedAdmin.
type AccountStoreForSeed interface {
	GetByUsername(ctx context.Context, username string) (account.Account, error)
	Create(ctx context.Context, a account.Account) (int64, error)
}

// SeedAdminInput names the bootstrap administrator.
type SeedAdminInput struct {
	Username string
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForSeed
}

// ExecuteSeedAdmin creates the bootstrap administrator when it does not exist.
// PRE: password >= account.MinPasswordLength characters
// POST: returns true when an account was created
// INVARIANT: an existing account's password is never overwritten
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) (bool, error) {
	_, err := deps.AccountStore.GetByUsername(ctx, input.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, accountStorage.ErrNotFound) {
		return false, fmt.Errorf("look up admin: %w", err)
	}

	acct := account.Account{Username: input.Username, CreatedAt: time.Now()}
	if err := acct.Validate(); err != nil {
		return false, err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return false, err
	}
	if _, err := deps.AccountStore.Create(ctx, acct); err != nil {
		return false, err
	}
	slog.Info("auth_event", "event", "account_created", "username", acct.Username)
	return true, nil
}
