package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"schooladmin/internal/adapters/storage"
	domain "schooladmin/internal/domain/account"
)

const timeFormat = time.RFC3339Nano

const selectColumns = "SELECT id, username, password_hash, created_at, failed_logins, locked_until FROM account"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AccountStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	return scanAccount(row.Scan)
}

// GetByUsername retrieves an Account by username (case-insensitive).
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE username = ? COLLATE NOCASE", username)
	return scanAccount(row.Scan)
}

// Create inserts a new Account and returns its ID.
// PRE: entity has been validated and has a password hash
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Account) (int64, error) {
	createdAt := entity.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO account (username, password_hash, created_at, failed_logins, locked_until) VALUES (?, ?, ?, ?, ?)",
		entity.Username, entity.PasswordHash, createdAt.UTC().Format(timeFormat), entity.FailedLogins, nullableTime(entity.LockedUntil),
	)
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	return res.LastInsertId()
}

// Save updates an existing Account's mutable fields.
// POST: password hash, failed logins and lock are persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE account SET password_hash = ?, failed_logins = ?, locked_until = ? WHERE id = ?",
		entity.PasswordHash, entity.FailedLogins, nullableTime(entity.LockedUntil), entity.ID,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&n)
	return n, err
}

func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var a domain.Account
	var createdAt string
	var lockedUntil sql.NullString
	err := scan(&a.ID, &a.Username, &a.PasswordHash, &createdAt, &a.FailedLogins, &lockedUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, ErrNotFound
	}
	if err != nil {
		return domain.Account{}, err
	}
	a.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	if lockedUntil.Valid {
		a.LockedUntil, _ = time.Parse(timeFormat, lockedUntil.String)
	}
	return a, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeFormat)
}
