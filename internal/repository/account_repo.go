package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/invoicer/internal/db"
	"github.com/andy/invoicer/internal/domain"
)

// AccountRepo is a SQLite implementation of AccountRepository
type AccountRepo struct {
	db *db.DB
}

// NewAccountRepo creates a new AccountRepo
func NewAccountRepo(database *db.DB) *AccountRepo {
	return &AccountRepo{db: database}
}

// Create inserts a new account. The email must not be registered yet.
func (r *AccountRepo) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		normalizeEmail(account.Email),
		account.PasswordHash,
		formatTime(account.CreatedAt),
		formatTime(account.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", classifySQLite(err))
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByEmail retrieves an account by email, case-insensitively
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, "email = ?", normalizeEmail(email))
}

func (r *AccountRepo) getOne(ctx context.Context, where string, arg any) (*domain.Account, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM accounts
		WHERE ` + where

	var a domain.Account
	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", classifySQLite(err))
	}

	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &a, nil
}

// UpdatePassword replaces the stored password hash
func (r *AccountRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?",
		passwordHash, formatTime(timeNow()), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", classifySQLite(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
