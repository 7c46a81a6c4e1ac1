package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/andy/invoicer/internal/domain"
	"github.com/jackc/pgx/v5"
)

// PgAccountRepo is a Postgres implementation of AccountRepository
type PgAccountRepo struct {
	q Querier
}

func NewPgAccountRepo(q Querier) *PgAccountRepo {
	return &PgAccountRepo{q: q}
}

func (r *PgAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		account.ID,
		normalizeEmail(account.Email),
		account.PasswordHash,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", classifyPostgres(err))
	}
	return nil
}

func (r *PgAccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *PgAccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, "LOWER(email) = $1", normalizeEmail(email))
}

func (r *PgAccountRepo) getOne(ctx context.Context, where string, arg any) (*domain.Account, error) {
	var a domain.Account
	err := r.q.QueryRow(ctx, `
		SELECT id::text, email, password_hash, created_at, updated_at
		FROM accounts
		WHERE `+where, arg).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", classifyPostgres(err))
	}
	return &a, nil
}

func (r *PgAccountRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE accounts SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", classifyPostgres(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
