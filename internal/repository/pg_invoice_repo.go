package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool (and pgx.Tx) the repositories use
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgInvoiceRepo is a Postgres implementation of InvoiceRepository.
// Documents live in a JSONB column; every statement filters on user_id.
type PgInvoiceRepo struct {
	q Querier
}

func NewPgInvoiceRepo(q Querier) *PgInvoiceRepo {
	return &PgInvoiceRepo{q: q}
}

func (r *PgInvoiceRepo) List(ctx context.Context, ownerID string) ([]domain.Invoice, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id::text, invoice_data, updated_at
		FROM invoices
		WHERE user_id = $1
		ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", classifyPostgres(err))
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0)
	for rows.Next() {
		var (
			id        string
			data      []byte
			updatedAt time.Time
		)
		if err := rows.Scan(&id, &data, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		inv, err := decodeInvoice(id, data, updatedAt)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", classifyPostgres(err))
	}
	return invoices, nil
}

func (r *PgInvoiceRepo) Get(ctx context.Context, ownerID, id string) (domain.Invoice, error) {
	var (
		data      []byte
		updatedAt time.Time
	)
	err := r.q.QueryRow(ctx, `
		SELECT invoice_data, updated_at
		FROM invoices
		WHERE user_id = $1 AND id = $2`, ownerID, id).Scan(&data, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Invoice{}, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("failed to get invoice: %w", classifyPostgres(err))
	}
	return decodeInvoice(id, data, updatedAt)
}

func (r *PgInvoiceRepo) Upsert(ctx context.Context, ownerID string, inv domain.Invoice) (domain.Invoice, error) {
	if inv.ID == "" {
		return domain.Invoice{}, errors.New("invoice id is required")
	}
	data, err := encodeInvoice(inv)
	if err != nil {
		return domain.Invoice{}, err
	}

	var updatedAt time.Time
	err = r.q.QueryRow(ctx, `
		INSERT INTO invoices (id, user_id, invoice_data, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			invoice_data = EXCLUDED.invoice_data,
			updated_at = NOW()
		WHERE invoices.user_id = EXCLUDED.user_id
		RETURNING updated_at`, inv.ID, ownerID, data).Scan(&updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Invoice{}, fmt.Errorf("invoice %s: %w", inv.ID, ErrNotFound)
	}
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("failed to upsert invoice: %w", classifyPostgres(err))
	}

	saved := inv.Clone()
	saved.UpdatedAt = updatedAt
	return saved, nil
}

func (r *PgInvoiceRepo) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE user_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", classifyPostgres(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *PgInvoiceRepo) DeleteAll(ctx context.Context, ownerID string) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE user_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete invoices: %w", classifyPostgres(err))
	}
	return tag.RowsAffected(), nil
}
