package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andy/invoicer/internal/db"
	"github.com/andy/invoicer/internal/domain"
)

// InvoiceRepo is a SQLite implementation of InvoiceRepository
type InvoiceRepo struct {
	db  *db.DB
	now func() time.Time
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(database *db.DB) *InvoiceRepo {
	return &InvoiceRepo{db: database, now: time.Now}
}

// List returns all invoices owned by ownerID, newest update first
func (r *InvoiceRepo) List(ctx context.Context, ownerID string) ([]domain.Invoice, error) {
	query := `
		SELECT id, invoice_data, updated_at
		FROM invoices
		WHERE owner_id = ?
		ORDER BY updated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", classifySQLite(err))
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, nil
}

// Get retrieves one invoice by id
func (r *InvoiceRepo) Get(ctx context.Context, ownerID, id string) (domain.Invoice, error) {
	query := `
		SELECT id, invoice_data, updated_at
		FROM invoices
		WHERE owner_id = ? AND id = ?
	`

	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, ownerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Invoice{}, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

// Upsert writes the whole document keyed by inv.ID. A row that exists under
// another owner is left untouched and reported as not found.
func (r *InvoiceRepo) Upsert(ctx context.Context, ownerID string, inv domain.Invoice) (domain.Invoice, error) {
	if inv.ID == "" {
		return domain.Invoice{}, errors.New("invoice id is required")
	}

	data, err := encodeInvoice(inv)
	if err != nil {
		return domain.Invoice{}, err
	}

	now := r.now().UTC()
	query := `
		INSERT INTO invoices (id, owner_id, invoice_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			invoice_data = excluded.invoice_data,
			updated_at = excluded.updated_at
		WHERE invoices.owner_id = excluded.owner_id
	`

	result, err := r.db.ExecContext(ctx, query,
		inv.ID,
		ownerID,
		string(data),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("failed to upsert invoice: %w", classifySQLite(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return domain.Invoice{}, fmt.Errorf("invoice %s: %w", inv.ID, ErrNotFound)
	}

	saved := inv.Clone()
	saved.UpdatedAt = now
	return saved, nil
}

// Delete removes one invoice
func (r *InvoiceRepo) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM invoices WHERE owner_id = ? AND id = ?", ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", classifySQLite(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAll removes every invoice the owner has and returns how many went
func (r *InvoiceRepo) DeleteAll(ctx context.Context, ownerID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM invoices WHERE owner_id = ?", ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete invoices: %w", classifySQLite(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row scanner) (domain.Invoice, error) {
	var id, data, updatedAt string
	if err := row.Scan(&id, &data, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Invoice{}, err
		}
		return domain.Invoice{}, fmt.Errorf("failed to scan invoice: %w", classifySQLite(err))
	}

	ts, err := parseTime(updatedAt)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return decodeInvoice(id, []byte(data), ts)
}
