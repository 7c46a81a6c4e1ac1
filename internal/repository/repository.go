package repository

//go:generate mockgen -destination=../mocks/mock_repository.go -package=mocks github.com/andy/invoicer/internal/repository InvoiceRepository,AccountRepository

import (
	"context"
	"errors"

	"github.com/andy/invoicer/internal/domain"
)

var (
	// ErrNotFound means no row exists for the id within the owner's scope
	ErrNotFound = errors.New("record not found")
	// ErrTableMissing means the backing table has not been provisioned
	ErrTableMissing = errors.New("table does not exist")
	// ErrDuplicate means a unique constraint rejected the write
	ErrDuplicate = errors.New("record already exists")
)

// InvoiceRepository persists invoice documents. Every operation is scoped to
// ownerID; rows belonging to other owners are invisible.
type InvoiceRepository interface {
	// List returns the owner's invoices, most recently updated first
	List(ctx context.Context, ownerID string) ([]domain.Invoice, error)
	Get(ctx context.Context, ownerID, id string) (domain.Invoice, error)
	// Upsert inserts or overwrites the row keyed by inv.ID and stamps updated_at
	Upsert(ctx context.Context, ownerID string, inv domain.Invoice) (domain.Invoice, error)
	Delete(ctx context.Context, ownerID, id string) error
	DeleteAll(ctx context.Context, ownerID string) (int64, error)
}

// AccountRepository manages local user accounts
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
