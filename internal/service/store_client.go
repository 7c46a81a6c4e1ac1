package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/logger"
	"github.com/andy/invoicer/internal/repository"
	"github.com/google/uuid"
)

// IdentitySource reports who is signed in right now
type IdentitySource interface {
	Current() (domain.Identity, bool)
}

// IdentityWatcher delivers sign-in and sign-out notifications
type IdentityWatcher interface {
	Subscribe(fn func(domain.AuthEvent)) (unsubscribe func())
}

// InvoiceStore is the invoice API the editor and list talk to. Calls are
// scoped to the current identity and every failure is one of
// domain.ErrUnauthenticated, domain.ErrStoreUnavailable or domain.ErrStore.
type InvoiceStore interface {
	// List returns the caller's invoices, most recently updated first
	List(ctx context.Context) ([]domain.Invoice, error)

	Get(ctx context.Context, id string) (domain.Invoice, error)

	// Upsert assigns an id to drafts and writes the whole document
	Upsert(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)

	Delete(ctx context.Context, id string) error

	// DeleteAll removes every invoice the caller owns
	DeleteAll(ctx context.Context) (int64, error)
}

type storeClient struct {
	repo  repository.InvoiceRepository
	ident IdentitySource
	log   *logger.Logger
	newID func() string
}

// NewStoreClient creates the owner-scoped invoice store
func NewStoreClient(repo repository.InvoiceRepository, ident IdentitySource, log *logger.Logger) InvoiceStore {
	return &storeClient{
		repo:  repo,
		ident: ident,
		log:   log.Named("store"),
		newID: uuid.NewString,
	}
}

// owner is looked up on every call; identity is never cached here
func (s *storeClient) owner() (string, error) {
	id, ok := s.ident.Current()
	if !ok || id.UserID == "" {
		return "", domain.ErrUnauthenticated
	}
	return id.UserID, nil
}

func (s *storeClient) List(ctx context.Context) ([]domain.Invoice, error) {
	owner, err := s.owner()
	if err != nil {
		return nil, err
	}

	invoices, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, s.fail("list", "", err)
	}

	s.log.Debug().Int("count", len(invoices)).Msg("listed invoices")
	return invoices, nil
}

func (s *storeClient) Get(ctx context.Context, id string) (domain.Invoice, error) {
	owner, err := s.owner()
	if err != nil {
		return domain.Invoice{}, err
	}

	inv, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return domain.Invoice{}, s.fail("get", id, err)
	}
	return inv, nil
}

func (s *storeClient) Upsert(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	owner, err := s.owner()
	if err != nil {
		return domain.Invoice{}, err
	}

	inv = inv.Clone()
	if inv.ID == "" {
		inv.ID = s.newID()
	}

	saved, err := s.repo.Upsert(ctx, owner, inv)
	if err != nil {
		return domain.Invoice{}, s.fail("upsert", inv.ID, err)
	}

	s.log.Info().Str("invoice_id", saved.ID).Str("number", saved.InvoiceNumber).Msg("invoice saved")
	return saved, nil
}

func (s *storeClient) Delete(ctx context.Context, id string) error {
	owner, err := s.owner()
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return s.fail("delete", id, err)
	}

	s.log.Info().Str("invoice_id", id).Msg("invoice deleted")
	return nil
}

func (s *storeClient) DeleteAll(ctx context.Context) (int64, error) {
	owner, err := s.owner()
	if err != nil {
		return 0, err
	}

	n, err := s.repo.DeleteAll(ctx, owner)
	if err != nil {
		return 0, s.fail("delete_all", "", err)
	}

	s.log.Warn().Int64("count", n).Msg("all invoices deleted")
	return n, nil
}

// fail converts a repository error into the store taxonomy
func (s *storeClient) fail(op, id string, err error) error {
	if errors.Is(err, repository.ErrTableMissing) {
		s.log.Error().Err(err).Str("op", op).Msg("invoice table is missing, run `invoicer setup`")
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	s.log.Warn().Err(err).Str("op", op).Str("invoice_id", id).Msg("store request failed")
	return fmt.Errorf("%w: %w", domain.ErrStore, err)
}
