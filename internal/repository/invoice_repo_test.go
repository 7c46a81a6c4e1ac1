package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/andy/invoicer/internal/db"
	"github.com/andy/invoicer/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"), "test-key")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.RunMigrations())
	return database
}

func createAccount(t *testing.T, repo *AccountRepo, email string) *domain.Account {
	t.Helper()
	now := time.Now()
	acc := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(context.Background(), acc))
	return acc
}

func TestInvoiceRepo_UpsertAndList(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	accounts := NewAccountRepo(database)
	repo := NewInvoiceRepo(database)
	owner := createAccount(t, accounts, "owner@example.com")

	inv := domain.NewInvoice(domain.DefaultTemplate(), time.Now())
	inv.ID = uuid.NewString()

	saved, err := repo.Upsert(ctx, owner.ID, inv)
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.IsZero())

	list, err := repo.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, inv.Equal(list[0]), "stored invoice differs from saved one")
}

func TestInvoiceRepo_UpsertTwiceKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	repo := NewInvoiceRepo(database)
	owner := createAccount(t, NewAccountRepo(database), "owner@example.com")

	inv := domain.NewInvoice(domain.DefaultTemplate(), time.Now())
	inv.ID = uuid.NewString()

	_, err := repo.Upsert(ctx, owner.ID, inv)
	require.NoError(t, err)
	inv.Notes = "second"
	_, err = repo.Upsert(ctx, owner.ID, inv)
	require.NoError(t, err)

	list, err := repo.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second", list[0].Notes)
}

func TestInvoiceRepo_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	repo := NewInvoiceRepo(database)
	owner := createAccount(t, NewAccountRepo(database), "owner@example.com")

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ids := make([]string, 3)
	for i := range ids {
		stamp := base.Add(time.Duration(i) * time.Second)
		repo.now = func() time.Time { return stamp }

		inv := domain.NewInvoice(domain.DefaultTemplate(), base)
		inv.ID = uuid.NewString()
		ids[i] = inv.ID
		_, err := repo.Upsert(ctx, owner.ID, inv)
		require.NoError(t, err)
	}

	list, err := repo.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)
	assert.Equal(t, ids[0], list[2].ID)
}

func TestInvoiceRepo_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	accounts := NewAccountRepo(database)
	repo := NewInvoiceRepo(database)
	alice := createAccount(t, accounts, "alice@example.com")
	bob := createAccount(t, accounts, "bob@example.com")

	inv := domain.NewInvoice(domain.DefaultTemplate(), time.Now())
	inv.ID = uuid.NewString()
	_, err := repo.Upsert(ctx, alice.ID, inv)
	require.NoError(t, err)

	list, err := repo.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = repo.Get(ctx, bob.ID, inv.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	inv.Notes = "hijacked"
	_, err = repo.Upsert(ctx, bob.ID, inv)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, bob.ID, inv.ID), ErrNotFound)

	got, err := repo.Get(ctx, alice.ID, inv.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "hijacked", got.Notes)
}

func TestInvoiceRepo_DeleteMissing(t *testing.T) {
	database := openTestDB(t)
	repo := NewInvoiceRepo(database)
	owner := createAccount(t, NewAccountRepo(database), "owner@example.com")

	err := repo.Delete(context.Background(), owner.ID, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvoiceRepo_MissingTable(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "bare.db"), "test-key")
	require.NoError(t, err)
	defer database.Close()

	_, err = NewInvoiceRepo(database).List(context.Background(), "someone")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTableMissing), "got %v", err)
}

func TestAccountRepo_DuplicateEmail(t *testing.T) {
	database := openTestDB(t)
	accounts := NewAccountRepo(database)
	createAccount(t, accounts, "dup@example.com")

	now := time.Now()
	err := accounts.Create(context.Background(), &domain.Account{
		ID:           uuid.NewString(),
		Email:        "DUP@example.com",
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := accounts.GetByEmail(context.Background(), " Dup@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "dup@example.com", got.Email)
}
