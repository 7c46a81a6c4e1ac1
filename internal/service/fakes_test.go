package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/google/uuid"
)

type fakeIdentity struct {
	id *domain.Identity
}

func signedIn() *fakeIdentity {
	return &fakeIdentity{id: &domain.Identity{UserID: "user-1", Email: "me@example.com"}}
}

func (f *fakeIdentity) Current() (domain.Identity, bool) {
	if f.id == nil {
		return domain.Identity{}, false
	}
	return *f.id, true
}

// fakeStore is an in-memory InvoiceStore
type fakeStore struct {
	mu        sync.Mutex
	rows      map[string]domain.Invoice
	clock     time.Time
	upserts   int
	deletes   int
	upsertErr error
	listErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:  make(map[string]domain.Invoice),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) List(ctx context.Context) ([]domain.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Invoice, 0, len(f.rows))
	for _, inv := range f.rows {
		out = append(out, inv.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (domain.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.rows[id]
	if !ok {
		return domain.Invoice{}, domain.ErrStore
	}
	return inv.Clone(), nil
}

func (f *fakeStore) Upsert(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsertErr != nil {
		return domain.Invoice{}, f.upsertErr
	}
	inv = inv.Clone()
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	f.clock = f.clock.Add(time.Second)
	inv.UpdatedAt = f.clock
	f.rows[inv.ID] = inv
	return inv.Clone(), nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if _, ok := f.rows[id]; !ok {
		return domain.ErrStore
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeStore) DeleteAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.rows))
	f.rows = make(map[string]domain.Invoice)
	return n, nil
}

type fakeWatcher struct {
	subs map[int]func(domain.AuthEvent)
	next int
}

func (w *fakeWatcher) Subscribe(fn func(domain.AuthEvent)) func() {
	if w.subs == nil {
		w.subs = make(map[int]func(domain.AuthEvent))
	}
	id := w.next
	w.next++
	w.subs[id] = fn
	return func() { delete(w.subs, id) }
}

func (w *fakeWatcher) emit(ev domain.AuthEvent) {
	for _, fn := range w.subs {
		fn(ev)
	}
}

func template() domain.Invoice {
	return domain.NewInvoice(domain.DefaultTemplate(), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
}
