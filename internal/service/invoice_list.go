package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/andy/invoicer/internal/domain"
)

// InvoiceList is the view model behind the saved-invoices screen
type InvoiceList struct {
	mu sync.Mutex

	store  InvoiceStore
	editor *Editor

	invoices      []domain.Invoice
	loading       bool
	err           error
	pendingDelete string
}

func NewInvoiceList(store InvoiceStore, editor *Editor) *InvoiceList {
	return &InvoiceList{store: store, editor: editor}
}

// Activate fetches the list. Call it whenever the screen is shown.
func (l *InvoiceList) Activate(ctx context.Context) error {
	return l.refresh(ctx)
}

func (l *InvoiceList) refresh(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	invoices, err := l.store.List(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	l.err = err
	if err != nil {
		return err
	}
	l.invoices = invoices
	return nil
}

// Invoices returns the last fetched list in store order
func (l *InvoiceList) Invoices() []domain.Invoice {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Invoice, len(l.invoices))
	for i, inv := range l.invoices {
		out[i] = inv.Clone()
	}
	return out
}

func (l *InvoiceList) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Err is the error from the last fetch
func (l *InvoiceList) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Select hands the invoice with the given id to the editor
func (l *InvoiceList) Select(id string) (domain.Invoice, error) {
	inv, ok := l.find(id)
	if !ok {
		return domain.Invoice{}, fmt.Errorf("invoice %s is not in the list", id)
	}
	l.editor.Load(inv)
	return inv, nil
}

// NewInvoice hands a blank template to the editor
func (l *InvoiceList) NewInvoice() {
	l.editor.Reset()
}

func (l *InvoiceList) find(id string) (domain.Invoice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, inv := range l.invoices {
		if inv.ID == id {
			return inv.Clone(), true
		}
	}
	return domain.Invoice{}, false
}

// RequestDelete asks for confirmation. Nothing is sent to the store yet.
func (l *InvoiceList) RequestDelete(id string) error {
	if _, ok := l.find(id); !ok {
		return fmt.Errorf("invoice %s is not in the list", id)
	}
	l.mu.Lock()
	l.pendingDelete = id
	l.mu.Unlock()
	return nil
}

// PendingDelete returns the invoice waiting for confirmation, if any
func (l *InvoiceList) PendingDelete() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pendingDelete, l.pendingDelete != ""
}

func (l *InvoiceList) CancelDelete() {
	l.mu.Lock()
	l.pendingDelete = ""
	l.mu.Unlock()
}

// ConfirmDelete deletes the pending invoice and reloads the list. If the
// editor has that invoice open it is reset to a blank draft.
func (l *InvoiceList) ConfirmDelete(ctx context.Context) error {
	l.mu.Lock()
	id := l.pendingDelete
	l.pendingDelete = ""
	l.mu.Unlock()

	if id == "" {
		return nil
	}

	if err := l.store.Delete(ctx, id); err != nil {
		return err
	}

	if l.editor.CurrentID() == id {
		l.editor.Reset()
	}

	return l.refresh(ctx)
}
