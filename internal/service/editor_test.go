package service

import (
	"context"
	"errors"
	"testing"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEditor(store InvoiceStore, ident IdentitySource) *Editor {
	return NewEditor(store, ident, template, logger.Nop())
}

func singleItemDraft() domain.Invoice {
	inv := template()
	inv.Items = []domain.LineItem{{ID: "item-1", Description: "Work", Quantity: 10, Price: 100}}
	inv.TaxRate = 5
	return inv
}

func assertDecimal(t *testing.T, want float64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.NewFromFloat(want).Equal(got), "want %v, got %s", want, got)
}

func TestEditor_TotalsForLoadedDraft(t *testing.T) {
	e := newTestEditor(newFakeStore(), signedIn())
	e.Load(singleItemDraft())

	totals := e.Totals()
	assertDecimal(t, 1000, totals.Subtotal)
	assertDecimal(t, 50, totals.TaxAmount)
	assertDecimal(t, 1050, totals.Total)
	assert.Equal(t, StateClean, e.State())
}

func TestEditor_AddSecondItemRecomputes(t *testing.T) {
	e := newTestEditor(newFakeStore(), signedIn())
	e.Load(singleItemDraft())

	id := e.AddLineItem()
	require.NoError(t, e.UpdateLineItem(id, ItemQuantity, "2"))
	require.NoError(t, e.UpdateLineItem(id, ItemPrice, "25"))

	totals := e.Totals()
	assertDecimal(t, 1050, totals.Subtotal)
	assertDecimal(t, 52.5, totals.TaxAmount)
	assertDecimal(t, 1102.5, totals.Total)
	assert.Equal(t, StateDirty, e.State())
}

func TestEditor_AddLineItemDefaults(t *testing.T) {
	e := newTestEditor(newFakeStore(), signedIn())
	before := len(e.Snapshot().Items)

	id := e.AddLineItem()

	items := e.Snapshot().Items
	require.Len(t, items, before+1)
	last := items[len(items)-1]
	assert.Equal(t, id, last.ID)
	assert.Equal(t, 1.0, last.Quantity)
	assert.Equal(t, 0.0, last.Price)
}

func TestEditor_RemovedItemIDsAreNotReused(t *testing.T) {
	e := newTestEditor(newFakeStore(), signedIn())

	first := e.AddLineItem()
	require.NoError(t, e.RemoveLineItem(first))
	second := e.AddLineItem()

	assert.NotEqual(t, first, second)
	assert.Equal(t, -1, e.Snapshot().ItemIndex(first))
}

func TestEditor_UpdateLineItemTouchesOnlyOneField(t *testing.T) {
	e := newTestEditor(newFakeStore(), signedIn())
	e.Load(singleItemDraft())

	require.NoError(t, e.UpdateLineItem("item-1", ItemDescription, "Design"))

	item := e.Snapshot().Items[0]
	assert.Equal(t, "item-1", item.ID)
	assert.Equal(t, "Design", item.Description)
	assert.Equal(t, 10.0, item.Quantity)
	assert.Equal(t, 100.0, item.Price)
}

func TestEditor_SnapshotsAreNotMutatedByLaterEdits(t *testing.T) {
	e := newTestEditor(newFakeStore(), signedIn())
	e.Load(singleItemDraft())

	before := e.Snapshot()
	require.NoError(t, e.SetField(FieldToName, "Acme"))
	require.NoError(t, e.UpdateLineItem("item-1", ItemPrice, "200"))

	assert.Equal(t, "Client Company", before.To.Name)
	assert.Equal(t, 100.0, before.Items[0].Price)
	assert.Equal(t, "Acme", e.Snapshot().To.Name)
}

func TestEditor_SetFieldPaths(t *testing.T) {
	e := newTestEditor(newFakeStore(), signedIn())

	require.NoError(t, e.SetField(FieldInvoiceNumber, "INV-042"))
	require.NoError(t, e.SetField(FieldDate, "2026-04-01"))
	require.NoError(t, e.SetField(FieldTaxRate, "21"))
	require.NoError(t, e.SetField(FieldCurrency, "gbp"))
	require.NoError(t, e.SetField(FieldFromEmail, "billing@me.test"))
	require.NoError(t, e.SetField(FieldFromLogoWidth, "200"))

	inv := e.Snapshot()
	assert.Equal(t, "INV-042", inv.InvoiceNumber)
	assert.Equal(t, "2026-04-01", inv.Date.String())
	assert.Equal(t, 21.0, inv.TaxRate)
	assert.Equal(t, domain.GBP, inv.Currency)
	assert.Equal(t, "billing@me.test", inv.From.Email)
	assert.Equal(t, 200, inv.From.LogoWidth)
}

func TestEditor_InvalidFieldLeavesDraftUnchanged(t *testing.T) {
	tests := []struct {
		path, raw string
	}{
		{FieldTaxRate, "abc"},
		{FieldTaxRate, "-1"},
		{FieldDueDate, "31/12/2026"},
		{FieldCurrency, "BTC"},
		{FieldFromLogoWidth, "500"},
		{"to.logoWidth", "100"},
		{"bogus", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.path+"="+tt.raw, func(t *testing.T) {
			e := newTestEditor(newFakeStore(), signedIn())
			before := e.Snapshot()

			err := e.SetField(tt.path, tt.raw)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.True(t, before.Equal(e.Snapshot()))
			assert.Equal(t, StateClean, e.State())
		})
	}
}

func TestEditor_EditBackToBaselineIsClean(t *testing.T) {
	e := newTestEditor(newFakeStore(), signedIn())
	orig := e.Snapshot().Notes

	require.NoError(t, e.SetField(FieldNotes, "something else"))
	assert.Equal(t, StateDirty, e.State())

	require.NoError(t, e.SetField(FieldNotes, orig))
	assert.Equal(t, StateClean, e.State())
}

func TestEditor_SaveWhileSignedOut(t *testing.T) {
	store := newFakeStore()
	e := newTestEditor(store, &fakeIdentity{})
	require.NoError(t, e.SetField(FieldNotes, "pending"))
	before := e.Snapshot()

	_, err := e.Save(context.Background())

	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.True(t, before.Equal(e.Snapshot()))
	assert.Equal(t, StateDirty, e.State())
	assert.Equal(t, 0, store.upserts)
}

func TestEditor_SaveSuccess(t *testing.T) {
	store := newFakeStore()
	e := newTestEditor(store, signedIn())
	require.NoError(t, e.SetField(FieldNotes, "first save"))

	out, err := e.Save(context.Background())

	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.True(t, out.Navigate)
	assert.NotEmpty(t, out.Invoice.ID)
	assert.Equal(t, StateClean, e.State())
	assert.Equal(t, out.Invoice.ID, e.CurrentID())
	assert.Equal(t, out.Invoice.ID, e.Baseline().ID)
}

func TestEditor_SecondSaveWhileInFlightIsRejected(t *testing.T) {
	e := newTestEditor(newFakeStore(), signedIn())

	ticket, err := e.BeginSave()
	require.NoError(t, err)
	assert.Equal(t, StateSaving, e.State())

	_, err = e.BeginSave()
	assert.ErrorIs(t, err, ErrSaveInFlight)

	e.CompleteSave(ticket, ticket.Invoice, errors.New("boom"))
	_, err = e.BeginSave()
	assert.NoError(t, err, "a new save is allowed once the first finished")
}

func TestEditor_EditsDuringSaveAreKept(t *testing.T) {
	store := newFakeStore()
	e := newTestEditor(store, signedIn())

	ticket, err := e.BeginSave()
	require.NoError(t, err)

	require.NoError(t, e.SetField(FieldNotes, "typed while saving"))
	assert.Equal(t, StateSaving, e.State())

	saved, err := store.Upsert(context.Background(), ticket.Invoice)
	require.NoError(t, err)
	out := e.CompleteSave(ticket, saved, nil)

	assert.True(t, out.Applied)
	assert.False(t, out.Navigate)
	assert.Equal(t, StateDirty, e.State())
	assert.Equal(t, "typed while saving", e.Snapshot().Notes)
	assert.Equal(t, saved.ID, e.CurrentID())
}

func TestEditor_StaleSaveResultIsDiscarded(t *testing.T) {
	store := newFakeStore()
	e := newTestEditor(store, signedIn())

	ticket, err := e.BeginSave()
	require.NoError(t, err)

	other := singleItemDraft()
	other.ID = "other-invoice"
	e.Load(other)

	saved, err := store.Upsert(context.Background(), ticket.Invoice)
	require.NoError(t, err)
	out := e.CompleteSave(ticket, saved, nil)

	assert.False(t, out.Applied)
	assert.Equal(t, "other-invoice", e.CurrentID())
	assert.Equal(t, StateClean, e.State())
}

func TestEditor_SaveFailureThenRetry(t *testing.T) {
	store := newFakeStore()
	store.upsertErr = domain.ErrStore
	e := newTestEditor(store, signedIn())
	require.NoError(t, e.SetField(FieldNotes, "keep me"))

	_, err := e.Save(context.Background())
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.Equal(t, StateSaveError, e.State())
	assert.ErrorIs(t, e.LastError(), domain.ErrStore)
	assert.Equal(t, "keep me", e.Snapshot().Notes)

	require.NoError(t, e.SetField(FieldNotes, "keep me too"))
	assert.Equal(t, StateDirty, e.State())
	assert.NoError(t, e.LastError())

	store.upsertErr = nil
	_, err = e.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateClean, e.State())
}

func TestEditor_OversizedLogoIsRejected(t *testing.T) {
	e := newTestEditor(newFakeStore(), signedIn())
	before := e.Snapshot()

	payload := make([]byte, 3*1024*1024)
	copy(payload, []byte("\x89PNG\r\n\x1a\n"))

	err := e.AttachLogo(payload, 150)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Nil(t, e.Snapshot().From.Logo)
	assert.True(t, before.Equal(e.Snapshot()))
	assert.Equal(t, StateClean, e.State())
}

func TestEditor_AttachLogo(t *testing.T) {
	e := newTestEditor(newFakeStore(), signedIn())
	payload := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

	require.NoError(t, e.AttachLogo(payload, 120))

	inv := e.Snapshot()
	require.NotNil(t, inv.From.Logo)
	assert.Equal(t, "image/png", inv.From.Logo.MIMEType)
	assert.Equal(t, 120, inv.From.LogoWidth)

	e.RemoveLogo()
	assert.Nil(t, e.Snapshot().From.Logo)
}

func TestEditor_SignOutResetsDraft(t *testing.T) {
	watcher := &fakeWatcher{}
	e := newTestEditor(newFakeStore(), signedIn())
	unsubscribe := e.WatchIdentity(watcher)

	loaded := singleItemDraft()
	loaded.ID = "abc"
	e.Load(loaded)

	watcher.emit(domain.AuthEvent{Kind: domain.SignedIn})
	assert.Equal(t, "abc", e.CurrentID())

	watcher.emit(domain.AuthEvent{Kind: domain.SignedOut})
	assert.Empty(t, e.CurrentID())
	assert.Equal(t, "INV-001", e.Snapshot().InvoiceNumber)

	unsubscribe()
	assert.Empty(t, watcher.subs)
}
