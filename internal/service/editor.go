package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/logger"
)

var ErrSaveInFlight = errors.New("a save is already in progress")

type EditorState int

const (
	StateClean EditorState = iota
	StateDirty
	StateSaving
	StateSaveError
)

func (s EditorState) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	case StateSaveError:
		return "save_error"
	}
	return "unknown"
}

// Editable field paths. Party fields are nested under from./to.
const (
	FieldInvoiceNumber = "invoiceNumber"
	FieldDate          = "date"
	FieldDueDate       = "dueDate"
	FieldNotes         = "notes"
	FieldTaxRate       = "taxRate"
	FieldCurrency      = "currency"
	FieldFromName      = "from.name"
	FieldFromAddress   = "from.address"
	FieldFromEmail     = "from.email"
	FieldFromLogoWidth = "from.logoWidth"
	FieldToName        = "to.name"
	FieldToAddress     = "to.address"
	FieldToEmail       = "to.email"
)

type LineItemField string

const (
	ItemDescription LineItemField = "description"
	ItemQuantity    LineItemField = "quantity"
	ItemPrice       LineItemField = "price"
)

// SaveTicket identifies one in-flight save. The result is only applied if
// the editor is still on the draft the ticket was issued for.
type SaveTicket struct {
	generation uint64
	draftID    string

	// Invoice is the snapshot to send to the store
	Invoice domain.Invoice
}

type SaveOutcome struct {
	// Applied is false when the editor moved to another draft meanwhile
	Applied bool
	// Navigate asks the caller to leave the editor, set after a clean save
	Navigate bool
	Invoice  domain.Invoice
	Err      error
}

// Editor holds one invoice draft and its save lifecycle. Each edit swaps
// in a new draft value; snapshots handed out never change afterwards.
type Editor struct {
	mu sync.Mutex

	store    InvoiceStore
	ident    IdentitySource
	template func() domain.Invoice
	log      *logger.Logger

	baseline   domain.Invoice
	draft      domain.Invoice
	state      EditorState
	generation uint64
	inFlight   *SaveTicket
	lastErr    error
}

// NewEditor creates an editor showing a blank template draft
func NewEditor(store InvoiceStore, ident IdentitySource, template func() domain.Invoice, log *logger.Logger) *Editor {
	e := &Editor{
		store:    store,
		ident:    ident,
		template: template,
		log:      log.Named("editor"),
	}
	e.load(template())
	return e
}

// Load makes inv the new baseline and draft
func (e *Editor) Load(inv domain.Invoice) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.load(inv)
}

// Reset replaces the draft with a fresh blank template
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.load(e.template())
}

func (e *Editor) load(inv domain.Invoice) {
	e.baseline = inv.Clone()
	e.draft = inv.Clone()
	e.state = StateClean
	e.generation++
	e.inFlight = nil
	e.lastErr = nil
}

// Snapshot returns a copy of the current draft
func (e *Editor) Snapshot() domain.Invoice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Clone()
}

func (e *Editor) Baseline() domain.Invoice {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.baseline.Clone()
}

// CurrentID is the persisted id of the open invoice, empty for drafts
func (e *Editor) CurrentID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.ID
}

func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastError is the error from the last failed save, if any
func (e *Editor) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *Editor) Totals() domain.Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.ComputeTotals(e.draft)
}

// edit applies fn to a copy of the draft and swaps it in on success
func (e *Editor) edit(fn func(inv *domain.Invoice) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.draft.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	e.draft = next

	// An in-flight save keeps its state; CompleteSave re-evaluates.
	if e.state == StateSaving {
		return nil
	}
	if e.draft.Equal(e.baseline) {
		e.state = StateClean
	} else {
		e.state = StateDirty
	}
	e.lastErr = nil
	return nil
}

// SetField updates a top-level or party field from its text form
func (e *Editor) SetField(path, raw string) error {
	return e.edit(func(inv *domain.Invoice) error {
		return setField(inv, path, raw)
	})
}

func setField(inv *domain.Invoice, path, raw string) error {
	if side, field, ok := strings.Cut(path, "."); ok {
		var p *domain.Party
		switch side {
		case "from":
			p = &inv.From
		case "to":
			p = &inv.To
		default:
			return unknownField(path)
		}
		return setPartyField(p, side, field, raw)
	}

	switch path {
	case FieldInvoiceNumber:
		inv.InvoiceNumber = raw
	case FieldNotes:
		inv.Notes = raw
	case FieldDate, FieldDueDate:
		d, err := domain.ParseDate(strings.TrimSpace(raw))
		if err != nil {
			return &domain.ValidationError{Field: path, Message: err.Error()}
		}
		if path == FieldDate {
			inv.Date = d
		} else {
			inv.DueDate = d
		}
	case FieldTaxRate:
		rate, err := parseAmount(path, raw)
		if err != nil {
			return err
		}
		inv.TaxRate = rate
	case FieldCurrency:
		c, err := domain.ParseCurrency(raw)
		if err != nil {
			return err
		}
		inv.Currency = c
	default:
		return unknownField(path)
	}
	return nil
}

func setPartyField(p *domain.Party, side, field, raw string) error {
	switch field {
	case "name":
		p.Name = raw
	case "address":
		p.Address = raw
	case "email":
		p.Email = raw
	case "logoWidth":
		if side != "from" {
			return unknownField(side + "." + field)
		}
		width, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return &domain.ValidationError{Field: FieldFromLogoWidth, Message: "logo width must be a whole number"}
		}
		if err := domain.ValidateLogoWidth(width); err != nil {
			return err
		}
		p.LogoWidth = width
	default:
		return unknownField(side + "." + field)
	}
	return nil
}

// parseAmount reads a non-negative number; blank input counts as zero
func parseAmount(field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &domain.ValidationError{Field: field, Message: fmt.Sprintf("%q is not a number", raw)}
	}
	if v < 0 {
		return 0, &domain.ValidationError{Field: field, Message: "must not be negative"}
	}
	return v, nil
}

func unknownField(path string) error {
	return &domain.ValidationError{Field: path, Message: "unknown field"}
}

// AddLineItem appends an empty item and returns its id
func (e *Editor) AddLineItem() string {
	item := domain.NewLineItem()
	_ = e.edit(func(inv *domain.Invoice) error {
		inv.Items = append(inv.Items, item)
		return nil
	})
	return item.ID
}

func (e *Editor) RemoveLineItem(id string) error {
	return e.edit(func(inv *domain.Invoice) error {
		idx := inv.ItemIndex(id)
		if idx < 0 {
			return itemNotFound(id)
		}
		inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
		return nil
	})
}

// UpdateLineItem replaces a single field of one item
func (e *Editor) UpdateLineItem(id string, field LineItemField, raw string) error {
	return e.edit(func(inv *domain.Invoice) error {
		idx := inv.ItemIndex(id)
		if idx < 0 {
			return itemNotFound(id)
		}
		item := &inv.Items[idx]

		switch field {
		case ItemDescription:
			item.Description = raw
		case ItemQuantity, ItemPrice:
			v, err := parseAmount("items."+string(field), raw)
			if err != nil {
				return err
			}
			if field == ItemQuantity {
				item.Quantity = v
			} else {
				item.Price = v
			}
		default:
			return unknownField("items." + string(field))
		}
		return nil
	})
}

func itemNotFound(id string) error {
	return &domain.ValidationError{Field: "items", Message: fmt.Sprintf("line item %s not found", id)}
}

// AttachLogo stores an image on the sender. Oversized or non-image payloads
// and widths outside the allowed range leave the draft untouched.
func (e *Editor) AttachLogo(data []byte, width int) error {
	logo, err := domain.NewLogo(data)
	if err != nil {
		return err
	}
	if err := domain.ValidateLogoWidth(width); err != nil {
		return err
	}
	return e.edit(func(inv *domain.Invoice) error {
		inv.From.Logo = &logo
		inv.From.LogoWidth = width
		return nil
	})
}

func (e *Editor) RemoveLogo() {
	_ = e.edit(func(inv *domain.Invoice) error {
		inv.From.Logo = nil
		return nil
	})
}

// BeginSave moves the editor to Saving and returns the ticket to complete
// once the store answers. It fails without side effects when nobody is
// signed in or a save for this draft is already running.
func (e *Editor) BeginSave() (*SaveTicket, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.ident.Current(); !ok {
		return nil, domain.ErrUnauthenticated
	}
	if e.inFlight != nil {
		return nil, ErrSaveInFlight
	}

	ticket := &SaveTicket{
		generation: e.generation,
		draftID:    e.draft.ID,
		Invoice:    e.draft.Clone(),
	}
	e.inFlight = ticket
	e.state = StateSaving
	e.lastErr = nil
	return ticket, nil
}

// CompleteSave applies the store's answer for ticket
func (e *Editor) CompleteSave(ticket *SaveTicket, saved domain.Invoice, err error) SaveOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ticket == nil || e.inFlight != ticket || ticket.generation != e.generation || ticket.draftID != e.draft.ID {
		e.log.Debug().Str("invoice_id", saved.ID).Msg("discarding stale save result")
		return SaveOutcome{Err: err}
	}
	e.inFlight = nil

	if err != nil {
		e.state = StateSaveError
		e.lastErr = err
		e.log.Warn().Err(err).Msg("save failed")
		return SaveOutcome{Applied: true, Err: err}
	}

	e.baseline = saved.Clone()
	e.draft.ID = saved.ID
	e.draft.UpdatedAt = saved.UpdatedAt

	// Edits made while the save was running stay in the draft.
	if e.draft.Equal(e.baseline) {
		e.state = StateClean
	} else {
		e.state = StateDirty
	}
	e.lastErr = nil

	return SaveOutcome{
		Applied:  true,
		Navigate: e.state == StateClean,
		Invoice:  saved.Clone(),
	}
}

// Save runs a whole save round trip synchronously
func (e *Editor) Save(ctx context.Context) (SaveOutcome, error) {
	ticket, err := e.BeginSave()
	if err != nil {
		return SaveOutcome{}, err
	}
	saved, err := e.store.Upsert(ctx, ticket.Invoice)
	out := e.CompleteSave(ticket, saved, err)
	return out, out.Err
}

// Upsert exposes the store to callers that hold a ticket, so the TUI can
// run the network call in a command
func (e *Editor) Upsert(ctx context.Context, ticket *SaveTicket) (domain.Invoice, error) {
	return e.store.Upsert(ctx, ticket.Invoice)
}

// WatchIdentity resets the draft whenever the user signs out
func (e *Editor) WatchIdentity(w IdentityWatcher) (unsubscribe func()) {
	return w.Subscribe(func(ev domain.AuthEvent) {
		if ev.Kind == domain.SignedOut {
			e.Reset()
		}
	})
}
