package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is the full document being edited. An empty ID marks an unsaved draft.
type Invoice struct {
	ID            string     `json:"id,omitempty"`
	InvoiceNumber string     `json:"invoiceNumber"`
	Date          Date       `json:"date"`
	DueDate       Date       `json:"dueDate"`
	From          Party      `json:"from"`
	To            Party      `json:"to"`
	Items         []LineItem `json:"items"`
	Notes         string     `json:"notes"`
	TaxRate       float64    `json:"taxRate"`
	Currency      Currency   `json:"currency"`

	// UpdatedAt is stamped by the store and is not part of the document body.
	UpdatedAt time.Time `json:"-"`
}

type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
}

// NewLineItem creates an empty line item with a fresh identifier
func NewLineItem() LineItem {
	return LineItem{
		ID:       uuid.NewString(),
		Quantity: 1,
	}
}

// Template holds the values a blank invoice starts with
type Template struct {
	InvoiceNumber string
	From          Party
	To            Party
	Items         []LineItem
	Notes         string
	TaxRate       float64
	Currency      Currency
	DueDays       int
}

// DefaultTemplate returns the stock blank invoice used when nothing is configured
func DefaultTemplate() Template {
	return Template{
		InvoiceNumber: "INV-001",
		From: Party{
			Name:      "Your Company",
			Address:   "123 Your Street, Your City",
			Email:     "your.email@example.com",
			LogoWidth: DefaultLogoWidth,
		},
		To: Party{
			Name:    "Client Company",
			Address: "456 Client Avenue, Client City",
			Email:   "client.email@example.com",
		},
		Items: []LineItem{
			{Description: "Web Development Service", Quantity: 10, Price: 100},
		},
		Notes:    "Thank you for your business. Please pay within 30 days.",
		TaxRate:  5,
		Currency: EUR,
		DueDays:  30,
	}
}

// NewInvoice creates a blank draft from the template, dated today
func NewInvoice(t Template, now time.Time) Invoice {
	today := DateOf(now)
	inv := Invoice{
		InvoiceNumber: t.InvoiceNumber,
		Date:          today,
		DueDate:       today.AddDays(t.DueDays),
		From:          t.From.Clone(),
		To:            t.To.Clone(),
		Notes:         t.Notes,
		TaxRate:       t.TaxRate,
		Currency:      t.Currency,
		Items:         make([]LineItem, 0, len(t.Items)),
	}
	if inv.From.LogoWidth == 0 {
		inv.From.LogoWidth = DefaultLogoWidth
	}
	if !inv.Currency.Valid() {
		inv.Currency = EUR
	}
	// Template items never share identifiers between drafts.
	for _, item := range t.Items {
		item.ID = uuid.NewString()
		inv.Items = append(inv.Items, item)
	}
	return inv
}

// IsDraft returns true if the invoice has never been saved
func (i Invoice) IsDraft() bool {
	return i.ID == ""
}

// Clone returns a deep copy that shares no slices with the receiver
func (i Invoice) Clone() Invoice {
	out := i
	out.From = i.From.Clone()
	out.To = i.To.Clone()
	if i.Items != nil {
		out.Items = make([]LineItem, len(i.Items))
		copy(out.Items, i.Items)
	}
	return out
}

// Equal reports whether two invoices carry the same document content.
// UpdatedAt is ignored.
func (i Invoice) Equal(o Invoice) bool {
	if i.ID != o.ID ||
		i.InvoiceNumber != o.InvoiceNumber ||
		!i.Date.Equal(o.Date.Time) ||
		!i.DueDate.Equal(o.DueDate.Time) ||
		i.Notes != o.Notes ||
		i.TaxRate != o.TaxRate ||
		i.Currency != o.Currency {
		return false
	}
	if !i.From.Equal(o.From) || !i.To.Equal(o.To) {
		return false
	}
	if len(i.Items) != len(o.Items) {
		return false
	}
	for n := range i.Items {
		if i.Items[n] != o.Items[n] {
			return false
		}
	}
	return true
}

// ItemIndex returns the position of the item with the given id, or -1
func (i Invoice) ItemIndex(id string) int {
	for n, item := range i.Items {
		if item.ID == id {
			return n
		}
	}
	return -1
}
