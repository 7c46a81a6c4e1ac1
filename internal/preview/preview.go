package preview

import (
	"strings"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/i18n"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Labels are the translated captions of a rendered invoice
type Labels struct {
	Title       string
	Number      string
	Date        string
	DueDate     string
	From        string
	BillTo      string
	Description string
	Quantity    string
	Price       string
	Amount      string
	Subtotal    string
	Tax         string
	Total       string
	Notes       string
}

type Party struct {
	Name    string
	Email   string
	Address []string
}

type Row struct {
	Description string
	Quantity    string
	Price       string
	Amount      string
}

// Document is an invoice with every value already formatted for display.
// It is what the screen draws and what exporters write.
type Document struct {
	Lang          string
	InvoiceNumber string
	Labels        Labels
	Date          string
	DueDate       string
	From          Party
	To            Party
	Logo          *domain.Logo
	LogoWidth     int
	Rows          []Row
	Subtotal      string
	Tax           string
	Total         string
	Notes         string
}

// Render formats inv. Money uses the currency's own locale so that amounts
// read the same regardless of UI language; quantities and the tax rate use
// tag.
func Render(inv domain.Invoice, tr i18n.Translator, tag language.Tag) Document {
	p := message.NewPrinter(tag)
	totals := domain.ComputeTotals(inv)
	doc := Document{
		Lang:          tr.Lang(),
		InvoiceNumber: inv.InvoiceNumber,
		Labels: Labels{
			Title:       tr.T("invoice.title"),
			Number:      tr.T("invoice.number"),
			Date:        tr.T("invoice.date"),
			DueDate:     tr.T("invoice.dueDate"),
			From:        tr.T("invoice.from"),
			BillTo:      tr.T("invoice.billTo"),
			Description: tr.T("invoice.description"),
			Quantity:    tr.T("invoice.quantity"),
			Price:       tr.T("invoice.price"),
			Amount:      tr.T("invoice.amount"),
			Subtotal:    tr.T("invoice.subtotal"),
			Tax:         tr.T("invoice.tax", "rate", formatNumber(p, inv.TaxRate)),
			Total:       tr.T("invoice.total"),
			Notes:       tr.T("invoice.notes"),
		},
		Date:     inv.Date.String(),
		DueDate:  inv.DueDate.String(),
		From:     renderParty(inv.From),
		To:       renderParty(inv.To),
		Subtotal: domain.FormatAmount(totals.Subtotal, inv.Currency),
		Tax:      domain.FormatAmount(totals.TaxAmount, inv.Currency),
		Total:    domain.FormatAmount(totals.Total, inv.Currency),
		Notes:    strings.TrimSpace(inv.Notes),
	}

	if inv.From.Logo != nil {
		logo := inv.From.Logo.Clone()
		doc.Logo = &logo
		doc.LogoWidth = inv.From.LogoWidth
		if doc.LogoWidth == 0 {
			doc.LogoWidth = domain.DefaultLogoWidth
		}
	}

	doc.Rows = make([]Row, 0, len(inv.Items))
	for _, item := range inv.Items {
		doc.Rows = append(doc.Rows, Row{
			Description: item.Description,
			Quantity:    formatNumber(p, item.Quantity),
			Price:       domain.FormatAmount(decimal.NewFromFloat(item.Price), inv.Currency),
			Amount:      domain.FormatAmount(domain.LineTotal(item), inv.Currency),
		})
	}
	return doc
}

func renderParty(p domain.Party) Party {
	return Party{
		Name:    p.Name,
		Email:   p.Email,
		Address: p.AddressLines(),
	}
}

// formatNumber prints f with up to two fraction digits and no trailing zeros
func formatNumber(p *message.Printer, f float64) string {
	return p.Sprint(number.Decimal(f, number.MaxFractionDigits(2)))
}
