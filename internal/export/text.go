package export

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/andy/invoicer/internal/preview"
)

const textWidth = 64

type textPacker struct{}

// Text renders doc as a plain-text invoice
func Text(doc preview.Document) string {
	data, _ := textPacker{}.Pack(doc, Options{})
	return string(data)
}

func (textPacker) Pack(doc preview.Document, _ Options) ([]byte, error) {
	var b strings.Builder

	sep := strings.Repeat("=", textWidth)
	line := strings.Repeat("-", textWidth)
	l := doc.Labels

	b.WriteString(l.Title + "\n")
	b.WriteString(sep + "\n")
	b.WriteString(fmt.Sprintf("%-12s %s\n", l.Number+":", doc.InvoiceNumber))
	b.WriteString(fmt.Sprintf("%-12s %s\n", l.Date+":", doc.Date))
	b.WriteString(fmt.Sprintf("%-12s %s\n", l.DueDate+":", doc.DueDate))

	writeParty(&b, l.From, doc.From)
	writeParty(&b, l.BillTo, doc.To)

	b.WriteString("\n" + line + "\n")
	b.WriteString(fmt.Sprintf("%-28s %8s %12s %13s\n",
		clip(l.Description, 28), clip(l.Quantity, 8), clip(l.Price, 12), clip(l.Amount, 13)))
	b.WriteString(line + "\n")
	for _, r := range doc.Rows {
		b.WriteString(fmt.Sprintf("%-28s %8s %12s %13s\n",
			clip(r.Description, 28), r.Quantity, r.Price, r.Amount))
	}
	b.WriteString(line + "\n")

	total := func(label, value string) {
		b.WriteString(fmt.Sprintf("%*s %14s\n", textWidth-15, label+":", value))
	}
	total(l.Subtotal, doc.Subtotal)
	total(l.Tax, doc.Tax)
	total(l.Total, doc.Total)
	b.WriteString(sep + "\n")

	if doc.Notes != "" {
		b.WriteString("\n" + l.Notes + ":\n")
		for _, n := range strings.Split(doc.Notes, "\n") {
			b.WriteString("  " + n + "\n")
		}
	}

	return []byte(b.String()), nil
}

func writeParty(b *strings.Builder, label string, p preview.Party) {
	b.WriteString("\n" + label + ":\n")
	for _, s := range append([]string{p.Name, p.Email}, p.Address...) {
		if s != "" {
			b.WriteString("  " + s + "\n")
		}
	}
}

// clip shortens s to at most n runes
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
