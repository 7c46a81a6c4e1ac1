package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
	"github.com/andy/invoicer/internal/preview"
	"github.com/andy/invoicer/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// formField is one input of the editor form. Item fields carry the line
// item id, the rest carry an editor field path.
type formField struct {
	path   string
	itemID string
	item   service.LineItemField
	label  string
	input  textinput.Model
}

func (f formField) key() string {
	if f.itemID != "" {
		return f.itemID + "/" + string(f.item)
	}
	return f.path
}

var headerFields = []struct {
	path  string
	label string
}{
	{service.FieldInvoiceNumber, "invoice.number"},
	{service.FieldDate, "invoice.date"},
	{service.FieldDueDate, "invoice.dueDate"},
	{service.FieldCurrency, "invoice.currency"},
	{service.FieldTaxRate, "invoice.taxRate"},
	{service.FieldFromName, "invoice.from"},
	{service.FieldFromEmail, "invoice.email"},
	{service.FieldFromAddress, "invoice.address"},
	{service.FieldFromLogoWidth, "invoice.logoWidth"},
	{service.FieldToName, "invoice.billTo"},
	{service.FieldToEmail, "invoice.email"},
	{service.FieldToAddress, "invoice.address"},
}

var itemFields = []struct {
	field service.LineItemField
	label string
}{
	{service.ItemDescription, "invoice.description"},
	{service.ItemQuantity, "invoice.quantity"},
	{service.ItemPrice, "invoice.price"},
}

// EditorModel is the invoice form with a live preview
type EditorModel struct {
	app    *app.App
	styles *styles

	fields     []formField
	fieldFocus int
	fieldErrs  map[string]string

	// Logo path prompt
	logoMode  bool
	logoInput textinput.Model
	logoErr   string

	exporting bool
	width     int
}

func newEditorModel(a *app.App, st *styles) *EditorModel {
	m := &EditorModel{
		app:       a,
		styles:    st,
		fieldErrs: map[string]string{},
	}
	m.rebuild(false)
	return m
}

func (m *EditorModel) IsCapturingInput() bool {
	return true
}

func (m *EditorModel) Init() tea.Cmd {
	return nil
}

// activate resyncs the form with the editor's draft, which the list may
// have replaced
func (m *EditorModel) activate() tea.Cmd {
	m.logoMode = false
	m.fieldErrs = map[string]string{}
	m.rebuild(false)
	m.fieldFocus = 0
	return m.focus(0)
}

// rebuild recreates the inputs from the current draft. With keep set,
// inputs that still exist keep their text so invalid entries stay visible.
func (m *EditorModel) rebuild(keep bool) {
	inv := m.app.Editor.Snapshot()

	old := map[string]string{}
	if keep {
		for _, f := range m.fields {
			old[f.key()] = f.input.Value()
		}
	}

	var fields []formField
	for _, h := range headerFields {
		fields = append(fields, formField{path: h.path, label: h.label})
	}
	for _, item := range inv.Items {
		for _, it := range itemFields {
			fields = append(fields, formField{itemID: item.ID, item: it.field, label: it.label})
		}
	}
	fields = append(fields, formField{path: service.FieldNotes, label: "invoice.notes"})

	for i := range fields {
		f := &fields[i]
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 512
		in.Width = 32
		if v, ok := old[f.key()]; ok {
			in.SetValue(v)
		} else {
			in.SetValue(fieldValue(inv, *f))
		}
		f.input = in
	}

	live := map[string]bool{}
	for _, f := range fields {
		live[f.key()] = true
	}
	for k := range m.fieldErrs {
		if !live[k] {
			delete(m.fieldErrs, k)
		}
	}

	m.fields = fields
	if m.fieldFocus >= len(fields) {
		m.fieldFocus = len(fields) - 1
	}
}

func fieldValue(inv domain.Invoice, f formField) string {
	if f.itemID != "" {
		idx := inv.ItemIndex(f.itemID)
		if idx < 0 {
			return ""
		}
		item := inv.Items[idx]
		switch f.item {
		case service.ItemDescription:
			return item.Description
		case service.ItemQuantity:
			return strconv.FormatFloat(item.Quantity, 'f', -1, 64)
		case service.ItemPrice:
			return strconv.FormatFloat(item.Price, 'f', -1, 64)
		}
		return ""
	}

	switch f.path {
	case service.FieldInvoiceNumber:
		return inv.InvoiceNumber
	case service.FieldDate:
		return inv.Date.String()
	case service.FieldDueDate:
		return inv.DueDate.String()
	case service.FieldCurrency:
		return string(inv.Currency)
	case service.FieldTaxRate:
		return strconv.FormatFloat(inv.TaxRate, 'f', -1, 64)
	case service.FieldFromName:
		return inv.From.Name
	case service.FieldFromEmail:
		return inv.From.Email
	case service.FieldFromAddress:
		return inv.From.Address
	case service.FieldFromLogoWidth:
		return strconv.Itoa(logoWidth(inv))
	case service.FieldToName:
		return inv.To.Name
	case service.FieldToEmail:
		return inv.To.Email
	case service.FieldToAddress:
		return inv.To.Address
	case service.FieldNotes:
		return inv.Notes
	}
	return ""
}

func logoWidth(inv domain.Invoice) int {
	if inv.From.LogoWidth > 0 {
		return inv.From.LogoWidth
	}
	return domain.DefaultLogoWidth
}

func (m *EditorModel) focus(i int) tea.Cmd {
	for j := range m.fields {
		m.fields[j].input.Blur()
	}
	if len(m.fields) == 0 {
		return nil
	}
	m.fieldFocus = i
	return m.fields[i].input.Focus()
}

// focusKey moves focus to the field with key k, if it exists
func (m *EditorModel) focusKey(k string) tea.Cmd {
	for i, f := range m.fields {
		if f.key() == k {
			return m.focus(i)
		}
	}
	return m.focus(m.fieldFocus)
}

// apply pushes the focused input's text into the draft
func (m *EditorModel) apply(f formField) {
	ed := m.app.Editor
	var err error
	if f.itemID != "" {
		err = ed.UpdateLineItem(f.itemID, f.item, f.input.Value())
	} else {
		err = ed.SetField(f.path, f.input.Value())
	}

	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			m.fieldErrs[f.key()] = ve.Message
		} else {
			m.fieldErrs[f.key()] = err.Error()
		}
		return
	}
	delete(m.fieldErrs, f.key())
}

func (m *EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	tr := m.app.Translator()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case saveDoneMsg:
		out := m.app.Editor.CompleteSave(msg.ticket, msg.invoice, msg.err)
		if !out.Applied {
			return m, nil
		}
		if out.Err != nil {
			text := tr.T("editor.saveFailed")
			if errors.Is(out.Err, domain.ErrStoreUnavailable) {
				text = tr.T("list.tableMissing")
			}
			return m, showBanner(bannerError, text)
		}
		cmds := []tea.Cmd{showBanner(bannerSuccess, tr.T("editor.saved"))}
		if out.Navigate {
			cmds = append(cmds, switchTo(ScreenList))
		}
		return m, tea.Batch(cmds...)

	case exportDoneMsg:
		m.exporting = false
		if msg.err != nil {
			return m, showBanner(bannerError, tr.T("editor.exportFailed", "error", msg.err.Error()))
		}
		return m, showBanner(bannerSuccess, tr.T("editor.exported", "path", msg.path))

	case tea.KeyMsg:
		if m.logoMode {
			return m.updateLogo(msg)
		}

		switch {
		case key.Matches(msg, DefaultKeyMap.Back):
			return m, switchTo(ScreenList)

		case key.Matches(msg, DefaultKeyMap.Save):
			return m, m.save()

		case key.Matches(msg, DefaultKeyMap.AddItem):
			id := m.app.Editor.AddLineItem()
			m.rebuild(true)
			return m, m.focusKey(id + "/" + string(service.ItemDescription))

		case key.Matches(msg, DefaultKeyMap.RemoveItem):
			return m, m.removeItem()

		case key.Matches(msg, DefaultKeyMap.ExportPDF):
			return m, m.export(export.FormatPDF)

		case key.Matches(msg, DefaultKeyMap.ExportText):
			return m, m.export(export.FormatText)

		case key.Matches(msg, DefaultKeyMap.AttachLogo):
			m.logoMode = true
			m.logoErr = ""
			m.logoInput = textinput.New()
			m.logoInput.Placeholder = "~/logo.png"
			m.logoInput.CharLimit = 1024
			m.logoInput.Width = 48
			return m, m.logoInput.Focus()

		case key.Matches(msg, DefaultKeyMap.RemoveLogo):
			m.app.Editor.RemoveLogo()
			return m, showBanner(bannerInfo, tr.T("editor.logoRemoved"))

		case key.Matches(msg, DefaultKeyMap.NextField, DefaultKeyMap.Submit):
			return m, m.focus((m.fieldFocus + 1) % len(m.fields))

		case key.Matches(msg, DefaultKeyMap.PrevField):
			return m, m.focus((m.fieldFocus - 1 + len(m.fields)) % len(m.fields))
		}

		f := &m.fields[m.fieldFocus]
		if f.path == service.FieldCurrency {
			switch {
			case key.Matches(msg, DefaultKeyMap.Left):
				f.input.SetValue(string(cycleCurrency(domain.Currency(f.input.Value()), -1)))
				m.apply(*f)
				return m, nil
			case key.Matches(msg, DefaultKeyMap.Right):
				f.input.SetValue(string(cycleCurrency(domain.Currency(f.input.Value()), 1)))
				m.apply(*f)
				return m, nil
			}
		}

		before := f.input.Value()
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		if f.input.Value() != before {
			m.apply(*f)
		}
		return m, cmd
	}

	if m.logoMode {
		var cmd tea.Cmd
		m.logoInput, cmd = m.logoInput.Update(msg)
		return m, cmd
	}
	if len(m.fields) > 0 {
		var cmd tea.Cmd
		m.fields[m.fieldFocus].input, cmd = m.fields[m.fieldFocus].input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func cycleCurrency(c domain.Currency, step int) domain.Currency {
	n := len(domain.Currencies)
	for i, cur := range domain.Currencies {
		if cur == c {
			return domain.Currencies[(i+step+n)%n]
		}
	}
	return domain.Currencies[0]
}

func (m *EditorModel) removeItem() tea.Cmd {
	ed := m.app.Editor
	id := m.fields[m.fieldFocus].itemID
	if id == "" {
		items := ed.Snapshot().Items
		if len(items) == 0 {
			return nil
		}
		id = items[len(items)-1].ID
	}
	if err := ed.RemoveLineItem(id); err != nil {
		return showBanner(bannerError, err.Error())
	}
	m.rebuild(true)
	return m.focus(m.fieldFocus)
}

func (m *EditorModel) updateLogo(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tr := m.app.Translator()
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.logoMode = false
		return m, m.focus(m.fieldFocus)

	case key.Matches(msg, DefaultKeyMap.Submit):
		path := expandHome(strings.TrimSpace(m.logoInput.Value()))
		data, err := os.ReadFile(path)
		if err != nil {
			m.logoErr = err.Error()
			return m, nil
		}
		if err := m.app.Editor.AttachLogo(data, logoWidth(m.app.Editor.Snapshot())); err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				m.logoErr = ve.Message
			} else {
				m.logoErr = err.Error()
			}
			return m, nil
		}
		m.logoMode = false
		return m, tea.Batch(m.focus(m.fieldFocus), showBanner(bannerSuccess, tr.T("editor.logoAttached")))
	}

	var cmd tea.Cmd
	m.logoInput, cmd = m.logoInput.Update(msg)
	m.logoErr = ""
	return m, cmd
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

func (m *EditorModel) save() tea.Cmd {
	tr := m.app.Translator()
	ed := m.app.Editor

	ticket, err := ed.BeginSave()
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return showBanner(bannerError, tr.T("auth.required"))
	case errors.Is(err, service.ErrSaveInFlight):
		return showBanner(bannerInfo, tr.T("editor.saveInFlight"))
	case err != nil:
		return showBanner(bannerError, err.Error())
	}

	return func() tea.Msg {
		saved, err := ed.Upsert(context.Background(), ticket)
		return saveDoneMsg{ticket: ticket, invoice: saved, err: err}
	}
}

func (m *EditorModel) export(format export.Format) tea.Cmd {
	if m.exporting {
		return nil
	}
	m.exporting = true
	a := m.app
	inv := a.Editor.Snapshot()
	return func() tea.Msg {
		path, err := a.Export(context.Background(), inv, format)
		return exportDoneMsg{path: path, err: err}
	}
}

func (m *EditorModel) View() string {
	tr := m.app.Translator()
	s := m.styles

	var form strings.Builder
	title := tr.T("nav.new")
	if inv := m.app.Editor.Snapshot(); !inv.IsDraft() {
		title = inv.InvoiceNumber
	}
	form.WriteString(s.title.Render(title) + "  " + m.stateLine() + "\n\n")

	item := 0
	for i, f := range m.fields {
		if f.itemID != "" && f.item == service.ItemDescription {
			item++
			form.WriteString(s.subtitle.Render(fmt.Sprintf("%s #%d", tr.T("invoice.items"), item)) + "\n")
		}
		if f.path == service.FieldNotes {
			form.WriteString(s.subtitle.Render(tr.T("invoice.notes")) + "\n")
		}

		label := padRight(tr.T(f.label), 16)
		if i == m.fieldFocus {
			label = s.focused.Render(label)
		} else {
			label = s.label.Render(label)
		}
		form.WriteString(label + " " + f.input.View() + "\n")
		if msg, ok := m.fieldErrs[f.key()]; ok {
			form.WriteString(padRight("", 17) + s.danger.Render(msg) + "\n")
		}
	}

	if m.logoMode {
		form.WriteString("\n" + s.label.Render(tr.T("editor.logoPath")) + "\n" + m.logoInput.View() + "\n")
		if m.logoErr != "" {
			form.WriteString(s.danger.Render(m.logoErr) + "\n")
		}
		form.WriteString(s.help.Render(tr.T("help.logo")))
	} else {
		form.WriteString("\n" + s.help.Render(tr.T("help.editor")))
	}

	doc := m.app.Render(m.app.Editor.Snapshot())
	previewWidth := 56
	if m.width > 0 {
		previewWidth = max(m.width-70, 40)
	}
	pane := s.box.Width(previewWidth).Render(m.renderPreview(doc, previewWidth-4))

	return lipgloss.JoinHorizontal(lipgloss.Top, form.String(), "  ", pane)
}

func (m *EditorModel) stateLine() string {
	tr := m.app.Translator()
	s := m.styles
	switch m.app.Editor.State() {
	case service.StateDirty:
		return s.warning.Render("● " + tr.T("editor.unsaved"))
	case service.StateSaving:
		return s.subtitle.Render(tr.T("editor.saving"))
	case service.StateSaveError:
		return s.danger.Render(tr.T("editor.saveFailed"))
	}
	return ""
}

// renderPreview draws the formatted document the exporters write
func (m *EditorModel) renderPreview(doc preview.Document, width int) string {
	s := m.styles
	l := doc.Labels
	var b strings.Builder

	b.WriteString(s.docTitle.Render(l.Title))
	if doc.Logo != nil {
		b.WriteString(s.subtitle.Render(fmt.Sprintf("  [%s %dpx]", doc.Logo.MIMEType, doc.LogoWidth)))
	}
	b.WriteString("\n\n")

	meta := func(label, value string) {
		b.WriteString(s.docLabel.Render(padRight(label+":", 12)) + s.text.Render(value) + "\n")
	}
	meta(l.Number, doc.InvoiceNumber)
	meta(l.Date, doc.Date)
	meta(l.DueDate, doc.DueDate)
	b.WriteString("\n")

	party := func(p preview.Party) string {
		lines := []string{s.text.Bold(true).Render(p.Name)}
		for _, a := range p.Address {
			lines = append(lines, s.text.Render(a))
		}
		if p.Email != "" {
			lines = append(lines, s.subtitle.Render(p.Email))
		}
		return strings.Join(lines, "\n")
	}
	half := width / 2
	from := lipgloss.NewStyle().Width(half).Render(s.docLabel.Render(l.From) + "\n" + party(doc.From))
	to := lipgloss.NewStyle().Width(width - half).Render(s.docLabel.Render(l.BillTo) + "\n" + party(doc.To))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, from, to) + "\n\n")

	amountW := 14
	qtyW := 6
	descW := max(width-qtyW-2*amountW-3, 8)
	b.WriteString(s.docLabel.Render(fmt.Sprintf("%s %s %s %s",
		padRight(l.Description, descW),
		padLeft(l.Quantity, qtyW),
		padLeft(l.Price, amountW),
		padLeft(l.Amount, amountW),
	)) + "\n")
	b.WriteString(s.divider.Render(strings.Repeat("─", width)) + "\n")
	for _, r := range doc.Rows {
		b.WriteString(s.text.Render(fmt.Sprintf("%s %s %s %s",
			padRight(r.Description, descW),
			padLeft(r.Quantity, qtyW),
			padLeft(r.Price, amountW),
			padLeft(r.Amount, amountW),
		)) + "\n")
	}
	b.WriteString(s.divider.Render(strings.Repeat("─", width)) + "\n")

	total := func(label, value string, st lipgloss.Style) {
		b.WriteString(st.Render(padLeft(label, width-amountW-1)+" "+padLeft(value, amountW)) + "\n")
	}
	total(l.Subtotal, doc.Subtotal, s.text)
	total(l.Tax, doc.Tax, s.text)
	total(l.Total, doc.Total, s.docTotal)

	if doc.Notes != "" {
		b.WriteString("\n" + s.docLabel.Render(l.Notes) + "\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Render(s.subtitle.Render(doc.Notes)) + "\n")
	}
	return b.String()
}
