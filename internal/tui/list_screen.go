package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ListModel shows the saved invoices of the signed-in account
type ListModel struct {
	app    *app.App
	styles *styles

	cursor   int
	loading  bool
	err      error
	deleting bool
}

func newListModel(a *app.App, st *styles) *ListModel {
	return &ListModel{app: a, styles: st}
}

// IsCapturingInput keeps global keys away from the delete dialog
func (m *ListModel) IsCapturingInput() bool {
	_, pending := m.app.List.PendingDelete()
	return pending
}

func (m *ListModel) Init() tea.Cmd {
	return nil
}

func (m *ListModel) activate() tea.Cmd {
	m.app.List.CancelDelete()
	return m.load()
}

func (m *ListModel) load() tea.Cmd {
	m.loading = true
	list := m.app.List
	return func() tea.Msg {
		return invoicesLoadedMsg{err: list.Activate(context.Background())}
	}
}

func (m *ListModel) selected() (domain.Invoice, bool) {
	invoices := m.app.List.Invoices()
	if m.cursor < 0 || m.cursor >= len(invoices) {
		return domain.Invoice{}, false
	}
	return invoices[m.cursor], true
}

func (m *ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case invoicesLoadedMsg:
		m.loading = false
		m.err = msg.err
		if n := len(m.app.List.Invoices()); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}
		return m, nil

	case deleteDoneMsg:
		m.deleting = false
		tr := m.app.Translator()
		if msg.err != nil {
			return m, showBanner(bannerError, tr.T("list.deleteFailed"))
		}
		if n := len(m.app.List.Invoices()); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}
		return m, showBanner(bannerSuccess, tr.T("list.deleted"))

	case tea.KeyMsg:
		if _, pending := m.app.List.PendingDelete(); pending {
			return m.updateConfirm(msg)
		}
		if m.deleting {
			return m, nil
		}

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.app.List.Invoices())-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.Select):
			inv, ok := m.selected()
			if !ok {
				return m, nil
			}
			if _, err := m.app.List.Select(inv.ID); err != nil {
				return m, showBanner(bannerError, err.Error())
			}
			return m, switchTo(ScreenEditor)
		case key.Matches(msg, DefaultKeyMap.New):
			m.app.List.NewInvoice()
			return m, switchTo(ScreenEditor)
		case key.Matches(msg, DefaultKeyMap.Delete):
			if inv, ok := m.selected(); ok {
				_ = m.app.List.RequestDelete(inv.ID)
			}
		case key.Matches(msg, DefaultKeyMap.Refresh):
			return m, m.load()
		}
	}
	return m, nil
}

func (m *ListModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Confirm):
		m.deleting = true
		list := m.app.List
		return m, func() tea.Msg {
			return deleteDoneMsg{err: list.ConfirmDelete(context.Background())}
		}
	case key.Matches(msg, DefaultKeyMap.Cancel):
		m.app.List.CancelDelete()
	}
	return m, nil
}

func (m *ListModel) View() string {
	tr := m.app.Translator()
	s := m.styles

	if id, pending := m.app.List.PendingDelete(); pending {
		number := id
		for _, inv := range m.app.List.Invoices() {
			if inv.ID == id {
				number = inv.InvoiceNumber
			}
		}
		dialog := s.dialog.Render(
			s.warning.Render(tr.T("list.confirmDelete", "number", number)) + "\n\n" +
				s.help.Render(tr.T("help.confirm")),
		)
		return lipgloss.NewStyle().Padding(2, 4).Render(dialog)
	}

	var b strings.Builder
	b.WriteString(s.title.Render(tr.T("list.title")) + "\n\n")

	switch {
	case m.err != nil:
		if errors.Is(m.err, domain.ErrStoreUnavailable) {
			b.WriteString(s.danger.Render(tr.T("list.tableMissing")))
		} else {
			b.WriteString(s.danger.Render(tr.T("list.loadFailed")) + "\n")
			b.WriteString(s.subtitle.Render(m.err.Error()))
		}
		return b.String()
	case m.loading && len(m.app.List.Invoices()) == 0:
		b.WriteString(s.subtitle.Render(tr.T("list.loading")))
		return b.String()
	}

	invoices := m.app.List.Invoices()
	if len(invoices) == 0 {
		b.WriteString(s.subtitle.Render(tr.T("list.empty")) + "\n\n")
		b.WriteString(s.help.Render(tr.T("help.list")))
		return b.String()
	}

	header := fmt.Sprintf("  %s %s %s %s  %s",
		padRight(tr.T("invoice.number"), 14),
		padRight(tr.T("invoice.billTo"), 24),
		padRight(tr.T("invoice.dueDate"), 11),
		padLeft(tr.T("invoice.total"), 16),
		tr.T("list.updated"),
	)
	b.WriteString(s.label.Render(header) + "\n")

	for i, inv := range invoices {
		row := fmt.Sprintf("%s %s %s %s  %s",
			padRight(inv.InvoiceNumber, 14),
			padRight(inv.To.Name, 24),
			padRight(inv.DueDate.String(), 11),
			padLeft(domain.FormatAmount(domain.ComputeTotals(inv).Total, inv.Currency), 16),
			inv.UpdatedAt.Local().Format("2006-01-02 15:04"),
		)
		if i == m.cursor {
			b.WriteString(s.selected.Render("> "+row) + "\n")
		} else {
			b.WriteString(s.text.Render("  "+row) + "\n")
		}
	}

	if m.loading {
		b.WriteString("\n" + s.subtitle.Render(tr.T("list.loading")))
	}
	b.WriteString("\n" + s.help.Render(tr.T("help.list")))
	return b.String()
}
