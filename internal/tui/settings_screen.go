package tui

import (
	"context"
	"strings"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/i18n"
	"github.com/andy/invoicer/internal/prefs"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	settingsRowLanguage = iota
	settingsRowTheme
	settingsRowSignOut
	settingsRowCount
)

// languageNames are shown in their own language
var languageNames = map[string]string{
	"en": "English",
	"vi": "Tiếng Việt",
	"nl": "Nederlands",
}

type signOutDoneMsg struct {
	err error
}

// SettingsModel manages the language, theme and account settings
type SettingsModel struct {
	app    *app.App
	styles *styles
	cursor int
}

func newSettingsModel(a *app.App, st *styles) *SettingsModel {
	return &SettingsModel{app: a, styles: st}
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

func (m *SettingsModel) activate() tea.Cmd {
	m.cursor = settingsRowLanguage
	return nil
}

func (m *SettingsModel) rows() int {
	if _, ok := m.app.Auth.Current(); ok {
		return settingsRowCount
	}
	return settingsRowSignOut
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case signOutDoneMsg:
		if msg.err != nil {
			return m, showBanner(bannerError, msg.err.Error())
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Back):
			return m, switchTo(ScreenList)
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < m.rows()-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.Left):
			return m, m.change(-1)
		case key.Matches(msg, DefaultKeyMap.Right, DefaultKeyMap.Select):
			return m, m.change(1)
		}
	}
	return m, nil
}

// change applies the action of the row under the cursor
func (m *SettingsModel) change(step int) tea.Cmd {
	store := m.app.Prefs
	tr := m.app.Translator()

	switch m.cursor {
	case settingsRowLanguage:
		langs := i18n.Languages
		cur := store.Get().Language
		next := langs[0]
		for i, l := range langs {
			if l == cur {
				next = langs[(i+step+len(langs))%len(langs)]
			}
		}
		if err := store.SetLanguage(next); err != nil {
			return showBanner(bannerError, err.Error())
		}
		return showBanner(bannerSuccess, m.app.Catalog.For(next).T("settings.saved"))

	case settingsRowTheme:
		if _, err := store.ToggleTheme(); err != nil {
			return showBanner(bannerError, err.Error())
		}
		return showBanner(bannerSuccess, tr.T("settings.saved"))

	case settingsRowSignOut:
		if step < 0 {
			return nil
		}
		svc := m.app.Auth
		return func() tea.Msg {
			return signOutDoneMsg{err: svc.SignOut(context.Background())}
		}
	}
	return nil
}

func (m *SettingsModel) View() string {
	tr := m.app.Translator()
	s := m.styles
	p := m.app.Prefs.Get()

	themeName := tr.T("settings.light")
	if p.Theme == prefs.ThemeDark {
		themeName = tr.T("settings.dark")
	}

	type row struct{ label, value string }
	rows := []row{
		{tr.T("settings.language"), "‹ " + languageNames[p.Language] + " ›"},
		{tr.T("settings.theme"), "‹ " + themeName + " ›"},
	}
	if id, ok := m.app.Auth.Current(); ok {
		rows = append(rows, row{tr.T("settings.account"), id.Email + "  [" + tr.T("settings.signOut") + "]"})
	}

	var b strings.Builder
	b.WriteString(s.title.Render(tr.T("settings.title")) + "\n\n")
	for i, r := range rows {
		line := padRight(r.label, 16) + " " + r.value
		if i == m.cursor {
			b.WriteString(s.selected.Render("> "+line) + "\n")
		} else {
			b.WriteString(s.text.Render("  "+line) + "\n")
		}
	}
	b.WriteString("\n" + s.help.Render(tr.T("help.settings")))
	return b.String()
}
