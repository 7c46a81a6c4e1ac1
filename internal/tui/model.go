package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/i18n"
	"github.com/andy/invoicer/internal/prefs"
	"github.com/andy/invoicer/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenAuth Screen = iota
	ScreenList
	ScreenEditor
	ScreenSettings
)

// titleKey returns the catalog key of the screen title
func (s Screen) titleKey() string {
	switch s {
	case ScreenAuth:
		return "auth.signIn"
	case ScreenList:
		return "list.title"
	case ScreenEditor:
		return "editor.title"
	case ScreenSettings:
		return "settings.title"
	}
	return "app.title"
}

// screen is implemented by every screen model. activate is called each
// time the screen is shown.
type screen interface {
	tea.Model
	activate() tea.Cmd
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

// Model is the root Bubble Tea model
type Model struct {
	app    *app.App
	styles *styles
	events chan tea.Msg

	currentScreen Screen
	screens       map[Screen]screen
	width         int
	height        int

	banner   string
	bannerOK bannerKind
	bannerID int
	quitMsg  string
}

// New creates a new root model. Collaborator events are delivered on events.
func New(a *app.App, events chan tea.Msg) Model {
	st := newStyles(a.Prefs.Get().Theme)
	m := Model{
		app:    a,
		styles: st,
		events: events,
		screens: map[Screen]screen{
			ScreenAuth:     newAuthModel(a, st),
			ScreenList:     newListModel(a, st),
			ScreenEditor:   newEditorModel(a, st),
			ScreenSettings: newSettingsModel(a, st),
		},
	}
	if _, ok := a.Auth.Current(); ok {
		m.currentScreen = ScreenList
	}
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.events),
		m.screens[m.currentScreen].activate(),
	)
}

func (m Model) tr() i18n.Translator {
	return m.app.Translator()
}

func (m *Model) switchScreen(s Screen) tea.Cmd {
	if s != ScreenAuth && s != ScreenSettings {
		if _, ok := m.app.Auth.Current(); !ok {
			s = ScreenAuth
		}
	}
	m.currentScreen = s
	return m.screens[s].activate()
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.screens[m.currentScreen].(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, m.broadcast(msg)

	case tea.KeyMsg:
		// Clear quit warning on any keypress
		m.quitMsg = ""

		if msg.String() == "ctrl+c" {
			return m.quit()
		}

		// Skip global navigation when a screen is capturing text input
		if !m.activeScreenCapturingInput() {
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				return m.quit()

			case key.Matches(msg, DefaultKeyMap.List) && m.currentScreen != ScreenList:
				return m, m.switchScreen(ScreenList)

			case key.Matches(msg, DefaultKeyMap.Settings) && m.currentScreen != ScreenSettings:
				return m, m.switchScreen(ScreenSettings)
			}
		}

	case SwitchScreenMsg:
		return m, m.switchScreen(msg.Screen)

	case bannerMsg:
		m.bannerID++
		m.banner = msg.text
		m.bannerOK = msg.kind
		id := m.bannerID
		return m, tea.Tick(bannerTimeout, func(time.Time) tea.Msg { return clearBannerMsg{id: id} })

	case clearBannerMsg:
		if msg.id == m.bannerID {
			m.banner = ""
		}
		return m, nil

	case authEventMsg:
		return m, tea.Batch(waitForEvent(m.events), m.handleAuthEvent(msg.event))

	case prefsEventMsg:
		m.styles.apply(msg.prefs.Theme)
		return m, tea.Batch(waitForEvent(m.events), m.broadcast(msg))

	case authDoneMsg:
		return m, m.route(ScreenAuth, msg)

	case invoicesLoadedMsg, deleteDoneMsg:
		return m, m.route(ScreenList, msg)

	case saveDoneMsg, exportDoneMsg:
		return m, m.route(ScreenEditor, msg)
	}

	return m, m.route(m.currentScreen, msg)
}

func (m *Model) handleAuthEvent(ev domain.AuthEvent) tea.Cmd {
	tr := m.tr()
	switch ev.Kind {
	case domain.SignedIn:
		m.screens[ScreenEditor] = newEditorModel(m.app, m.styles)
		return tea.Batch(
			m.switchScreen(ScreenList),
			showBanner(bannerSuccess, tr.T("auth.signedInAs", "email", ev.Identity.Email)),
		)
	case domain.SignedOut:
		return tea.Batch(
			m.switchScreen(ScreenAuth),
			showBanner(bannerInfo, tr.T("auth.signedOut")),
		)
	case domain.PasswordUpdated:
		return showBanner(bannerSuccess, tr.T("auth.passwordUpdated"))
	}
	return nil
}

// route delivers msg to one screen
func (m *Model) route(s Screen, msg tea.Msg) tea.Cmd {
	updated, cmd := m.screens[s].Update(msg)
	m.screens[s] = updated.(screen)
	return cmd
}

// broadcast delivers msg to every screen
func (m *Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for s := range m.screens {
		cmds = append(cmds, m.route(s, msg))
	}
	return tea.Batch(cmds...)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.app.Editor.State() == service.StateSaving {
		m.quitMsg = m.tr().T("app.quitBlocked")
		return m, nil
	}
	return m, tea.Quit
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	tr := m.tr()
	s := m.styles

	// Header
	title := fmt.Sprintf("%s - %s", tr.T("app.title"), tr.T(m.currentScreen.titleKey()))
	header := s.header.Render(title)
	if id, ok := m.app.Auth.Current(); ok {
		header += s.subtitle.Render("  " + id.Email)
	}

	// Footer with navigation keys
	var nav []string
	if _, ok := m.app.Auth.Current(); ok {
		nav = append(nav, "[l] "+tr.T("nav.list"))
	}
	nav = append(nav, "[,] "+tr.T("nav.settings"), "[esc] "+tr.T("nav.back"), "[q] "+tr.T("nav.quit"))
	footer := s.footer.Render(strings.Join(nav, "  "))

	content := m.screens[m.currentScreen].View()

	// Banner/warning display
	notice := ""
	switch {
	case m.quitMsg != "":
		notice = "\n" + s.warning.Render(m.quitMsg)
	case m.banner != "":
		style := s.text
		switch m.bannerOK {
		case bannerSuccess:
			style = s.success
		case bannerError:
			style = s.danger
		}
		notice = "\n" + style.Render(m.banner)
	}

	// Divider line between header and content
	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	divider := s.divider.Render(strings.Repeat("─", innerWidth-2))

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, notice, divider, footer)

	// Wrap in border, sized to terminal
	frame := s.frame.
		Width(innerWidth).
		Height(m.height - 4) // leave room for border top/bottom
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI
func Run(a *app.App) error {
	events := make(chan tea.Msg, 16)
	done := make(chan struct{})
	forward := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-done:
		}
	}

	unsubAuth := a.Auth.Subscribe(func(ev domain.AuthEvent) { forward(authEventMsg{event: ev}) })
	unsubPrefs := a.Prefs.Subscribe(func(p prefs.Preferences) { forward(prefsEventMsg{prefs: p}) })
	defer func() {
		close(done)
		unsubAuth()
		unsubPrefs()
	}()

	p := tea.NewProgram(New(a, events), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
