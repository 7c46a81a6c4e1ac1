package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/auth"
	"github.com/andy/invoicer/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type authMode int

const (
	authModeSignIn authMode = iota
	authModeSignUp
	authModeReset   // request a recovery token
	authModeRecover // redeem the token for a new password
)

func (m authMode) titleKey() string {
	switch m {
	case authModeSignUp:
		return "auth.signUp"
	case authModeReset:
		return "auth.reset"
	case authModeRecover:
		return "auth.update"
	}
	return "auth.signIn"
}

// authField names match the ValidationError fields the auth service reports
type authField struct {
	name  string
	label string
	input textinput.Model
}

// AuthModel manages the sign-in, sign-up and password reset forms
type AuthModel struct {
	app    *app.App
	styles *styles

	mode       authMode
	fields     []authField
	fieldFocus int
	submitting bool

	// fieldErrs holds inline errors keyed by field name, "" for the form
	fieldErrs map[string]string
	email     string
}

func newAuthModel(a *app.App, st *styles) *AuthModel {
	m := &AuthModel{app: a, styles: st}
	m.setMode(authModeSignIn)
	return m
}

func (m *AuthModel) IsCapturingInput() bool {
	return true
}

func (m *AuthModel) Init() tea.Cmd {
	return nil
}

func (m *AuthModel) activate() tea.Cmd {
	m.submitting = false
	if m.mode == authModeRecover {
		m.setMode(authModeSignIn)
	}
	m.clearPasswords()
	return m.focus(m.fieldFocus)
}

func (m *AuthModel) setMode(mode authMode) {
	if len(m.fields) > 0 {
		m.email = m.value("email")
	}
	m.mode = mode
	m.fieldErrs = map[string]string{}

	var names []string
	switch mode {
	case authModeSignIn:
		names = []string{"email", "password"}
	case authModeSignUp:
		names = []string{"email", "password", "confirm"}
	case authModeReset:
		names = []string{"email"}
	case authModeRecover:
		names = []string{"token", "password", "confirm"}
	}

	m.fields = make([]authField, len(names))
	for i, name := range names {
		in := textinput.New()
		in.CharLimit = 256
		in.Width = 40
		switch name {
		case "email":
			in.Placeholder = "you@example.com"
			in.SetValue(m.email)
		case "password", "confirm":
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		case "token":
			in.CharLimit = 2048
		}
		m.fields[i] = authField{name: name, label: "auth." + name, input: in}
	}
	m.fieldFocus = 0
}

func (m *AuthModel) value(name string) string {
	for _, f := range m.fields {
		if f.name == name {
			return f.input.Value()
		}
	}
	return ""
}

func (m *AuthModel) clearPasswords() {
	for i := range m.fields {
		if m.fields[i].name == "password" || m.fields[i].name == "confirm" {
			m.fields[i].input.Reset()
		}
	}
}

func (m *AuthModel) focus(i int) tea.Cmd {
	for j := range m.fields {
		m.fields[j].input.Blur()
	}
	m.fieldFocus = i
	return m.fields[i].input.Focus()
}

func (m *AuthModel) submit() tea.Cmd {
	m.submitting = true
	m.fieldErrs = map[string]string{}

	svc := m.app.Auth
	mode := m.mode
	email := m.value("email")
	password := m.value("password")
	confirm := m.value("confirm")
	token := m.value("token")

	return func() tea.Msg {
		ctx := context.Background()
		var err error
		switch mode {
		case authModeSignIn:
			_, err = svc.SignIn(ctx, email, password)
		case authModeSignUp:
			_, err = svc.SignUp(ctx, email, password, confirm)
		case authModeReset:
			err = svc.RequestPasswordReset(ctx, email)
		case authModeRecover:
			_, err = svc.CompletePasswordReset(ctx, token, password, confirm)
		}
		return authDoneMsg{mode: mode, err: err}
	}
}

func (m *AuthModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		m.submitting = false
		if msg.mode != m.mode {
			return m, nil
		}
		if msg.err != nil {
			m.clearPasswords()
			m.fieldErrs[domain.FieldOf(msg.err)] = m.describe(msg.err)
			return m, nil
		}
		if msg.mode == authModeReset {
			email := m.value("email")
			m.setMode(authModeRecover)
			return m, tea.Batch(
				m.focus(0),
				showBanner(bannerInfo, m.app.Translator().T("auth.resetSent", "email", email)),
			)
		}
		// Sign-in navigation is driven by the auth event.
		m.clearPasswords()
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch {
		case key.Matches(msg, DefaultKeyMap.ToggleSignUp):
			if m.mode == authModeSignIn {
				m.setMode(authModeSignUp)
			} else {
				m.setMode(authModeSignIn)
			}
			return m, m.focus(0)

		case key.Matches(msg, DefaultKeyMap.ResetMode):
			m.setMode(authModeReset)
			return m, m.focus(0)

		case key.Matches(msg, DefaultKeyMap.Back):
			if m.mode != authModeSignIn {
				m.setMode(authModeSignIn)
				return m, m.focus(0)
			}
			return m, nil

		case key.Matches(msg, DefaultKeyMap.NextField):
			return m, m.focus((m.fieldFocus + 1) % len(m.fields))

		case key.Matches(msg, DefaultKeyMap.PrevField):
			return m, m.focus((m.fieldFocus - 1 + len(m.fields)) % len(m.fields))

		case key.Matches(msg, DefaultKeyMap.Submit):
			if m.fieldFocus < len(m.fields)-1 {
				return m, m.focus(m.fieldFocus + 1)
			}
			return m, m.submit()
		}
	}

	// Update the focused text input
	f := &m.fields[m.fieldFocus]
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if f.input.Value() != before {
		delete(m.fieldErrs, f.name)
	}
	return m, cmd
}

// describe turns an auth failure into the message shown on the form
func (m *AuthModel) describe(err error) string {
	tr := m.app.Translator()
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return tr.T("auth.invalid")
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, domain.ErrStoreUnavailable):
		return tr.T("list.tableMissing")
	}
	return err.Error()
}

func (m *AuthModel) View() string {
	tr := m.app.Translator()
	s := m.styles

	var b strings.Builder
	b.WriteString(s.title.Render(tr.T(m.mode.titleKey())))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		label := s.label.Render(padRight(tr.T(f.label), 18))
		if i == m.fieldFocus {
			label = s.focused.Render(padRight(tr.T(f.label), 18))
		}
		b.WriteString(label + " " + f.input.View() + "\n")
		if msg, ok := m.fieldErrs[f.name]; ok {
			b.WriteString(padRight("", 19) + s.danger.Render(msg) + "\n")
		}
	}

	if msg, ok := m.fieldErrs[""]; ok {
		b.WriteString("\n" + s.danger.Render(msg) + "\n")
	}
	if m.submitting {
		b.WriteString("\n" + s.subtitle.Render("…") + "\n")
	}

	b.WriteString("\n")
	switch m.mode {
	case authModeSignIn:
		b.WriteString(s.subtitle.Render(tr.T("auth.switchSignUp")) + "\n")
		b.WriteString(s.subtitle.Render(tr.T("auth.switchReset")) + "\n")
	case authModeSignUp, authModeReset, authModeRecover:
		b.WriteString(s.subtitle.Render("esc: "+tr.T("auth.signIn")) + "\n")
	}
	b.WriteString("\n" + s.help.Render(tr.T("help.auth")))
	return b.String()
}
