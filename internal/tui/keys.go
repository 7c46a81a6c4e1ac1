package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Back key.Binding

	// Navigation
	List     key.Binding
	Settings key.Binding

	// Actions
	Select  key.Binding
	New     key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Confirm key.Binding
	Cancel  key.Binding

	// Movement
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Forms
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding

	// Auth
	ToggleSignUp key.Binding
	ResetMode    key.Binding

	// Editor
	Save       key.Binding
	AddItem    key.Binding
	RemoveItem key.Binding
	ExportPDF  key.Binding
	ExportText key.Binding
	AttachLogo key.Binding
	RemoveLogo key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	List:         key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "invoices")),
	Settings:     key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings")),
	Select:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	New:          key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Delete:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Confirm:      key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
	Cancel:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
	Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:         key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous")),
	Right:        key.NewBinding(key.WithKeys("right", " "), key.WithHelp("→", "next")),
	NextField:    key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	PrevField:    key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous field")),
	Submit:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	ToggleSignUp: key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "sign in/sign up")),
	ResetMode:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset password")),
	Save:         key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	AddItem:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "add item")),
	RemoveItem:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "remove item")),
	ExportPDF:    key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "export pdf")),
	ExportText:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "export text")),
	AttachLogo:   key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "attach logo")),
	RemoveLogo:   key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "remove logo")),
}
