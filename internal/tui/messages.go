package tui

import (
	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/prefs"
	"github.com/andy/invoicer/internal/service"
)

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

type bannerKind int

const (
	bannerInfo bannerKind = iota
	bannerSuccess
	bannerError
)

// bannerMsg shows a transient message under the current screen
type bannerMsg struct {
	kind bannerKind
	text string
}

// clearBannerMsg dismisses banner id unless a newer one replaced it
type clearBannerMsg struct {
	id int
}

// authEventMsg and prefsEventMsg carry collaborator events into the program
type authEventMsg struct {
	event domain.AuthEvent
}

type prefsEventMsg struct {
	prefs prefs.Preferences
}

type authDoneMsg struct {
	mode authMode
	err  error
}

type invoicesLoadedMsg struct {
	err error
}

type deleteDoneMsg struct {
	err error
}

type saveDoneMsg struct {
	ticket  *service.SaveTicket
	invoice domain.Invoice
	err     error
}

type exportDoneMsg struct {
	path string
	err  error
}
