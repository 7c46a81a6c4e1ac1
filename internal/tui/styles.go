package tui

import (
	"github.com/andy/invoicer/internal/prefs"
	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	primary lipgloss.Color
	accent  lipgloss.Color
	text    lipgloss.Color
	muted   lipgloss.Color
	success lipgloss.Color
	warning lipgloss.Color
	danger  lipgloss.Color
	border  lipgloss.Color
	footer  lipgloss.Color
}

var palettes = map[prefs.Theme]palette{
	prefs.ThemeLight: {
		primary: lipgloss.Color("25"),  // Blue
		accent:  lipgloss.Color("55"),  // Indigo
		text:    lipgloss.Color("235"), // Near black
		muted:   lipgloss.Color("244"), // Gray
		success: lipgloss.Color("28"),  // Green
		warning: lipgloss.Color("166"), // Orange
		danger:  lipgloss.Color("160"), // Red
		border:  lipgloss.Color("63"),  // Soft purple
		footer:  lipgloss.Color("25"),
	},
	prefs.ThemeDark: {
		primary: lipgloss.Color("39"),  // Blue
		accent:  lipgloss.Color("141"), // Lavender
		text:    lipgloss.Color("252"), // Off white
		muted:   lipgloss.Color("241"), // Gray
		success: lipgloss.Color("76"),  // Green
		warning: lipgloss.Color("214"), // Orange
		danger:  lipgloss.Color("196"), // Red
		border:  lipgloss.Color("63"),  // Soft purple
		footer:  lipgloss.Color("226"), // Bright yellow
	},
}

// styles is shared by every screen and rebuilt in place when the theme changes
type styles struct {
	pal palette

	title    lipgloss.Style
	subtitle lipgloss.Style
	text     lipgloss.Style
	help     lipgloss.Style
	selected lipgloss.Style
	label    lipgloss.Style
	focused  lipgloss.Style
	success  lipgloss.Style
	warning  lipgloss.Style
	danger   lipgloss.Style

	// Layout
	frame   lipgloss.Style
	header  lipgloss.Style
	footer  lipgloss.Style
	divider lipgloss.Style
	box     lipgloss.Style
	dialog  lipgloss.Style

	// Preview
	docTitle lipgloss.Style
	docLabel lipgloss.Style
	docTotal lipgloss.Style
}

func newStyles(theme prefs.Theme) *styles {
	s := &styles{}
	s.apply(theme)
	return s
}

func (s *styles) apply(theme prefs.Theme) {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[prefs.ThemeLight]
	}

	*s = styles{
		pal:      p,
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.primary),
		subtitle: lipgloss.NewStyle().Foreground(p.muted),
		text:     lipgloss.NewStyle().Foreground(p.text),
		help:     lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		selected: lipgloss.NewStyle().Bold(true).Background(p.primary).Foreground(lipgloss.Color("231")),
		label:    lipgloss.NewStyle().Foreground(p.muted),
		focused:  lipgloss.NewStyle().Bold(true).Foreground(p.primary),
		success:  lipgloss.NewStyle().Foreground(p.success),
		warning:  lipgloss.NewStyle().Foreground(p.warning),
		danger:   lipgloss.NewStyle().Foreground(p.danger),

		frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(1, 2),
		header:  lipgloss.NewStyle().Bold(true).Foreground(p.primary).Padding(0, 1),
		footer:  lipgloss.NewStyle().Foreground(p.footer).Bold(true),
		divider: lipgloss.NewStyle().Foreground(p.border),
		box:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(0, 1),
		dialog: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(p.danger).
			Padding(1, 3),

		docTitle: lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		docLabel: lipgloss.NewStyle().Bold(true).Foreground(p.muted),
		docTotal: lipgloss.NewStyle().Bold(true).Foreground(p.accent),
	}
}
