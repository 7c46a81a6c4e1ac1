package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const bannerTimeout = 3 * time.Second

func showBanner(kind bannerKind, text string) tea.Cmd {
	return func() tea.Msg { return bannerMsg{kind: kind, text: text} }
}

func switchTo(s Screen) tea.Cmd {
	return func() tea.Msg { return SwitchScreenMsg{Screen: s} }
}

// waitForEvent blocks until the next collaborator event arrives
func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

// truncateStr truncates a string to the given display width with ellipsis
func truncateStr(s string, maxLen int) string {
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > maxLen {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// padRight pads s with spaces to the given display width
func padRight(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(truncateStr(s, width))
}

// padLeft right-aligns s within the given display width
func padLeft(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(truncateStr(s, width))
}
