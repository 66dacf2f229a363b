package tui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type styles struct {
	header    lipgloss.Style
	userLabel lipgloss.Style
	botLabel  lipgloss.Style
	notice    lipgloss.Style
	errText   lipgloss.Style
	help      lipgloss.Style
}

func newStyles() styles {
	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("240")),
		userLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		botLabel:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		errText:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		help:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// newRenderer builds a markdown renderer matched to the terminal's color
// capabilities. A nil renderer means plain text.
func newRenderer(width int) *glamour.TermRenderer {
	style := glamour.WithStandardStyle("notty")
	if termenv.EnvColorProfile() != termenv.Ascii {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
	if err != nil {
		return nil
	}
	return r
}
