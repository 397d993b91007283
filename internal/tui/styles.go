package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Header    lipgloss.Style
	Label     lipgloss.Style
	Pane      lipgloss.Style
	RedCard   lipgloss.Style
	BlackCard lipgloss.Style
	Hidden    lipgloss.Style
	Win       lipgloss.Style
	Loss      lipgloss.Style
	Tie       lipgloss.Style
	Error     lipgloss.Style
	Info      lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true).
			Width(8),
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Padding(0, 1),
		RedCard: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		BlackCard: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true),
		Hidden: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		Win: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
		Loss: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		Tie: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),
		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")),
	}
}
