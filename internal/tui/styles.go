package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

	resultBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	queryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)

	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	spinnerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sourceRuleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Underline(true)
)
