package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#BD93F9"))
	statsStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#282A36")).Background(lipgloss.Color("#50FA7B"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	detailStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#BD93F9")).Padding(1, 2)
)
