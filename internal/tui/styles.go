package tui

import "github.com/charmbracelet/lipgloss"

var (
	clockStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111"))
	editStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	deleteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("236")).Padding(0, 1)
	dialogStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("111")).Padding(1, 2)
	dangerBorder = dialogStyle.BorderForeground(lipgloss.Color("167"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
)
