package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	labelStyle  = lipgloss.NewStyle().Width(12).Foreground(lipgloss.Color("245"))
	focusStyle  = lipgloss.NewStyle().Width(12).Bold(true).Foreground(lipgloss.Color("212"))
	filledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	trackStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	valueStyle  = lipgloss.NewStyle().Width(12).Align(lipgloss.Right).Foreground(lipgloss.Color("252"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Padding(0, 2)
)
