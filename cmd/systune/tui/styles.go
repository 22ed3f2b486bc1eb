// Package tui provides the interactive menu for systune, built on
// Charmbracelet's Bubble Tea and Lip Gloss.
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the menu.
var (
	primaryColor = lipgloss.Color("#7D56F4")
	accentColor  = lipgloss.Color("#00D9FF")
	warningColor = lipgloss.Color("#FFC107")
	dangerColor  = lipgloss.Color("#DC3545")
	mutedColor   = lipgloss.Color("#666666")
	selectedBg   = lipgloss.Color("#1A1A2E")
)

// Styles for the menu view.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	menuBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().
				Background(selectedBg).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle()

	numberStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	warnStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	confirmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dangerColor).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)
