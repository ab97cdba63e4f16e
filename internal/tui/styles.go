package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/alexander-akhmetov/psoc/internal/protocol"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	levelsBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	doneStepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	currentStepStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Bold(true)

	pendingStepStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Faint(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// badgeStyle colors a level's state badge.
func badgeStyle(s protocol.LevelState) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch s {
	case protocol.LevelCompleted:
		return base.Foreground(lipgloss.Color("42"))
	case protocol.LevelActive:
		return base.Foreground(lipgloss.Color("214"))
	case protocol.LevelStartable:
		return base.Foreground(lipgloss.Color("117"))
	default:
		return base.Foreground(lipgloss.Color("240"))
	}
}

// toneColor maps a catalog tone to a terminal color.
func toneColor(tone string) lipgloss.Color {
	switch tone {
	case protocol.ToneSuccess:
		return lipgloss.Color("42")
	case protocol.ToneWarning:
		return lipgloss.Color("220")
	case protocol.ToneHigh:
		return lipgloss.Color("208")
	case protocol.ToneCritical:
		return lipgloss.Color("196")
	default:
		return lipgloss.Color("255")
	}
}
