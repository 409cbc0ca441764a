// SPDX-License-Identifier: MIT

// Package tui implements the terminal interface: a live tuner display and
// an input device picker.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2)

	inTuneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#25A065"))
	closeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	offTuneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5C6370"))
)
