// Package ui implements the small Bubble Tea prompts used by the
// interactive setup flow.
package ui

import (
	"errors"

	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user dismisses a prompt with esc or
// ctrl+c instead of answering it.
var ErrCancelled = errors.New("cancelled")

var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)
