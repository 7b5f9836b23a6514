package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// inputModel collects a single line of text and quits on the first
// accept or dismiss key.
type inputModel struct {
	label     string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newInputModel(label, placeholder string) inputModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60

	return inputModel{label: label, input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return labelStyle.Render(m.label) + "\n" +
		m.input.View() + "\n" +
		hintStyle.Render("enter to accept, esc to cancel") + "\n"
}

// Input prompts for one line of text. An empty submission returns
// fallback, and dismissing the prompt returns ErrCancelled.
func Input(label, placeholder, fallback string) (string, error) {
	p := tea.NewProgram(newInputModel(label, placeholder))
	res, err := p.Run()
	if err != nil {
		return "", err
	}

	m, ok := res.(inputModel)
	if !ok || m.cancelled {
		return "", ErrCancelled
	}

	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return fallback, nil
	}
	return value, nil
}
