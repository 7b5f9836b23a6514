package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmModel asks a yes/no question with a preselected answer.
type confirmModel struct {
	question  string
	value     bool
	done      bool
	cancelled bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyLeft, tea.KeyRight, tea.KeyTab:
			m.value = !m.value
			return m, nil
		case tea.KeyRunes:
			switch strings.ToLower(string(msg.Runes)) {
			case "y":
				m.value = true
				m.done = true
				return m, tea.Quit
			case "n":
				m.value = false
				m.done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	yes, no := "yes", "no"
	if m.value {
		yes = activeStyle.Render("[yes]")
	} else {
		no = activeStyle.Render("[no]")
	}

	return labelStyle.Render(m.question) + "\n" +
		yes + "  " + no + "\n" +
		hintStyle.Render("y/n or arrows, enter to accept, esc to cancel") + "\n"
}

// Confirm asks a yes/no question starting on def. Dismissing the prompt
// returns ErrCancelled.
func Confirm(question string, def bool) (bool, error) {
	p := tea.NewProgram(confirmModel{question: question, value: def})
	res, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := res.(confirmModel)
	if !ok || m.cancelled {
		return false, ErrCancelled
	}
	return m.value, nil
}
