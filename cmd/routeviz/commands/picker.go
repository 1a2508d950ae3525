package commands

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type scenarioPicker struct {
	choices []string
	cursor  int
	chosen  string
}

func (m scenarioPicker) Init() tea.Cmd {
	return nil
}

func (m scenarioPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case "enter":
			m.chosen = m.choices[m.cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m scenarioPicker) View() string {
	s := strings.Builder{}
	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Render("? Which scenario do you want to open?"))
	s.WriteString("\n\n")

	for i, choice := range m.choices {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}
		s.WriteString(fmt.Sprintf("%s %s\n", cursor, choice))
	}

	s.WriteString("\n(Press [enter] to open, [q] to cancel)\n")
	return s.String()
}

// PromptForScenario lets the user pick one name. An empty result means the
// user cancelled.
func PromptForScenario(names []string) (string, error) {
	p := tea.NewProgram(scenarioPicker{choices: names})
	m, err := p.Run()
	if err != nil {
		return "", err
	}
	if picked, ok := m.(scenarioPicker); ok {
		return picked.chosen, nil
	}
	return "", nil
}
