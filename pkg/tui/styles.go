package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorNeonGreen  = lipgloss.Color("#00FF99") // path / success
	colorNeonPurple = lipgloss.Color("#874BFD") // header / border
	colorTextMain   = lipgloss.Color("#E2E8F0")
	colorTextSub    = lipgloss.Color("#64748B")
	colorDanger     = lipgloss.Color("#FF0055")
	colorWarning    = lipgloss.Color("#F59E0B") // in-progress edges

	subtle    = lipgloss.NewStyle().Foreground(colorTextSub)
	highlight = lipgloss.NewStyle().Foreground(colorNeonPurple).Bold(true)
	special   = lipgloss.NewStyle().Foreground(colorNeonGreen).Bold(true)
	danger    = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	warning   = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	struck    = lipgloss.NewStyle().Foreground(colorTextSub).Strikethrough(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorNeonPurple).
			Bold(true).
			Padding(0, 1)

	canvasStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorNeonPurple)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorTextSub).
			Padding(0, 1)

	panelHeaderStyle = lipgloss.NewStyle().
				Foreground(colorNeonPurple).
				Bold(true).
				Underline(true).
				MarginBottom(1)

	nodeStyle   = lipgloss.NewStyle().Foreground(colorTextMain).Background(lipgloss.Color("#331832")).Bold(true)
	grabStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(colorWarning).Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	costStyle   = lipgloss.NewStyle().Foreground(colorTextSub)
	finalStyle  = lipgloss.NewStyle().Foreground(colorNeonGreen)
)
