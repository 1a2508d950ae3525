package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DrSkyle/routeviz/pkg/playback"
	"github.com/DrSkyle/routeviz/pkg/session"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := strings.Builder{}
	s.WriteString(m.viewHeader())
	s.WriteString("\n")

	store := m.coord.Store()
	ov := Overlay{
		ShowCursor: m.coord.Mode() == session.ModeEditing,
		CursorCol:  m.cursorCol,
		CursorRow:  m.cursorRow,
		Grabbed:    -1,
	}
	if idx, ok := m.coord.Dragging(); ok {
		ov.Grabbed = idx
	}
	if run := m.coord.Run(); run != nil && run.Finished {
		ov.Final = run.FinalDistances
	}
	canvas := canvasStyle.Render(m.canvas.Draw(store.Nodes(), store.Edges(), ov))

	panel := m.viewSummary()
	if m.coord.Mode() == session.ModePlayback {
		panel = m.viewTable()
	}
	panel = panelStyle.Width(panelWidth - 2).Height(m.canvas.Rows).Render(panel)

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, canvas, panel))
	s.WriteString("\n")

	if m.statusErr {
		s.WriteString(danger.Render(m.status))
	} else {
		s.WriteString(subtle.Render(m.status))
	}
	s.WriteString("\n")

	if m.prompt != promptNone {
		s.WriteString(highlight.Render(promptTitle(m.prompt, m.promptAlg.Title())) + " " + m.input.View())
	}
	s.WriteString("\n")
	s.WriteString(m.help.View(m.keys))
	return s.String()
}

func (m Model) viewHeader() string {
	mode := special.Render("[ EDITING ]")
	if m.coord.Mode() == session.ModePlayback {
		mode = warning.Render("[ PLAYBACK ]")
	}
	header := titleStyle.Render("ROUTEVIZ") + " " + mode
	if t := m.coord.Pending(); t != nil {
		header += fmt.Sprintf("  %s %s N%d → N%d", m.spinner.View(), t.Algorithm.Title(), t.Start, t.End)
	}
	return header
}

func (m Model) viewSummary() string {
	snap := m.coord.Store().Snapshot()
	s := strings.Builder{}
	s.WriteString(panelHeaderStyle.Render("NETWORK"))
	s.WriteString("\n")

	row := func(label, value string) {
		s.WriteString(fmt.Sprintf("%-14s %s\n", subtle.Render(label), value))
	}
	row("Nodes", fmt.Sprint(len(snap.Nodes)))
	row("Edges", fmt.Sprint(len(snap.Edges)))
	row("Connected", yesNo(snap.IsConnected()))
	row("Negative", yesNo(snap.HasNegativeEdge()))
	row("Components", fmt.Sprint(snap.Components()))
	row("Undo depth", fmt.Sprint(m.coord.UndoDepth()))

	if lim := m.coord.Limits(); lim.MaxNodes > 0 || lim.MaxEdges > 0 {
		row("Limits", fmt.Sprintf("%d nodes / %d edges", lim.MaxNodes, lim.MaxEdges))
	}
	if m.grabbed {
		s.WriteString("\n" + warning.Render("Moving node"))
	}
	return s.String()
}

func (m Model) viewTable() string {
	run := m.coord.Run()
	s := strings.Builder{}
	title := "PLAYBACK"
	if run != nil {
		title = fmt.Sprintf("%s N%d → N%d", strings.ToUpper(run.Algorithm.Title()), run.Start, run.End)
	}
	s.WriteString(panelHeaderStyle.Render(title))
	s.WriteString("\n")

	tbl := m.coord.Table()
	if tbl == nil {
		return s.String()
	}
	s.WriteString(subtle.Render(fmt.Sprintf("%-5s %-16s %s", "node", "distance", "pred")))
	s.WriteString("\n")
	for _, r := range tbl.Rows {
		s.WriteString(fmt.Sprintf("%-5s %s  %s\n",
			fmt.Sprintf("N%d", r.Node),
			styledHistory(r.Distances, playback.FormatDistance),
			styledHistory(r.Predecessors, playback.FormatPredecessor)))
	}

	s.WriteString("\n")
	if run != nil && run.Finished {
		s.WriteString(special.Render("finished"))
	} else {
		s.WriteString(subtle.Render(fmt.Sprintf("%d edges left", m.coord.Remaining())))
	}
	if m.autoplay {
		s.WriteString(" " + warning.Render("▶ autoplay"))
	}
	return s.String()
}

// styledHistory strikes through every value but the last.
func styledHistory[T any](vals []T, format func(T) string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		if i < len(vals)-1 {
			parts[i] = struck.Render(format(v))
		} else {
			parts[i] = format(v)
		}
	}
	return strings.Join(parts, " ")
}

func promptTitle(k promptKind, alg string) string {
	switch k {
	case promptEdge:
		return "Add edge"
	case promptRun:
		return "Run " + alg
	case promptSave:
		return "Save as"
	case promptOpen:
		return "Open"
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
