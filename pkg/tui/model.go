package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/DrSkyle/routeviz/pkg/algo"
	"github.com/DrSkyle/routeviz/pkg/playback"
	"github.com/DrSkyle/routeviz/pkg/scenario"
	"github.com/DrSkyle/routeviz/pkg/session"
)

const (
	panelWidth = 38
	// header line, canvas border top and bottom, status, prompt and help lines
	chromeRows = 6
	canvasLeft = 1
	canvasTop  = 2
)

type promptKind int

const (
	promptNone promptKind = iota
	promptEdge
	promptRun
	promptSave
	promptOpen
)

// Options wires the model to its collaborators.
type Options struct {
	Coordinator *session.Coordinator
	Client      algo.Client
	// Scenarios may be nil, which disables save and open.
	Scenarios *scenario.Store
	Logger    *slog.Logger

	// Width and Height are the world size; the grid follows the terminal.
	Width  float64
	Height float64

	Timeout  time.Duration
	Interval time.Duration

	// Start and End prefill the run prompt when they name distinct nodes.
	Start int
	End   int
}

type runResultMsg struct{ res session.RunResult }

type playTickMsg time.Time

type scenarioSavedMsg struct {
	name string
	err  error
}

type scenarioLoadedMsg struct {
	sc  *scenario.Scenario
	err error
}

type scenarioListMsg struct {
	names []string
	err   error
}

type Model struct {
	coord     *session.Coordinator
	client    algo.Client
	scenarios *scenario.Store
	logger    *slog.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	input   textinput.Model

	// state
	prompt     promptKind
	promptAlg  algo.Algorithm
	canvas     Canvas
	width      int
	height     int
	cursorCol  int
	cursorRow  int
	grabbed    bool
	lastStart  int
	lastEnd    int
	autoplay   bool
	interval   time.Duration
	timeout    time.Duration
	quitting   bool

	// feedback
	status    string
	statusErr bool
}

func NewModel(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = special

	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 64

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Width <= 0 {
		opts.Width = 1000
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Interval <= 0 {
		opts.Interval = 400 * time.Millisecond
	}

	m := Model{
		coord:     opts.Coordinator,
		client:    opts.Client,
		scenarios: opts.Scenarios,
		logger:    opts.Logger,
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   s,
		input:     in,
		canvas:    Canvas{Width: opts.Width, Height: opts.Height},
		interval:  opts.Interval,
		timeout:   opts.Timeout,
		status:    "Press n to add a node at the cursor, ? for keys.",
	}
	if n := m.coord.Store().NodeCount(); n > 1 {
		m.lastEnd = n - 1
		if opts.Start != opts.End && opts.Start >= 0 && opts.Start < n && opts.End >= 0 && opts.End < n {
			m.lastStart, m.lastEnd = opts.Start, opts.End
		}
	}
	m.layout(80, 24)
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) layout(width, height int) {
	m.width, m.height = width, height
	m.canvas.Cols = max(20, width-panelWidth-4)
	m.canvas.Rows = max(8, height-chromeRows)
	m.help.Width = width
	m.cursorCol = clamp(m.cursorCol, 0, m.canvas.Cols-1)
	m.cursorRow = clamp(m.cursorRow, 0, m.canvas.Rows-1)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case spinner.TickMsg:
		if m.coord.Pending() == nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case runResultMsg:
		return m.handleRunResult(msg)

	case playTickMsg:
		if !m.autoplay || m.coord.Mode() != session.ModePlayback {
			m.autoplay = false
			return m, nil
		}
		m.step()
		if m.autoplay {
			return m, m.tick()
		}
		return m, nil

	case scenarioSavedMsg:
		if msg.err != nil {
			m.setErr(msg.err)
			return m, nil
		}
		m.logger.Info("scenario saved", "name", msg.name)
		m.setStatus("Saved scenario %s.", msg.name)
		return m, nil

	case scenarioLoadedMsg:
		if msg.err != nil {
			m.setErr(msg.err)
			return m, nil
		}
		if err := m.coord.LoadScenario(msg.sc.Graph()); err != nil {
			m.setErr(err)
			return m, nil
		}
		m.grabbed = false
		m.lastStart, m.lastEnd = msg.sc.Start, msg.sc.End
		m.logger.Info("scenario loaded", "name", msg.sc.Name, "nodes", len(msg.sc.Nodes))
		m.setStatus("Loaded scenario %s. Press u to go back.", msg.sc.Name)
		return m, nil

	case scenarioListMsg:
		if msg.err != nil {
			m.setErr(msg.err)
			return m, nil
		}
		if len(msg.names) == 0 {
			m.setStatus("No saved scenarios.")
			return m, nil
		}
		m.setStatus("Scenarios: %s", strings.Join(msg.names, ", "))
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1, 0)

	case key.Matches(msg, m.keys.AddNode):
		x, y := m.canvas.World(m.cursorCol, m.cursorRow)
		idx, err := m.coord.AddNode(x, y)
		if err != nil {
			m.setErr(err)
			break
		}
		m.setStatus("Added N%d.", idx)

	case key.Matches(msg, m.keys.AddEdge):
		if m.rejectInPlayback() {
			break
		}
		cmd := m.openPrompt(promptEdge, "start,end,cost  e.g. 0,1,5")
		return m, cmd

	case key.Matches(msg, m.keys.Grab):
		m.toggleGrab()

	case key.Matches(msg, m.keys.Undo):
		m.grabbed = false
		ok, err := m.coord.Undo()
		switch {
		case err != nil:
			m.setErr(err)
		case ok:
			m.setStatus("Undone.")
		case m.coord.Mode() == session.ModePlayback:
			m.setErr(session.ErrPlaybackActive)
		default:
			m.setStatus("Nothing to undo.")
		}

	case key.Matches(msg, m.keys.Clear):
		m.grabbed = false
		if err := m.coord.Clear(); err != nil {
			m.setErr(err)
			break
		}
		m.setStatus("Cleared. Press u to undo.")

	case key.Matches(msg, m.keys.Randomize):
		m.grabbed = false
		if err := m.coord.Randomize(); err != nil {
			m.setErr(err)
			break
		}
		s := m.coord.Store()
		m.lastStart, m.lastEnd = 0, max(0, s.NodeCount()-1)
		m.setStatus("Random graph: %d nodes, %d edges.", s.NodeCount(), s.EdgeCount())

	case key.Matches(msg, m.keys.Dijkstra), key.Matches(msg, m.keys.BellmanFord):
		if m.rejectInPlayback() {
			break
		}
		if m.coord.Pending() != nil {
			m.setErr(session.ErrRunInFlight)
			break
		}
		m.promptAlg = algo.Dijkstra
		if key.Matches(msg, m.keys.BellmanFord) {
			m.promptAlg = algo.BellmanFord
		}
		cmd := m.openPrompt(promptRun, fmt.Sprintf("start,end  (enter for %d,%d)", m.lastStart, m.lastEnd))
		return m, cmd

	case key.Matches(msg, m.keys.Step):
		if m.coord.Mode() != session.ModePlayback {
			m.setErr(session.ErrNotPlaying)
			break
		}
		m.step()

	case key.Matches(msg, m.keys.Autoplay):
		if m.coord.Mode() != session.ModePlayback {
			m.setErr(session.ErrNotPlaying)
			break
		}
		m.autoplay = !m.autoplay
		if m.autoplay {
			return m, m.tick()
		}

	case key.Matches(msg, m.keys.Exit):
		if m.coord.Mode() != session.ModePlayback {
			break
		}
		m.autoplay = false
		if err := m.coord.ExitPlayback(); err != nil {
			m.setErr(err)
			break
		}
		m.setStatus("Back to editing.")

	case key.Matches(msg, m.keys.Save):
		if m.scenarios == nil {
			m.setErr(errors.New("scenario storage is not configured"))
			break
		}
		cmd := m.openPrompt(promptSave, "name  (enter for a timestamped name)")
		return m, cmd

	case key.Matches(msg, m.keys.Open):
		if m.scenarios == nil {
			m.setErr(errors.New("scenario storage is not configured"))
			break
		}
		if m.rejectInPlayback() {
			break
		}
		cmd := m.openPrompt(promptOpen, "name  (enter to list)")
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		m.setStatus("Cancelled.")
		return m, nil
	case tea.KeyEnter:
		kind := m.prompt
		value := strings.TrimSpace(m.input.Value())
		m.closePrompt()
		return m.submit(kind, value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(kind promptKind, value string) (tea.Model, tea.Cmd) {
	switch kind {
	case promptEdge:
		idx, err := m.coord.AddEdgeInput(value)
		if err != nil {
			m.setErr(err)
			return m, nil
		}
		m.setStatus("Added edge %d.", idx)

	case promptRun:
		start, end := m.lastStart, m.lastEnd
		if value != "" {
			var err error
			start, end, err = session.ParseRunInput(value, m.coord.Store().NodeCount())
			if err != nil {
				m.setErr(err)
				return m, nil
			}
		}
		return m.beginRun(m.promptAlg, start, end)

	case promptSave:
		return m, m.saveCmd(value)

	case promptOpen:
		if value == "" {
			return m, m.listCmd()
		}
		return m, m.loadCmd(value)
	}
	return m, nil
}

func (m Model) beginRun(alg algo.Algorithm, start, end int) (tea.Model, tea.Cmd) {
	if m.grabbed {
		m.drop()
	}
	t, err := m.coord.BeginRun(context.Background(), alg, start, end)
	if err != nil {
		m.setErr(err)
		return m, nil
	}
	m.lastStart, m.lastEnd = start, end
	m.setStatus("Running %s from N%d to N%d...", alg.Title(), start, end)
	return m, tea.Batch(m.spinner.Tick, m.runCmd(t))
}

func (m Model) runCmd(t *session.Ticket) tea.Cmd {
	client, timeout := m.client, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return runResultMsg{res: t.Execute(ctx, client)}
	}
}

func (m Model) handleRunResult(msg runResultMsg) (tea.Model, tea.Cmd) {
	err := m.coord.CompleteRun(context.Background(), msg.res)
	_, m.grabbed = m.coord.Dragging()
	if err != nil {
		m.setErr(err)
		return m, nil
	}
	run := m.coord.Run()
	m.setStatus("%s: %d edges to visit. Press s to step, p to autoplay.", run.Algorithm.Title(), run.Stats.Edges)
	return m, nil
}

func (m *Model) step() {
	res, err := m.coord.Step()
	if err != nil {
		m.autoplay = false
		m.setErr(err)
		return
	}
	switch res.Event {
	case playback.EventEdge:
		m.setStatus("Visiting edge %d.", res.Edge)
	case playback.EventSkipped:
		m.setStatus("Edge %d no longer exists.", res.Edge)
	case playback.EventFinished, playback.EventNone:
		m.autoplay = false
		m.setStatus("Done. Press x to exit the animation.")
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return playTickMsg(t)
	})
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	col, row := msg.X-canvasLeft, msg.Y-canvasTop
	inside := col >= 0 && col < m.canvas.Cols && row >= 0 && row < m.canvas.Rows
	if !inside && !m.grabbed {
		return m, nil
	}
	col = clamp(col, 0, m.canvas.Cols-1)
	row = clamp(row, 0, m.canvas.Rows-1)
	x, y := m.canvas.World(col, row)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		m.cursorCol, m.cursorRow = col, row
		if idx, ok := m.coord.HitTest(x, y); ok {
			if err := m.coord.DragStart(idx); err != nil {
				m.setErr(err)
				return m, nil
			}
			m.grabbed = true
			return m, nil
		}
		idx, err := m.coord.AddNode(x, y)
		if err != nil {
			m.setErr(err)
			return m, nil
		}
		m.setStatus("Added N%d.", idx)

	case tea.MouseActionMotion:
		if m.grabbed {
			m.cursorCol, m.cursorRow = col, row
			if err := m.coord.DragTo(x, y); err != nil {
				m.setErr(err)
			}
		}

	case tea.MouseActionRelease:
		if m.grabbed {
			m.drop()
		}
	}
	return m, nil
}

func (m *Model) moveCursor(dc, dr int) {
	m.cursorCol = clamp(m.cursorCol+dc, 0, m.canvas.Cols-1)
	m.cursorRow = clamp(m.cursorRow+dr, 0, m.canvas.Rows-1)
	if m.grabbed {
		x, y := m.canvas.World(m.cursorCol, m.cursorRow)
		if err := m.coord.DragTo(x, y); err != nil {
			m.setErr(err)
		}
	}
}

func (m *Model) toggleGrab() {
	if m.grabbed {
		m.drop()
		return
	}
	x, y := m.canvas.World(m.cursorCol, m.cursorRow)
	idx, ok := m.coord.HitTest(x, y)
	if !ok {
		m.setStatus("No node under the cursor.")
		return
	}
	if err := m.coord.DragStart(idx); err != nil {
		m.setErr(err)
		return
	}
	m.grabbed = true
	m.setStatus("Moving N%d. Press m to drop.", idx)
}

func (m *Model) drop() {
	m.grabbed = false
	moved, err := m.coord.DragEnd()
	switch {
	case err != nil:
		m.setErr(err)
	case moved:
		m.setStatus("Node moved.")
	}
}

func (m *Model) rejectInPlayback() bool {
	if m.coord.Mode() == session.ModePlayback {
		m.setErr(session.ErrPlaybackActive)
		return true
	}
	return false
}

func (m *Model) openPrompt(kind promptKind, placeholder string) tea.Cmd {
	m.prompt = kind
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m.input.Focus()
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
}

func (m Model) saveCmd(name string) tea.Cmd {
	st, snap := m.scenarios, m.coord.Store().Snapshot()
	start, end := m.lastStart, m.lastEnd
	return func() tea.Msg {
		sc := scenario.FromGraph(name, snap)
		if start < len(snap.Nodes) && end < len(snap.Nodes) {
			sc.Start, sc.End = start, end
		}
		saved, err := st.Save(context.Background(), sc)
		return scenarioSavedMsg{name: saved, err: err}
	}
}

func (m Model) loadCmd(name string) tea.Cmd {
	st := m.scenarios
	return func() tea.Msg {
		sc, err := st.Load(context.Background(), name)
		return scenarioLoadedMsg{sc: sc, err: err}
	}
}

func (m Model) listCmd() tea.Cmd {
	st := m.scenarios
	return func() tea.Msg {
		names, err := st.List(context.Background())
		return scenarioListMsg{names: names, err: err}
	}
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusErr = false
}

func (m *Model) setErr(err error) {
	m.status = session.Describe(err)
	m.statusErr = true
	m.logger.Debug("action rejected", "error", err)
}
