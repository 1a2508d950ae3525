package tui

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrSkyle/routeviz/pkg/algo"
	"github.com/DrSkyle/routeviz/pkg/graph"
	"github.com/DrSkyle/routeviz/pkg/history"
	"github.com/DrSkyle/routeviz/pkg/scenario"
	"github.com/DrSkyle/routeviz/pkg/session"
	"github.com/DrSkyle/routeviz/pkg/storage"
)

type stubClient struct{}

func (stubClient) Validate(ctx context.Context, req algo.Request) (*algo.Validation, error) {
	return &algo.Validation{Valid: true, Connected: true}, nil
}

func (stubClient) Run(ctx context.Context, alg algo.Algorithm, req algo.Request) (*algo.Response, error) {
	one := 0
	return &algo.Response{
		Success: true,
		Steps: []algo.StepDTO{
			{Distances: map[int]algo.Cost{0: 0, 1: algo.Cost(math.Inf(1))}, Predecessors: map[int]*int{0: nil, 1: nil}},
			{Distances: map[int]algo.Cost{0: 0, 1: 3}, Predecessors: map[int]*int{0: nil, 1: &one}, VisitedEdgeIndices: []int{0}},
		},
		ShortestPath:   []int{0, 1},
		FinalDistances: map[int]algo.Cost{0: 0, 1: 3},
	}, nil
}

func newTestModel(t *testing.T, scenarios *scenario.Store, opts ...session.Option) Model {
	t.Helper()
	opts = append([]session.Option{session.WithRandom(rand.New(rand.NewPCG(3, 3)))}, opts...)
	coord, err := session.New(graph.NewMemoryStore(), opts...)
	require.NoError(t, err)
	m := NewModel(Options{Coordinator: coord, Client: stubClient{}, Scenarios: scenarios, Width: 1000, Height: 600})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 138, Height: 46})
	return next.(Model)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = press(m, string(r))
	}
	return m
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func repeat(k string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = k
	}
	return out
}

// twoNodes places N0 at cell (20,10) and N1 at cell (40,10), joined by an
// edge of cost 3.
func twoNodes(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = press(m, repeat("l", 20)...)
	m, _ = press(m, repeat("j", 10)...)
	m, _ = press(m, "n")
	m, _ = press(m, repeat("l", 20)...)
	m, _ = press(m, "n")
	m, _ = press(m, "e")
	m = typeText(m, "0,1,3")
	m, _ = press(m, "enter")
	require.Equal(t, 2, m.coord.Store().NodeCount())
	require.Equal(t, 1, m.coord.Store().EdgeCount(), m.status)
	return m
}

func startRun(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = press(m, "d")
	require.Equal(t, promptRun, m.prompt)
	m = typeText(m, "0,1")
	m, cmd := press(m, "enter")
	require.NotNil(t, cmd)
	require.NotNil(t, m.coord.Pending(), m.status)
	return m
}

func deliver(m Model) Model {
	res := m.coord.Pending().Execute(context.Background(), m.client)
	return send(m, runResultMsg{res: res})
}

func TestModel_AddNodeAtCursor(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(m, "n")
	require.Equal(t, 1, m.coord.Store().NodeCount())

	n, err := m.coord.Store().Node(0)
	require.NoError(t, err)
	x, y := m.canvas.World(0, 0)
	assert.Equal(t, x, n.X)
	assert.Equal(t, y, n.Y)
	assert.Contains(t, m.View(), "N0")
	assert.Contains(t, m.status, "Added N0")
}

func TestModel_EdgePromptRejectsBadInput(t *testing.T) {
	m := twoNodes(t, newTestModel(t, nil))
	m, _ = press(m, "e")
	m = typeText(m, "0,7,1")
	m, _ = press(m, "enter")
	assert.True(t, m.statusErr)
	assert.Equal(t, 1, m.coord.Store().EdgeCount())

	m, _ = press(m, "e")
	m = typeText(m, "0,1")
	m, _ = press(m, "esc")
	assert.Equal(t, promptNone, m.prompt)
	assert.Equal(t, 1, m.coord.Store().EdgeCount())
}

func TestModel_RunStepExit(t *testing.T) {
	m := twoNodes(t, newTestModel(t, nil))
	m = startRun(t, m)
	assert.Contains(t, m.View(), "Dijkstra N0 → N1")

	m = deliver(m)
	require.Equal(t, session.ModePlayback, m.coord.Mode(), m.status)
	assert.Contains(t, m.View(), "PLAYBACK")

	m, _ = press(m, "s")
	e, err := m.coord.Store().Edge(0)
	require.NoError(t, err)
	assert.Equal(t, graph.HighlightInProgress, e.Highlight)
	assert.Contains(t, m.status, "Visiting edge 0")

	m, _ = press(m, "s")
	e, _ = m.coord.Store().Edge(0)
	assert.Equal(t, graph.HighlightPath, e.Highlight)
	view := m.View()
	assert.Contains(t, view, "Cost: 3")
	assert.Contains(t, view, "finished")

	// Further steps are no-ops.
	m, _ = press(m, "s")
	assert.Equal(t, session.ModePlayback, m.coord.Mode())

	m, _ = press(m, "x")
	assert.Equal(t, session.ModeEditing, m.coord.Mode())
	e, _ = m.coord.Store().Edge(0)
	assert.Equal(t, graph.HighlightDefault, e.Highlight)
}

func TestModel_EditsRejectedDuringPlayback(t *testing.T) {
	m := deliver(startRun(t, twoNodes(t, newTestModel(t, nil))))
	require.Equal(t, session.ModePlayback, m.coord.Mode())

	for _, k := range []string{"n", "e", "c", "r", "d", "u"} {
		m, _ = press(m, k)
		assert.True(t, m.statusErr, k)
		assert.Contains(t, m.status, "Can't edit the network while animating", k)
	}
	assert.Equal(t, 2, m.coord.Store().NodeCount())
	assert.Equal(t, promptNone, m.prompt)
}

func TestModel_StaleResultDiscarded(t *testing.T) {
	m := startRun(t, twoNodes(t, newTestModel(t, nil)))
	ticket := m.coord.Pending()

	// Editing is allowed while the request is out.
	m, _ = press(m, "j", "n")
	require.Equal(t, 3, m.coord.Store().NodeCount())

	m = send(m, runResultMsg{res: ticket.Execute(context.Background(), stubClient{})})
	assert.Equal(t, session.ModeEditing, m.coord.Mode())
	assert.Contains(t, m.status, "result discarded")
	assert.Nil(t, m.coord.Pending())
}

func TestModel_Autoplay(t *testing.T) {
	m := deliver(startRun(t, twoNodes(t, newTestModel(t, nil))))
	m, cmd := press(m, "p")
	require.NotNil(t, cmd)
	assert.True(t, m.autoplay)

	m = send(m, playTickMsg{})
	m = send(m, playTickMsg{})
	assert.False(t, m.autoplay)
	assert.True(t, m.coord.Run().Finished)
}

func TestModel_MouseDrag(t *testing.T) {
	m := twoNodes(t, newTestModel(t, nil))
	depth := m.coord.UndoDepth()

	m = send(m, tea.MouseMsg{X: 20 + canvasLeft, Y: 10 + canvasTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.True(t, m.grabbed)
	m = send(m, tea.MouseMsg{X: 30 + canvasLeft, Y: 15 + canvasTop, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = send(m, tea.MouseMsg{X: 30 + canvasLeft, Y: 15 + canvasTop, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.False(t, m.grabbed)

	n, err := m.coord.Store().Node(0)
	require.NoError(t, err)
	x, y := m.canvas.World(30, 15)
	assert.Equal(t, x, n.X)
	assert.Equal(t, y, n.Y)
	assert.Equal(t, depth+1, m.coord.UndoDepth())

	m, _ = press(m, "u")
	n, _ = m.coord.Store().Node(0)
	x, y = m.canvas.World(20, 10)
	assert.Equal(t, x, n.X)
	assert.Equal(t, y, n.Y)
}

func TestModel_MouseClickAddsNode(t *testing.T) {
	m := newTestModel(t, nil)
	m = send(m, tea.MouseMsg{X: 5 + canvasLeft, Y: 5 + canvasTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, 1, m.coord.Store().NodeCount())
	assert.False(t, m.grabbed)
}

func TestModel_KeyboardGrab(t *testing.T) {
	m := twoNodes(t, newTestModel(t, nil))
	// Cursor sits on N1 after twoNodes.
	m, _ = press(m, "m", "j", "j", "m")
	n, err := m.coord.Store().Node(1)
	require.NoError(t, err)
	_, y := m.canvas.World(40, 12)
	assert.Equal(t, y, n.Y)
	assert.Contains(t, m.status, "Node moved")
}

func TestModel_ResultWhileGrabbed(t *testing.T) {
	m := startRun(t, twoNodes(t, newTestModel(t, nil)))
	before, err := m.coord.Store().Node(1)
	require.NoError(t, err)

	// Cursor sits on N1 after twoNodes.
	m, _ = press(m, "m", "j", "j")
	require.True(t, m.grabbed)

	m = deliver(m)
	assert.False(t, m.grabbed)
	assert.Equal(t, session.ModeEditing, m.coord.Mode())
	assert.Contains(t, m.status, "result discarded")

	m, _ = press(m, "u")
	after, err := m.coord.Store().Node(1)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestModel_RunDropsGrabbedNode(t *testing.T) {
	m := twoNodes(t, newTestModel(t, nil))
	m, _ = press(m, "m", "j")
	require.True(t, m.grabbed)

	m = startRun(t, m)
	assert.False(t, m.grabbed)
	_, dragging := m.coord.Dragging()
	assert.False(t, dragging)

	m = deliver(m)
	assert.Equal(t, session.ModePlayback, m.coord.Mode(), m.status)
}

func TestModel_UndoIgnoredInPlaybackIsReported(t *testing.T) {
	m := newTestModel(t, nil, session.WithLockPolicy(history.LockIgnore))
	m = deliver(startRun(t, twoNodes(t, m)))
	require.Equal(t, session.ModePlayback, m.coord.Mode())

	m, _ = press(m, "u")
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "Can't edit the network while animating")
	assert.Equal(t, 1, m.coord.Store().EdgeCount())
}

func TestModel_SaveAndOpenScenario(t *testing.T) {
	st := scenario.NewStore(storage.NewLocalStore(t.TempDir()))
	m := twoNodes(t, newTestModel(t, st))

	m, _ = press(m, "w")
	m = typeText(m, "pair")
	m, cmd := press(m, "enter")
	require.NotNil(t, cmd)
	m = send(m, cmd())
	require.False(t, m.statusErr, m.status)
	assert.Contains(t, m.status, "Saved scenario pair")

	m, _ = press(m, "c")
	require.Equal(t, 0, m.coord.Store().NodeCount())

	m, _ = press(m, "o")
	m = typeText(m, "pair")
	m, cmd = press(m, "enter")
	require.NotNil(t, cmd)
	m = send(m, cmd())
	require.False(t, m.statusErr, m.status)
	assert.Equal(t, 2, m.coord.Store().NodeCount())
	assert.Equal(t, 1, m.coord.Store().EdgeCount())

	// Loading is undoable.
	m, _ = press(m, "u")
	assert.Equal(t, 0, m.coord.Store().NodeCount())
}

func TestModel_ListScenarios(t *testing.T) {
	st := scenario.NewStore(storage.NewLocalStore(t.TempDir()))
	m := newTestModel(t, st)
	m, _ = press(m, "o")
	m, cmd := press(m, "enter")
	m = send(m, cmd())
	assert.Equal(t, "No saved scenarios.", m.status)
}

func TestModel_NoScenarioStore(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(m, "w")
	assert.True(t, m.statusErr)
	assert.Equal(t, promptNone, m.prompt)
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, nil)
	m, cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, "", m.View())
}

func TestCanvas_Render(t *testing.T) {
	c := Canvas{Width: 100, Height: 100, Cols: 20, Rows: 10}
	nodes := []graph.Node{{X: 5, Y: 5, Size: 5}, {X: 95, Y: 5, Size: 5}, {X: 5, Y: 95, Size: 5}}
	edges := []graph.Edge{
		{Start: 0, End: 1, Cost: 7, Highlight: graph.HighlightPath},
		{Start: 0, End: 2, Cost: 2},
		{Start: 2, End: 2, Cost: 1},
		{Start: 0, End: 9, Cost: 4},
	}
	out := c.Render(nodes, edges)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 10)
	assert.Contains(t, lines[0], "N0")
	assert.Contains(t, lines[0], "N1")
	assert.Contains(t, lines[0], "─")
	assert.Contains(t, out, "│")
	assert.Contains(t, out, "7")
	assert.Contains(t, out, "↻1")
	assert.Contains(t, lines[9], "N2")
	assert.NotContains(t, out, "4")
}

func TestCanvas_CellWorldRoundTrip(t *testing.T) {
	c := Canvas{Width: 1000, Height: 600, Cols: 96, Rows: 40}
	for _, p := range [][2]int{{0, 0}, {20, 10}, {95, 39}} {
		x, y := c.World(p[0], p[1])
		col, row := c.Cell(x, y)
		assert.Equal(t, p, [2]int{col, row})
	}
	col, row := c.Cell(-50, 9000)
	assert.Equal(t, [2]int{0, 39}, [2]int{col, row})
}

func TestRankOffset(t *testing.T) {
	assert.Equal(t, []int{0, -1, 1, -2, 2}, []int{rankOffset(0), rankOffset(1), rankOffset(2), rankOffset(3), rankOffset(4)})
}
