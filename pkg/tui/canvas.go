package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DrSkyle/routeviz/pkg/graph"
	"github.com/DrSkyle/routeviz/pkg/playback"
)

// Renderer draws one frame of the graph.
type Renderer interface {
	Render(nodes []graph.Node, edges []graph.Edge) string
}

var _ Renderer = Canvas{}

// Canvas maps world coordinates onto a Cols x Rows character grid.
type Canvas struct {
	Width  float64
	Height float64
	Cols   int
	Rows   int
}

// Overlay is drawn on top of the graph.
type Overlay struct {
	ShowCursor bool
	CursorCol  int
	CursorRow  int
	Grabbed    int
	Final      map[int]float64
}

// Cell returns the grid cell of a world point, clamped to the grid.
func (c Canvas) Cell(x, y float64) (int, int) {
	col := int(math.Floor(x / c.Width * float64(c.Cols)))
	row := int(math.Floor(y / c.Height * float64(c.Rows)))
	return clamp(col, 0, c.Cols-1), clamp(row, 0, c.Rows-1)
}

// World returns the world point at the center of a cell.
func (c Canvas) World(col, row int) (float64, float64) {
	x := (float64(col) + 0.5) * c.Width / float64(c.Cols)
	y := (float64(row) + 0.5) * c.Height / float64(c.Rows)
	return x, y
}

func (c Canvas) Render(nodes []graph.Node, edges []graph.Edge) string {
	return c.Draw(nodes, edges, Overlay{Grabbed: -1})
}

// Draw renders the graph and the overlay.
func (c Canvas) Draw(nodes []graph.Node, edges []graph.Edge, ov Overlay) string {
	g := newGrid(c.Cols, c.Rows)
	cells := make([][2]int, len(nodes))
	for i, n := range nodes {
		col, row := c.Cell(n.X, n.Y)
		cells[i] = [2]int{col, row}
	}
	valid := func(e graph.Edge) bool {
		return e.Start >= 0 && e.Start < len(nodes) && e.End >= 0 && e.End < len(nodes)
	}

	// Later passes win: default, then in-progress, then path.
	for _, pass := range []graph.Highlight{graph.HighlightDefault, graph.HighlightInProgress, graph.HighlightPath} {
		k := edgeKind(pass)
		for _, e := range edges {
			h := e.Highlight
			if h == "" {
				h = graph.HighlightDefault
			}
			if h != pass || !valid(e) || e.IsLoop() {
				continue
			}
			a, b := cells[e.Start], cells[e.End]
			g.line(a[0], a[1], b[0], b[1], k)
		}
	}

	ranks := graph.ParallelRank(edges)
	for i, e := range edges {
		if !valid(e) {
			continue
		}
		a, b := cells[e.Start], cells[e.End]
		label := playback.FormatDistance(e.Cost)
		if e.IsLoop() {
			g.text(a[0]+2, a[1]-1-ranks[i], "↻"+label, edgeKind(e.Highlight))
			continue
		}
		col := (a[0]+b[0])/2 - len(label)/2
		row := (a[1]+b[1])/2 + rankOffset(ranks[i])
		g.text(col, row, label, kindCost)
	}

	for i := range nodes {
		k := kindNode
		if i == ov.Grabbed {
			k = kindGrab
		}
		label := fmt.Sprintf("N%d", i)
		g.text(cells[i][0]-len(label)/2, cells[i][1], label, k)
		if d, ok := ov.Final[i]; ok {
			cost := "Cost: " + playback.FormatDistance(d)
			g.text(cells[i][0]-len(cost)/2, cells[i][1]+1, cost, kindFinal)
		}
	}

	if ov.ShowCursor {
		g.cursor(ov.CursorCol, ov.CursorRow)
	}
	return g.String()
}

// rankOffset spreads parallel edge labels above and below the midpoint.
func rankOffset(rank int) int {
	if rank%2 == 1 {
		return -(rank + 1) / 2
	}
	return rank / 2
}

type kind uint8

const (
	kindBlank kind = iota
	kindEdge
	kindActive
	kindPath
	kindCost
	kindNode
	kindGrab
	kindFinal
	kindCursor
)

func edgeKind(h graph.Highlight) kind {
	switch h {
	case graph.HighlightPath:
		return kindPath
	case graph.HighlightInProgress:
		return kindActive
	}
	return kindEdge
}

var kindStyles = map[kind]lipgloss.Style{
	kindEdge:   subtle,
	kindActive: warning,
	kindPath:   special,
	kindCost:   costStyle,
	kindNode:   nodeStyle,
	kindGrab:   grabStyle,
	kindFinal:  finalStyle,
	kindCursor: cursorStyle,
}

type grid struct {
	cols, rows int
	runes      [][]rune
	kinds      [][]kind
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, runes: make([][]rune, rows), kinds: make([][]kind, rows)}
	for r := range g.runes {
		g.runes[r] = []rune(strings.Repeat(" ", cols))
		g.kinds[r] = make([]kind, cols)
	}
	return g
}

func (g *grid) set(col, row int, r rune, k kind) {
	if col < 0 || col >= g.cols || row < 0 || row >= g.rows {
		return
	}
	g.runes[row][col] = r
	g.kinds[row][col] = k
}

func (g *grid) text(col, row int, s string, k kind) {
	for i, r := range []rune(s) {
		g.set(col+i, row, r, k)
	}
}

// line draws a Bresenham segment, leaving both endpoints for the node labels.
func (g *grid) line(c0, r0, c1, r1 int, k kind) {
	ch := slopeRune(c1-c0, r1-r0)
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := sign(c1-c0), sign(r1-r0)
	e := dc + dr
	c, r := c0, r0
	for {
		if (c != c0 || r != r0) && (c != c1 || r != r1) {
			g.set(c, r, ch, k)
		}
		if c == c1 && r == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c += sc
		}
		if e2 <= dc {
			e += dc
			r += sr
		}
	}
}

func (g *grid) cursor(col, row int) {
	if col < 0 || col >= g.cols || row < 0 || row >= g.rows {
		return
	}
	if g.kinds[row][col] == kindBlank {
		g.runes[row][col] = '+'
	}
	g.kinds[row][col] = kindCursor
}

// String renders the grid, styling runs of equal kind.
func (g *grid) String() string {
	var sb strings.Builder
	for r := 0; r < g.rows; r++ {
		start := 0
		for c := 1; c <= g.cols; c++ {
			if c < g.cols && g.kinds[r][c] == g.kinds[r][start] {
				continue
			}
			seg := string(g.runes[r][start:c])
			if st, ok := kindStyles[g.kinds[r][start]]; ok {
				seg = st.Render(seg)
			}
			sb.WriteString(seg)
			start = c
		}
		if r < g.rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func slopeRune(dc, dr int) rune {
	switch {
	case abs(dr)*2 < abs(dc):
		return '─'
	case abs(dc)*2 < abs(dr):
		return '│'
	case sign(dc) == sign(dr):
		return '╲'
	}
	return '╱'
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
