package playback

import (
	"fmt"
	"math"
	"strings"
)

// Row is the history of one node in the info table. The last element of
// each slice is the current value; earlier ones render struck through.
type Row struct {
	Node         int
	Distances    []float64
	Predecessors []int

	lastPred int
}

// Table is the side table shown during playback.
type Table struct {
	Rows []Row
}

// NewTable seeds one row per node from the first snapshot of a trace.
func NewTable(nodeCount int, first Snapshot) *Table {
	t := &Table{Rows: make([]Row, nodeCount)}
	for i := range t.Rows {
		d := lookupDistance(first.Distances, i)
		p := lookupPredecessor(first.Predecessors, i)
		t.Rows[i] = Row{
			Node:         i,
			Distances:    []float64{d},
			Predecessors: []int{p},
			lastPred:     p,
		}
	}
	return t
}

// Apply folds the next snapshot in. A distance is appended when it differs
// from the current one. A predecessor change is tracked, but only a change
// to a real node is appended to the visible history. Reports whether any
// row changed.
func (t *Table) Apply(next Snapshot) bool {
	changed := false
	for i := range t.Rows {
		r := &t.Rows[i]

		d := lookupDistance(next.Distances, r.Node)
		if !sameDistance(r.Distances[len(r.Distances)-1], d) {
			r.Distances = append(r.Distances, d)
			changed = true
		}

		p := lookupPredecessor(next.Predecessors, r.Node)
		if p != r.lastPred {
			if p != NoPredecessor {
				r.Predecessors = append(r.Predecessors, p)
				changed = true
			}
			r.lastPred = p
		}
	}
	return changed
}

// CurrentDistance returns the latest distance.
func (r Row) CurrentDistance() float64 {
	return r.Distances[len(r.Distances)-1]
}

// CurrentPredecessor returns the latest visible predecessor.
func (r Row) CurrentPredecessor() int {
	return r.Predecessors[len(r.Predecessors)-1]
}

// FormatDistance renders a cost, using ∞ for +Inf.
func FormatDistance(d float64) string {
	switch {
	case math.IsInf(d, 1):
		return "∞"
	case math.IsInf(d, -1):
		return "-∞"
	case math.IsNaN(d):
		return "NaN"
	case d == math.Trunc(d) && math.Abs(d) < 1e15:
		return fmt.Sprintf("%d", int64(d))
	}
	return fmt.Sprintf("%g", d)
}

// FormatPredecessor renders N<i>, or "null" for none.
func FormatPredecessor(p int) string {
	if p == NoPredecessor {
		return "null"
	}
	return fmt.Sprintf("N%d", p)
}

// Plain renders the table as text, wrapping superseded values in ~…~.
func (t *Table) Plain() string {
	var sb strings.Builder
	sb.WriteString("node | distance | predecessor\n")
	for _, r := range t.Rows {
		sb.WriteString(fmt.Sprintf("N%d | %s | %s\n",
			r.Node,
			history(r.Distances, FormatDistance),
			history(r.Predecessors, FormatPredecessor)))
	}
	return sb.String()
}

func history[T any](vals []T, format func(T) string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		if i < len(vals)-1 {
			parts[i] = "~" + format(v) + "~"
		} else {
			parts[i] = format(v)
		}
	}
	return strings.Join(parts, " ")
}

func lookupDistance(m map[int]float64, i int) float64 {
	if d, ok := m[i]; ok {
		return d
	}
	return math.Inf(1)
}

func lookupPredecessor(m map[int]int, i int) int {
	if p, ok := m[i]; ok && p >= 0 {
		return p
	}
	return NoPredecessor
}

func sameDistance(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
