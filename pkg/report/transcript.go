// Package report turns a playback into a transcript for headless runs.
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/DrSkyle/routeviz/pkg/graph"
	"github.com/DrSkyle/routeviz/pkg/playback"
	"github.com/DrSkyle/routeviz/pkg/session"
)

// Player is the part of the coordinator a transcript drives.
type Player interface {
	Mode() session.Mode
	Step() (session.StepResult, error)
	Run() *session.RunInfo
	Table() *playback.Table
	Store() graph.GraphStore
}

// Frame is one Step of the playback.
type Frame struct {
	Step    int      `json:"step"`
	Event   string   `json:"event"`
	Edge    *int     `json:"edge,omitempty"`
	Start   *int     `json:"from,omitempty"`
	End     *int     `json:"to,omitempty"`
	Cost    *float64 `json:"cost,omitempty"`
	Changed bool     `json:"tableChanged"`
	Table   string   `json:"-"`
}

// Row is a node's final state.
type Row struct {
	Node        string `json:"node"`
	Distance    string `json:"distance"`
	Predecessor string `json:"predecessor"`
	Final       string `json:"final,omitempty"`
}

// Transcript is a complete recorded playback.
type Transcript struct {
	Algorithm    string  `json:"algorithm"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	Nodes        int     `json:"nodes"`
	Edges        int     `json:"edges"`
	Dropped      int     `json:"droppedIndices,omitempty"`
	InitialTable string  `json:"-"`
	Frames       []Frame `json:"frames"`
	Path         []int   `json:"shortestPath,omitempty"`
	PathEdges    []int   `json:"pathEdges,omitempty"`
	Rows         []Row   `json:"table"`
}

// ErrNotPlaying is returned by Record when there is no playback to drive.
var ErrNotPlaying = errors.New("report: no playback in progress")

// Record steps p until the trace is exhausted. maxSteps bounds the loop;
// zero means edges+steps of the loaded trace plus one.
func Record(p Player, maxSteps int) (*Transcript, error) {
	if p.Mode() != session.ModePlayback || p.Run() == nil {
		return nil, ErrNotPlaying
	}
	run := p.Run()
	edges := p.Store().Edges()

	t := &Transcript{
		Algorithm: run.Algorithm.Title(),
		Start:     fmt.Sprintf("N%d", run.Start),
		End:       fmt.Sprintf("N%d", run.End),
		Nodes:     p.Store().NodeCount(),
		Edges:     len(edges),
		Dropped:   run.Stats.Dropped,
	}
	if tbl := p.Table(); tbl != nil {
		t.InitialTable = tbl.Plain()
	}
	if maxSteps <= 0 {
		maxSteps = run.Stats.Edges + run.Stats.Steps + 1
	}

	for i := 1; i <= maxSteps; i++ {
		res, err := p.Step()
		if err != nil {
			return nil, err
		}
		f := Frame{Step: i, Event: res.Event.String(), Changed: res.TableChanged}
		if res.Event == playback.EventEdge || res.Event == playback.EventSkipped {
			idx := res.Edge
			f.Edge = &idx
			if idx >= 0 && idx < len(edges) {
				e := edges[idx]
				f.Start, f.End, f.Cost = &e.Start, &e.End, &e.Cost
			}
		}
		if res.TableChanged && p.Table() != nil {
			f.Table = p.Table().Plain()
		}
		t.Frames = append(t.Frames, f)
		if res.Event == playback.EventFinished || res.Event == playback.EventNone {
			break
		}
	}

	if run.Response != nil {
		t.Path = run.Response.ShortestPath
	}
	t.PathEdges = run.PathEdges

	if tbl := p.Table(); tbl != nil {
		for _, r := range tbl.Rows {
			row := Row{
				Node:        fmt.Sprintf("N%d", r.Node),
				Distance:    playback.FormatDistance(r.CurrentDistance()),
				Predecessor: playback.FormatPredecessor(r.CurrentPredecessor()),
			}
			if d, ok := run.FinalDistances[r.Node]; ok {
				row.Final = playback.FormatDistance(d)
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t, nil
}

// WriteText renders the transcript for a terminal.
func (t *Transcript) WriteText(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "algorithm: %s\n", t.Algorithm)
	fmt.Fprintf(&sb, "route: %s -> %s\n", t.Start, t.End)
	fmt.Fprintf(&sb, "graph: %d nodes, %d edges\n", t.Nodes, t.Edges)
	if t.Dropped > 0 {
		fmt.Fprintf(&sb, "dropped: %d visited indices outside the graph\n", t.Dropped)
	}
	if t.InitialTable != "" {
		sb.WriteString("\n")
		sb.WriteString(t.InitialTable)
	}

	for _, f := range t.Frames {
		sb.WriteString("\n")
		switch {
		case f.Start != nil:
			fmt.Fprintf(&sb, "step %d: %s %d (N%d -> N%d, cost %s)\n",
				f.Step, f.Event, *f.Edge, *f.Start, *f.End, playback.FormatDistance(*f.Cost))
		case f.Edge != nil:
			fmt.Fprintf(&sb, "step %d: %s %d\n", f.Step, f.Event, *f.Edge)
		default:
			fmt.Fprintf(&sb, "step %d: %s\n", f.Step, f.Event)
		}
		sb.WriteString(f.Table)
	}

	if len(t.Path) > 0 {
		labels := make([]string, len(t.Path))
		for i, n := range t.Path {
			labels[i] = fmt.Sprintf("N%d", n)
		}
		fmt.Fprintf(&sb, "\nshortest path: %s\n", strings.Join(labels, " -> "))
		if len(t.PathEdges) > 0 {
			fmt.Fprintf(&sb, "path edges: %s\n", joinInts(t.PathEdges))
		}
	}

	finals := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if r.Final != "" {
			finals = append(finals, r)
		}
	}
	if len(finals) > 0 {
		sb.WriteString("\nfinal distances:\n")
		for _, r := range finals {
			fmt.Fprintf(&sb, "  %s  Cost: %s\n", r.Node, r.Final)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON writes the transcript as indented JSON. Infinite costs are
// written as strings.
func (t *Transcript) WriteJSON(w io.Writer) error {
	out := *t
	out.Frames = make([]Frame, len(t.Frames))
	copy(out.Frames, t.Frames)
	for i := range out.Frames {
		if c := out.Frames[i].Cost; c != nil && (math.IsInf(*c, 0) || math.IsNaN(*c)) {
			out.Frames[i].Cost = nil
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteCSV writes the final table, one row per node.
func (t *Transcript) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"node", "distance", "predecessor", "final"}); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := cw.Write([]string{r.Node, r.Distance, r.Predecessor, r.Final}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format: text, json or csv.
func (t *Transcript) Write(w io.Writer, format string) error {
	switch format {
	case "", "text":
		return t.WriteText(w)
	case "json":
		return t.WriteJSON(w)
	case "csv":
		return t.WriteCSV(w)
	}
	return fmt.Errorf("report: unknown format %q", format)
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
