package playback

import (
	"github.com/DrSkyle/routeviz/pkg/graph"
)

// NoPredecessor marks a node without a predecessor.
const NoPredecessor = -1

// Step is one stage of an externally computed trace.
type Step struct {
	Distances          map[int]float64
	Predecessors       map[int]int
	VisitedEdgeIndices []int
}

// Snapshot is the (distances, predecessors) pair of one Step.
type Snapshot struct {
	Distances    map[int]float64
	Predecessors map[int]int
}

// State of the animator.
type State int

const (
	StateIdle State = iota
	StateLoaded
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateExhausted:
		return "exhausted"
	}
	return "idle"
}

// Event is what a single Advance did.
type Event int

const (
	EventNone Event = iota
	EventEdge
	EventFinished
	EventSkipped
)

func (e Event) String() string {
	switch e {
	case EventEdge:
		return "edge"
	case EventFinished:
		return "finished"
	case EventSkipped:
		return "skipped"
	}
	return "none"
}

// Result describes one Advance call.
type Result struct {
	Event Event
	Edge  int
}

// EdgeHighlighter is the slice of GraphStore the animator needs.
type EdgeHighlighter interface {
	EdgeCount() int
	SetHighlight(index int, h graph.Highlight) error
	ResetHighlights()
}

// LoadStats summarizes a Load.
type LoadStats struct {
	Edges   int // queued edge highlights
	Steps   int // queued table snapshots
	Dropped int // visited indices outside the edge range
}

// Option configures an Animator.
type Option func(*Animator)

// WithRefresh registers a hook fired after each highlighted edge.
func WithRefresh(fn func(edge int)) Option {
	return func(a *Animator) { a.refresh = fn }
}

// Animator replays a trace one edge at a time. Edge highlights and table
// snapshots are two independent LIFO stacks built in reverse at load time
// so that popping yields forward chronological order.
type Animator struct {
	edges     EdgeHighlighter
	refresh   func(edge int)
	edgeStack []int
	snapStack []Snapshot
	onFinish  func()
	state     State
}

func NewAnimator(edges EdgeHighlighter, opts ...Option) *Animator {
	a := &Animator{edges: edges}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load replaces any current trace. onFinish runs exactly once, on the first
// Advance after the edge stack empties. An empty trace is valid: the first
// Advance fires onFinish immediately.
func (a *Animator) Load(steps []Step, onFinish func()) LoadStats {
	var stats LoadStats
	limit := a.edges.EdgeCount()

	var forward []int
	snaps := make([]Snapshot, 0, len(steps))
	for _, st := range steps {
		for _, idx := range st.VisitedEdgeIndices {
			if idx < 0 || idx >= limit {
				stats.Dropped++
				continue
			}
			forward = append(forward, idx)
		}
		snaps = append(snaps, Snapshot{Distances: st.Distances, Predecessors: st.Predecessors})
	}

	a.edgeStack = reversed(forward)
	a.snapStack = reversed(snaps)
	a.onFinish = onFinish
	a.state = StateLoaded

	stats.Edges = len(a.edgeStack)
	stats.Steps = len(a.snapStack)
	return stats
}

// Advance highlights the next edge as in-progress. Once the stack is empty
// the finish callback fires and the animator becomes Exhausted; further
// calls do nothing.
func (a *Animator) Advance() Result {
	if a.state != StateLoaded {
		return Result{Event: EventNone, Edge: -1}
	}

	if n := len(a.edgeStack); n > 0 {
		idx := a.edgeStack[n-1]
		a.edgeStack = a.edgeStack[:n-1]
		if err := a.edges.SetHighlight(idx, graph.HighlightInProgress); err != nil {
			return Result{Event: EventSkipped, Edge: idx}
		}
		if a.refresh != nil {
			a.refresh(idx)
		}
		return Result{Event: EventEdge, Edge: idx}
	}

	a.state = StateExhausted
	fn := a.onFinish
	a.onFinish = nil
	if fn != nil {
		fn()
	}
	return Result{Event: EventFinished, Edge: -1}
}

// AdvanceStep pops the next table snapshot. It is paced independently of
// Advance and may run out before or after the edge stack does.
func (a *Animator) AdvanceStep() (Snapshot, bool) {
	if a.state == StateIdle {
		return Snapshot{}, false
	}
	n := len(a.snapStack)
	if n == 0 {
		return Snapshot{}, false
	}
	s := a.snapStack[n-1]
	a.snapStack = a.snapStack[:n-1]
	return s, true
}

// Exit clears every highlight, drops what is left of the trace and returns
// to Idle. The callback is discarded if it has not fired.
func (a *Animator) Exit() {
	a.edges.ResetHighlights()
	a.edgeStack = nil
	a.snapStack = nil
	a.onFinish = nil
	a.state = StateIdle
}

func (a *Animator) State() State { return a.state }

// Remaining is the number of queued edge highlights.
func (a *Animator) Remaining() int { return len(a.edgeStack) }

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
