package session

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/DrSkyle/routeviz/pkg/algo"
	"github.com/DrSkyle/routeviz/pkg/graph"
	"github.com/DrSkyle/routeviz/pkg/history"
	"github.com/DrSkyle/routeviz/pkg/playback"
	"github.com/DrSkyle/routeviz/pkg/policy"
)

// Mode is the coordinator's edit gate.
type Mode int

const (
	ModeEditing Mode = iota
	ModePlayback
)

func (m Mode) String() string {
	if m == ModePlayback {
		return "playback"
	}
	return "editing"
}

// Limits caps what may be sent to the backend. Zero means unlimited.
type Limits struct {
	MaxNodes int
	MaxEdges int
}

// RunInfo describes the run being played back.
type RunInfo struct {
	Algorithm algo.Algorithm
	Start     int
	End       int
	Response  *algo.Response
	Stats     playback.LoadStats

	// Set by the finish overlay.
	Finished       bool
	PathEdges      []int
	FinalDistances map[int]float64
}

type drag struct {
	index  int
	priorX float64
	priorY float64
}

type counters struct {
	started  metric.Int64Counter
	rejected metric.Int64Counter
	stale    metric.Int64Counter
}

// Coordinator owns the graph, its undo log and the animator, and enforces
// the Editing/Playback gate. It is not safe for concurrent use; drive it
// from one event loop. Ticket.Execute is the only part meant to run
// elsewhere.
type Coordinator struct {
	store  graph.GraphStore
	log    *history.Log
	anim   *playback.Animator
	table  *playback.Table
	policy *policy.Engine
	logger *slog.Logger

	rng        *rand.Rand
	randomOpts graph.RandomOptions
	limits     Limits
	lockPolicy history.LockPolicy

	mode       Mode
	generation uint64
	pending    *Ticket
	run        *RunInfo
	drag       *drag

	metrics counters
}

// Option defines a functional configuration override.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithPolicy replaces the admission rules.
func WithPolicy(p *policy.Engine) Option {
	return func(c *Coordinator) { c.policy = p }
}

func WithLimits(l Limits) Option {
	return func(c *Coordinator) { c.limits = l }
}

// WithRandom seeds the generator used by Randomize.
func WithRandom(r *rand.Rand) Option {
	return func(c *Coordinator) { c.rng = r }
}

func WithRandomOptions(o graph.RandomOptions) Option {
	return func(c *Coordinator) { c.randomOpts = o }
}

// WithLockPolicy decides whether Undo during playback is rejected or ignored.
func WithLockPolicy(p history.LockPolicy) Option {
	return func(c *Coordinator) { c.lockPolicy = p }
}

// New initializes a coordinator over store.
func New(store graph.GraphStore, opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		store:      store,
		logger:     slog.Default(),
		rng:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		randomOpts: graph.DefaultRandomOptions(),
		lockPolicy: history.LockReject,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.policy == nil {
		p, err := policy.NewDefaultEngine()
		if err != nil {
			return nil, err
		}
		c.policy = p
	}

	c.log = history.NewLog(store, c.lockPolicy)
	c.anim = playback.NewAnimator(store)

	meter := otel.Meter("routeviz/session")
	c.metrics.started, _ = meter.Int64Counter("routeviz.runs.started",
		metric.WithDescription("Algorithm runs sent to the backend"))
	c.metrics.rejected, _ = meter.Int64Counter("routeviz.runs.rejected",
		metric.WithDescription("Algorithm runs blocked before or by the backend"))
	c.metrics.stale, _ = meter.Int64Counter("routeviz.runs.stale",
		metric.WithDescription("Algorithm responses discarded because the graph changed"))

	return c, nil
}

// Store exposes the graph for rendering. Mutate it only through the coordinator.
func (c *Coordinator) Store() graph.GraphStore { return c.store }

func (c *Coordinator) Mode() Mode { return c.mode }

// Generation increments on every successful structural change.
func (c *Coordinator) Generation() uint64 { return c.generation }

// Pending returns the outstanding run, or nil.
func (c *Coordinator) Pending() *Ticket { return c.pending }

// Run returns the run being played back, or nil.
func (c *Coordinator) Run() *RunInfo { return c.run }

// Table returns the playback side table, or nil.
func (c *Coordinator) Table() *playback.Table { return c.table }

// AnimatorState reports the animator's state.
func (c *Coordinator) AnimatorState() playback.State { return c.anim.State() }

// Remaining is the number of edges left to highlight.
func (c *Coordinator) Remaining() int { return c.anim.Remaining() }

// UndoDepth is the number of recorded actions.
func (c *Coordinator) UndoDepth() int { return c.log.Len() }

// Limits returns the configured run limits.
func (c *Coordinator) Limits() Limits { return c.limits }

func (c *Coordinator) editable() error {
	if c.mode == ModePlayback {
		return ErrPlaybackActive
	}
	return nil
}

func (c *Coordinator) bump() { c.generation++ }

// AddNode places a node at (x, y).
func (c *Coordinator) AddNode(x, y float64) (int, error) {
	if err := c.editable(); err != nil {
		return -1, err
	}
	idx := c.store.AddNode(x, y)
	c.log.Record(history.AddNode(idx))
	c.bump()
	return idx, nil
}

// AddEdge appends an edge after checking both endpoints and the cost.
func (c *Coordinator) AddEdge(start, end int, cost float64) (int, error) {
	if err := c.editable(); err != nil {
		return -1, err
	}
	n := c.store.NodeCount()
	if start < 0 || start >= n {
		return -1, &InputError{Field: "start node", Value: itoa(start), Reason: "no such node"}
	}
	if end < 0 || end >= n {
		return -1, &InputError{Field: "end node", Value: itoa(end), Reason: "no such node"}
	}
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return -1, &InputError{Field: "cost", Reason: "expected a finite number"}
	}
	idx := c.store.AddEdge(start, end, cost)
	c.log.Record(history.AddEdge(idx))
	c.bump()
	return idx, nil
}

// AddEdgeInput parses "start,end,cost" and adds the edge.
func (c *Coordinator) AddEdgeInput(s string) (int, error) {
	if err := c.editable(); err != nil {
		return -1, err
	}
	in, err := ParseEdgeInput(s, c.store.NodeCount())
	if err != nil {
		return -1, err
	}
	return c.AddEdge(in.Start, in.End, in.Cost)
}

// HitTest returns the node under (x, y).
func (c *Coordinator) HitTest(x, y float64) (int, bool) {
	return c.store.HitTest(x, y)
}

// DragStart grabs a node and remembers where it was.
func (c *Coordinator) DragStart(index int) error {
	if err := c.editable(); err != nil {
		return err
	}
	n, err := c.store.Node(index)
	if err != nil {
		return err
	}
	if _, err := c.closeDrag(); err != nil {
		return err
	}
	c.drag = &drag{index: index, priorX: n.X, priorY: n.Y}
	return nil
}

// Dragging returns the grabbed node.
func (c *Coordinator) Dragging() (int, bool) {
	if c.drag == nil {
		return -1, false
	}
	return c.drag.index, true
}

// DragTo moves the grabbed node. Intermediate positions are not recorded.
func (c *Coordinator) DragTo(x, y float64) error {
	if err := c.editable(); err != nil {
		return err
	}
	if c.drag == nil {
		return ErrNoDrag
	}
	return c.store.MoveNode(c.drag.index, x, y)
}

// DragEnd releases the node and records one dragNode action if it moved.
func (c *Coordinator) DragEnd() (bool, error) {
	if c.drag == nil {
		return false, ErrNoDrag
	}
	return c.closeDrag()
}

// closeDrag ends any open drag. A moved node is recorded and bumps the
// generation, so every later path sees the move as an edit.
func (c *Coordinator) closeDrag() (bool, error) {
	d := c.drag
	if d == nil {
		return false, nil
	}
	c.drag = nil

	n, err := c.store.Node(d.index)
	if err != nil {
		return false, err
	}
	if n.X == d.priorX && n.Y == d.priorY {
		return false, nil
	}
	c.log.Record(history.DragNode(d.index, d.priorX, d.priorY))
	c.bump()
	c.logger.Debug("drag closed", "node", d.index)
	return true, nil
}

// MoveNode is a whole drag in one call.
func (c *Coordinator) MoveNode(index int, x, y float64) error {
	if err := c.DragStart(index); err != nil {
		return err
	}
	if err := c.DragTo(x, y); err != nil {
		c.drag = nil
		return err
	}
	_, err := c.DragEnd()
	return err
}

// Clear wipes the graph. Undo restores it.
func (c *Coordinator) Clear() error {
	return c.replace(graph.Snapshot{}, "clear")
}

// Randomize swaps in a random graph, recorded as an undoable clear.
func (c *Coordinator) Randomize() error {
	if err := c.editable(); err != nil {
		return err
	}
	return c.replace(graph.Random(c.rng, c.randomOpts), "randomize")
}

// LoadScenario swaps in a saved graph, recorded as an undoable clear.
func (c *Coordinator) LoadScenario(snap graph.Snapshot) error {
	return c.replace(snap, "load")
}

func (c *Coordinator) replace(next graph.Snapshot, reason string) error {
	if err := c.editable(); err != nil {
		return err
	}
	if _, err := c.closeDrag(); err != nil {
		return err
	}
	c.log.Record(history.Clear(c.store.Snapshot()))
	edges := make([]graph.Edge, len(next.Edges))
	for i, e := range next.Edges {
		e.Highlight = graph.HighlightDefault
		edges[i] = e
	}
	c.store.ReplaceAll(next.Nodes, edges)
	c.bump()
	c.logger.Debug("graph replaced", "reason", reason, "nodes", len(next.Nodes), "edges", len(next.Edges))
	return nil
}

// Undo reverts the latest edit. It reports false when there was nothing to
// undo, or when playback is active under the ignore policy. An open drag
// is closed first, so undo puts the grabbed node back.
func (c *Coordinator) Undo() (bool, error) {
	if c.mode == ModePlayback && c.lockPolicy == history.LockReject {
		return false, ErrPlaybackActive
	}
	if _, err := c.closeDrag(); err != nil {
		return false, err
	}
	ok, err := c.log.Undo()
	if err != nil {
		return false, err
	}
	if ok {
		c.bump()
	}
	return ok, nil
}

// Summary is a local, network-free check of the graph.
type Summary struct {
	Nodes            int
	Edges            int
	Connected        bool
	HasNegativeEdges bool
	Components       int
	Violations       []policy.Violation
}

// Check evaluates the admission rules against the current graph.
func (c *Coordinator) Check(ctx context.Context, alg algo.Algorithm, start, end int) (Summary, error) {
	snap := c.store.Snapshot()
	s := Summary{
		Nodes:            len(snap.Nodes),
		Edges:            len(snap.Edges),
		Connected:        snap.IsConnected(),
		HasNegativeEdges: snap.HasNegativeEdge(),
		Components:       snap.Components(),
	}
	vs, err := c.policy.Evaluate(ctx, c.policyInput(alg, start, end, s))
	if err != nil {
		return s, err
	}
	s.Violations = vs
	return s, nil
}

func (c *Coordinator) policyInput(alg algo.Algorithm, start, end int, s Summary) policy.Input {
	return policy.Input{
		Algorithm:        string(alg),
		Start:            start,
		End:              end,
		NodeCount:        s.Nodes,
		EdgeCount:        s.Edges,
		Connected:        s.Connected,
		HasNegativeEdges: s.HasNegativeEdges,
		MaxNodes:         c.limits.MaxNodes,
		MaxEdges:         c.limits.MaxEdges,
	}
}

// BeginRun performs every local check and issues a ticket. No network call
// happens here; hand the ticket to Execute and its result to CompleteRun.
func (c *Coordinator) BeginRun(ctx context.Context, alg algo.Algorithm, start, end int) (*Ticket, error) {
	if c.mode == ModePlayback {
		return nil, ErrPlaybackActive
	}
	if c.pending != nil {
		return nil, ErrRunInFlight
	}

	n := c.store.NodeCount()
	if n > 0 {
		if start < 0 || start >= n {
			return nil, &InputError{Field: "start node", Value: itoa(start), Reason: "no such node"}
		}
		if end < 0 || end >= n {
			return nil, &InputError{Field: "end node", Value: itoa(end), Reason: "no such node"}
		}
		if alg == algo.Dijkstra && start == end {
			return nil, &InputError{Field: "end node", Value: itoa(end), Reason: "must differ from the start node"}
		}
	}

	attrs := metric.WithAttributes(attribute.String("algorithm", string(alg)))

	sum, err := c.Check(ctx, alg, start, end)
	if err != nil {
		return nil, err
	}
	if len(sum.Violations) > 0 {
		v := sum.Violations[0]
		c.metrics.rejected.Add(ctx, 1, attrs)
		c.logger.Info("run rejected", "algorithm", alg, "rule", v.ID)
		return nil, &ValidationError{Rule: v.ID, Message: v.Message}
	}

	snap := c.store.Snapshot()
	req := algo.BuildRequest(snap, start, end)
	if err := req.Validate(); err != nil {
		c.metrics.rejected.Add(ctx, 1, attrs)
		return nil, &ValidationError{Rule: "request", Message: "The network cannot be sent: " + err.Error()}
	}

	t := newTicket(c.generation, alg, start, end, req)
	c.pending = t
	c.metrics.started.Add(ctx, 1, attrs)
	c.logger.Info("run started",
		"ticket", t.ID,
		"algorithm", alg,
		"start", start,
		"end", end,
		"generation", t.Generation,
	)
	return t, nil
}

// CompleteRun applies a finished exchange. The graph, log and animator are
// untouched unless the result is a success for the current generation, in
// which case playback begins.
func (c *Coordinator) CompleteRun(ctx context.Context, res RunResult) error {
	if res.Ticket == nil || c.pending == nil || c.pending.ID != res.Ticket.ID {
		return ErrStaleResponse
	}
	t := c.pending
	c.pending = nil
	attrs := metric.WithAttributes(attribute.String("algorithm", string(t.Algorithm)))

	if res.Err != nil {
		c.metrics.rejected.Add(ctx, 1, attrs)
		c.logger.Warn("run failed", "ticket", t.ID, "error", res.Err)
		return res.Err
	}
	// A node held since the ticket was issued counts as an edit.
	if _, err := c.closeDrag(); err != nil {
		return err
	}
	if c.generation != t.Generation || c.mode != ModeEditing {
		c.metrics.stale.Add(ctx, 1, attrs)
		c.logger.Info("stale response discarded",
			"ticket", t.ID,
			"issued_generation", t.Generation,
			"current_generation", c.generation,
		)
		return ErrStaleResponse
	}

	c.startPlayback(t, res.Response)
	return nil
}

// CancelPending forgets the outstanding ticket. The exchange itself is not
// interrupted; its result will be reported as stale.
func (c *Coordinator) CancelPending() {
	c.pending = nil
}

func (c *Coordinator) startPlayback(t *Ticket, resp *algo.Response) {
	info := &RunInfo{
		Algorithm: t.Algorithm,
		Start:     t.Start,
		End:       t.End,
		Response:  resp,
	}
	info.Stats = c.anim.Load(resp.PlaybackSteps(), func() { c.finish(info) })

	first, _ := c.anim.AdvanceStep()
	c.table = playback.NewTable(c.store.NodeCount(), first)
	c.run = info
	c.mode = ModePlayback
	c.log.SetLocked(true)

	c.logger.Info("playback started",
		"ticket", t.ID,
		"edges", info.Stats.Edges,
		"steps", info.Stats.Steps,
		"dropped", info.Stats.Dropped,
	)
}

// finish applies the terminal overlays: the shortest path drawn as path
// edges, and the final distances.
func (c *Coordinator) finish(info *RunInfo) {
	info.Finished = true
	resp := info.Response
	if len(resp.ShortestPath) > 1 {
		c.store.ResetHighlights()
		info.PathEdges = graph.PathEdges(c.store.Edges(), resp.ShortestPath)
		for _, idx := range info.PathEdges {
			_ = c.store.SetHighlight(idx, graph.HighlightPath)
		}
	}
	info.FinalDistances = resp.Final()
	c.logger.Info("playback finished", "path_edges", len(info.PathEdges))
}

// StepResult describes one Step.
type StepResult struct {
	Event        playback.Event
	Edge         int
	TableChanged bool
}

// Step advances the edge highlight and the side table once each.
func (c *Coordinator) Step() (StepResult, error) {
	if c.mode != ModePlayback {
		return StepResult{}, ErrNotPlaying
	}
	r := c.anim.Advance()
	out := StepResult{Event: r.Event, Edge: r.Edge}
	if snap, ok := c.anim.AdvanceStep(); ok && c.table != nil {
		out.TableChanged = c.table.Apply(snap)
	}
	return out, nil
}

// AdvanceEdge advances only the edge highlight.
func (c *Coordinator) AdvanceEdge() (playback.Result, error) {
	if c.mode != ModePlayback {
		return playback.Result{}, ErrNotPlaying
	}
	return c.anim.Advance(), nil
}

// AdvanceTable advances only the side table.
func (c *Coordinator) AdvanceTable() (bool, error) {
	if c.mode != ModePlayback {
		return false, ErrNotPlaying
	}
	snap, ok := c.anim.AdvanceStep()
	if !ok || c.table == nil {
		return false, nil
	}
	return c.table.Apply(snap), nil
}

// ExitPlayback resets highlights and re-opens the graph for editing.
func (c *Coordinator) ExitPlayback() error {
	if c.mode != ModePlayback {
		return ErrNotPlaying
	}
	c.anim.Exit()
	c.table = nil
	c.run = nil
	c.mode = ModeEditing
	c.log.SetLocked(false)
	c.logger.Debug("playback exited")
	return nil
}

func itoa(i int) string { return strconv.Itoa(i) }
