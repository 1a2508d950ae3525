package playback

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrSkyle/routeviz/pkg/graph"
)

func twoNodeStore() *graph.MemoryStore {
	s := graph.NewMemoryStore()
	s.AddNode(0, 0)
	s.AddNode(200, 0)
	s.AddEdge(0, 1, 3)
	return s
}

func twoSteps() []Step {
	inf := math.Inf(1)
	return []Step{
		{
			Distances:          map[int]float64{0: 0, 1: inf},
			Predecessors:       map[int]int{0: NoPredecessor, 1: NoPredecessor},
			VisitedEdgeIndices: []int{},
		},
		{
			Distances:          map[int]float64{0: 0, 1: 3},
			Predecessors:       map[int]int{0: NoPredecessor, 1: 0},
			VisitedEdgeIndices: []int{0},
		},
	}
}

func TestTwoStepTrace(t *testing.T) {
	store := twoNodeStore()
	var refreshed []int
	a := NewAnimator(store, WithRefresh(func(e int) { refreshed = append(refreshed, e) }))

	calls := 0
	stats := a.Load(twoSteps(), func() { calls++ })
	assert.Equal(t, LoadStats{Edges: 1, Steps: 2}, stats)
	assert.Equal(t, StateLoaded, a.State())

	r := a.Advance()
	assert.Equal(t, Result{Event: EventEdge, Edge: 0}, r)
	e, _ := store.Edge(0)
	assert.Equal(t, graph.HighlightInProgress, e.Highlight)
	assert.Zero(t, a.Remaining())
	assert.Zero(t, calls)

	r = a.Advance()
	assert.Equal(t, EventFinished, r.Event)
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateExhausted, a.State())

	for i := 0; i < 5; i++ {
		assert.Equal(t, EventNone, a.Advance().Event)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, []int{0}, refreshed)
}

func TestForwardOrderAcrossSteps(t *testing.T) {
	store := graph.NewMemoryStore()
	store.AddNode(0, 0)
	for i := 0; i < 5; i++ {
		store.AddEdge(0, 0, float64(i))
	}

	a := NewAnimator(store)
	a.Load([]Step{
		{VisitedEdgeIndices: []int{3, 1}},
		{VisitedEdgeIndices: nil},
		{VisitedEdgeIndices: []int{4, 0, 2}},
	}, nil)

	var got []int
	for {
		r := a.Advance()
		if r.Event != EventEdge {
			require.Equal(t, EventFinished, r.Event)
			break
		}
		got = append(got, r.Edge)
	}
	assert.Equal(t, []int{3, 1, 4, 0, 2}, got)
}

func TestEmptyTraceFinishesOnFirstAdvance(t *testing.T) {
	a := NewAnimator(twoNodeStore())
	calls := 0
	stats := a.Load(nil, func() { calls++ })
	assert.Zero(t, stats.Edges)

	assert.Equal(t, EventFinished, a.Advance().Event)
	assert.Equal(t, 1, calls)
	a.Advance()
	assert.Equal(t, 1, calls)
}

func TestOutOfRangeIndicesDropped(t *testing.T) {
	a := NewAnimator(twoNodeStore())
	stats := a.Load([]Step{{VisitedEdgeIndices: []int{-1, 0, 7}}}, nil)
	assert.Equal(t, 2, stats.Dropped)
	assert.Equal(t, 1, stats.Edges)
}

func TestAdvanceSkipsEdgeRemovedAfterLoad(t *testing.T) {
	store := twoNodeStore()
	a := NewAnimator(store)
	a.Load([]Step{{VisitedEdgeIndices: []int{0}}}, nil)
	require.NoError(t, store.RemoveEdgeAt(0))

	r := a.Advance()
	assert.Equal(t, EventSkipped, r.Event)
	assert.Equal(t, EventFinished, a.Advance().Event)
}

func TestAdvanceStepIndependentOfAdvance(t *testing.T) {
	a := NewAnimator(twoNodeStore())
	a.Load(twoSteps(), nil)

	first, ok := a.AdvanceStep()
	require.True(t, ok)
	assert.True(t, math.IsInf(first.Distances[1], 1))

	second, ok := a.AdvanceStep()
	require.True(t, ok)
	assert.Equal(t, 3.0, second.Distances[1])

	_, ok = a.AdvanceStep()
	assert.False(t, ok)

	assert.Equal(t, 1, a.Remaining(), "edge stack untouched by step pops")
}

func TestExitResetsHighlightsOnly(t *testing.T) {
	store := twoNodeStore()
	before := store.Snapshot()

	a := NewAnimator(store)
	calls := 0
	a.Load(twoSteps(), func() { calls++ })
	a.Advance()
	a.Exit()

	assert.Equal(t, StateIdle, a.State())
	assert.True(t, before.Equal(store.Snapshot()))
	for _, e := range store.Edges() {
		assert.Equal(t, graph.HighlightDefault, e.Highlight)
	}

	assert.Equal(t, EventNone, a.Advance().Event)
	assert.Zero(t, calls, "exit discards the pending callback")
	_, ok := a.AdvanceStep()
	assert.False(t, ok)
}

func TestReloadFromExhausted(t *testing.T) {
	a := NewAnimator(twoNodeStore())
	a.Load(nil, nil)
	a.Advance()
	require.Equal(t, StateExhausted, a.State())

	calls := 0
	a.Load(twoSteps(), func() { calls++ })
	assert.Equal(t, StateLoaded, a.State())
	assert.Equal(t, 1, a.Remaining())
	a.Advance()
	a.Advance()
	assert.Equal(t, 1, calls)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "loaded", StateLoaded.String())
	assert.Equal(t, "exhausted", StateExhausted.String())
}
