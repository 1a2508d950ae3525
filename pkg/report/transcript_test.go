package report

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrSkyle/routeviz/pkg/algo"
	"github.com/DrSkyle/routeviz/pkg/graph"
	"github.com/DrSkyle/routeviz/pkg/session"
)

type stubClient struct {
	resp *algo.Response
}

func (s stubClient) Validate(ctx context.Context, req algo.Request) (*algo.Validation, error) {
	return &algo.Validation{Valid: true, Connected: true}, nil
}

func (s stubClient) Run(ctx context.Context, alg algo.Algorithm, req algo.Request) (*algo.Response, error) {
	return s.resp, nil
}

func intp(i int) *int { return &i }

func inf() algo.Cost { return algo.Cost(math.Inf(1)) }

type edge struct {
	start, end int
	cost       float64
}

// play builds a graph, runs alg against a stub backend and returns the
// coordinator in playback.
func play(t *testing.T, nodes int, edges []edge, alg algo.Algorithm, start, end int, resp *algo.Response) *session.Coordinator {
	t.Helper()
	ctx := context.Background()
	c, err := session.New(graph.NewMemoryStore(), session.WithRandom(rand.New(rand.NewPCG(1, 1))))
	require.NoError(t, err)
	for i := 0; i < nodes; i++ {
		_, err := c.AddNode(float64(100+200*i), 100)
		require.NoError(t, err)
	}
	for _, e := range edges {
		_, err := c.AddEdge(e.start, e.end, e.cost)
		require.NoError(t, err)
	}
	ticket, err := c.BeginRun(ctx, alg, start, end)
	require.NoError(t, err)
	require.NoError(t, c.CompleteRun(ctx, ticket.Execute(ctx, stubClient{resp: resp})))
	require.Equal(t, session.ModePlayback, c.Mode())
	return c
}

func twoNodeDijkstra(t *testing.T) *session.Coordinator {
	return play(t, 2, []edge{{0, 1, 3}}, algo.Dijkstra, 0, 1, &algo.Response{
		Success: true,
		Steps: []algo.StepDTO{
			{
				Distances:    map[int]algo.Cost{0: 0, 1: inf()},
				Predecessors: map[int]*int{0: nil, 1: nil},
			},
			{
				Distances:          map[int]algo.Cost{0: 0, 1: 3},
				Predecessors:       map[int]*int{0: nil, 1: intp(0)},
				VisitedEdgeIndices: []int{0},
			},
		},
		ShortestPath:   []int{0, 1},
		FinalDistances: map[int]algo.Cost{0: 0, 1: 3},
	})
}

func TestRecord_DijkstraGolden(t *testing.T) {
	c := twoNodeDijkstra(t)
	tr, err := Record(c, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tr.WriteText(&buf))

	g := goldie.New(t)
	g.Assert(t, "dijkstra_two_nodes", buf.Bytes())
}

func TestRecord_BellmanFordGolden(t *testing.T) {
	c := play(t, 3, []edge{{0, 1, 4}, {0, 2, 1}, {2, 1, -2}}, algo.BellmanFord, 0, 1, &algo.Response{
		Success: true,
		Steps: []algo.StepDTO{
			{
				Distances:    map[int]algo.Cost{0: 0, 1: inf(), 2: inf()},
				Predecessors: map[int]*int{0: nil, 1: nil, 2: nil},
			},
			{
				Distances:          map[int]algo.Cost{0: 0, 1: 4, 2: 1},
				Predecessors:       map[int]*int{0: nil, 1: intp(0), 2: intp(0)},
				VisitedEdgeIndices: []int{0, 1},
			},
			{
				Distances:          map[int]algo.Cost{0: 0, 1: -1, 2: 1},
				Predecessors:       map[int]*int{0: intp(-1), 1: intp(2), 2: intp(0)},
				VisitedEdgeIndices: []int{2, 9},
			},
		},
		ShortestPath:   []int{0, 2, 1},
		FinalDistances: map[int]algo.Cost{0: 0, 1: -1, 2: 1},
	})

	tr, err := Record(c, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Dropped)
	assert.Equal(t, []int{1, 2}, tr.PathEdges)
	require.Len(t, tr.Frames, 4)
	assert.False(t, tr.Frames[2].Changed)

	var buf bytes.Buffer
	require.NoError(t, tr.WriteText(&buf))

	g := goldie.New(t)
	g.Assert(t, "bellman_ford_negative", buf.Bytes())
}

func TestRecord_LeavesPathOverlay(t *testing.T) {
	c := twoNodeDijkstra(t)
	_, err := Record(c, 0)
	require.NoError(t, err)

	e, err := c.Store().Edge(0)
	require.NoError(t, err)
	assert.Equal(t, graph.HighlightPath, e.Highlight)
	assert.True(t, c.Run().Finished)
}

func TestRecord_RequiresPlayback(t *testing.T) {
	c, err := session.New(graph.NewMemoryStore())
	require.NoError(t, err)
	_, err = Record(c, 0)
	assert.ErrorIs(t, err, ErrNotPlaying)
}

func TestRecord_StepLimit(t *testing.T) {
	c := twoNodeDijkstra(t)
	tr, err := Record(c, 1)
	require.NoError(t, err)
	require.Len(t, tr.Frames, 1)
	assert.Equal(t, "edge", tr.Frames[0].Event)
	assert.False(t, c.Run().Finished)
}

func TestTranscript_JSONAndCSV(t *testing.T) {
	tr, err := Record(twoNodeDijkstra(t), 0)
	require.NoError(t, err)

	var js bytes.Buffer
	require.NoError(t, tr.Write(&js, "json"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "Dijkstra", decoded["algorithm"])
	frames := decoded["frames"].([]any)
	require.Len(t, frames, 2)
	first := frames[0].(map[string]any)
	assert.Equal(t, float64(0), first["edge"])
	assert.Equal(t, float64(3), first["cost"])

	var csv bytes.Buffer
	require.NoError(t, tr.Write(&csv, "csv"))
	assert.Equal(t, "node,distance,predecessor,final\nN0,0,null,0\nN1,3,N0,3\n", csv.String())

	assert.Error(t, tr.Write(&csv, "xml"))
}

type routePlayer struct {
	*session.Coordinator
	run *session.RunInfo
}

func (p routePlayer) Run() *session.RunInfo { return p.run }

func TestRecord_RouteNamesIndices(t *testing.T) {
	c := twoNodeDijkstra(t)
	tr, err := Record(c, 0)
	require.NoError(t, err)
	assert.Equal(t, "N0", tr.Start)
	assert.Equal(t, "N1", tr.End)

	c = twoNodeDijkstra(t)
	info := *c.Run()
	info.Start = -1
	tr, err = Record(routePlayer{Coordinator: c, run: &info}, 0)
	require.NoError(t, err)
	assert.Equal(t, "N-1", tr.Start, "a route end is never rendered as a missing predecessor")
}
