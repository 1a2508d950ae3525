package graph

import (
	"math"
	"math/rand/v2"
)

// RandomOptions bounds the random graph generator.
type RandomOptions struct {
	MinNodes    int
	MaxNodes    int
	Width       float64
	Height      float64
	Margin      float64
	MinDistance float64
	MaxCost     int
	NodeSize    float64

	// MaxAttempts caps placement retries per node. Once exhausted the last
	// candidate is accepted even if it sits closer than MinDistance.
	MaxAttempts int
}

// DefaultRandomOptions matches a 1000x600 canvas.
func DefaultRandomOptions() RandomOptions {
	return RandomOptions{
		MinNodes:    3,
		MaxNodes:    12,
		Width:       1000,
		Height:      600,
		Margin:      100,
		MinDistance: 100,
		MaxCost:     100,
		NodeSize:    DefaultNodeSize,
		MaxAttempts: 500,
	}
}

func (o RandomOptions) normalized() RandomOptions {
	d := DefaultRandomOptions()
	if o.MinNodes <= 0 {
		o.MinNodes = d.MinNodes
	}
	if o.MaxNodes < o.MinNodes {
		o.MaxNodes = o.MinNodes
	}
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Margin < 0 || 2*o.Margin >= math.Min(o.Width, o.Height) {
		o.Margin = 0
	}
	if o.MaxCost <= 0 {
		o.MaxCost = d.MaxCost
	}
	if o.NodeSize <= 0 {
		o.NodeSize = d.NodeSize
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = d.MaxAttempts
	}
	return o
}

// Random builds a graph with nodes spread at least MinDistance apart and a
// random number of edges with non-negative integer costs. If the result is
// disconnected a chain i-1 -> i is appended so every node is reachable.
func Random(rng *rand.Rand, opts RandomOptions) Snapshot {
	o := opts.normalized()

	n := o.MinNodes + rng.IntN(o.MaxNodes-o.MinNodes+1)
	innerW := o.Width - 2*o.Margin
	innerH := o.Height - 2*o.Margin

	nodes := make([]Node, 0, n)
	for i := 0; i < n; i++ {
		var cand Node
		for attempt := 0; attempt < o.MaxAttempts; attempt++ {
			cand = Node{
				X:    rng.Float64()*innerW + o.Margin,
				Y:    rng.Float64()*innerH + o.Margin,
				Size: o.NodeSize,
			}
			if !tooClose(nodes, cand, o.MinDistance) {
				break
			}
		}
		nodes = append(nodes, cand)
	}

	maxEdges := n * (n - 1) / 2
	var edges []Edge
	if maxEdges > 0 {
		count := rng.IntN(maxEdges)
		edges = make([]Edge, 0, count+n)
		for i := 0; i < count; i++ {
			edges = append(edges, Edge{
				Start:     rng.IntN(n),
				End:       rng.IntN(n),
				Cost:      float64(rng.IntN(o.MaxCost)),
				Highlight: HighlightDefault,
			})
		}
	}

	if !isConnected(n, edges) {
		for i := 1; i < n; i++ {
			edges = append(edges, Edge{
				Start:     i - 1,
				End:       i,
				Cost:      float64(rng.IntN(o.MaxCost)),
				Highlight: HighlightDefault,
			})
		}
	}

	return Snapshot{Nodes: nodes, Edges: edges}
}

func tooClose(nodes []Node, cand Node, minDist float64) bool {
	for _, n := range nodes {
		if n.DistanceTo(cand) < minDist {
			return true
		}
	}
	return false
}
