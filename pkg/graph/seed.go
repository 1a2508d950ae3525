package graph

// DefaultScenario is the graph shown on a fresh start.
func DefaultScenario(nodeSize float64) Snapshot {
	if nodeSize <= 0 {
		nodeSize = DefaultNodeSize
	}
	points := [][2]float64{
		{157, 440}, {365, 217}, {419, 451}, {539, 256},
		{800, 250}, {650, 400}, {800, 100},
	}
	nodes := make([]Node, len(points))
	for i, p := range points {
		nodes[i] = Node{X: p[0], Y: p[1], Size: nodeSize}
	}

	edges := []Edge{
		{Start: 0, End: 1, Cost: 3},
		{Start: 0, End: 3, Cost: 9},
		{Start: 0, End: 2, Cost: 1},
		{Start: 1, End: 3, Cost: 1},
		{Start: 2, End: 3, Cost: 4},
		{Start: 4, End: 5, Cost: 4},
		{Start: 5, End: 6, Cost: 5},
		{Start: 6, End: 4, Cost: 9},
		{Start: 5, End: 2, Cost: 4},
		{Start: 5, End: 5, Cost: 3},
		{Start: 1, End: 0, Cost: 1},
		{Start: 5, End: 6, Cost: 3},
	}
	for i := range edges {
		edges[i].Highlight = HighlightDefault
	}
	return Snapshot{Nodes: nodes, Edges: edges}
}
