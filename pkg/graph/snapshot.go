package graph

// Snapshot is a detached copy of the node and edge sequences.
type Snapshot struct {
	Nodes []Node
	Edges []Edge
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Nodes: make([]Node, len(s.Nodes)),
		Edges: make([]Edge, len(s.Edges)),
	}
	copy(out.Nodes, s.Nodes)
	copy(out.Edges, s.Edges)
	return out
}

// Equal compares structure only; edge highlights are ignored.
func (s Snapshot) Equal(o Snapshot) bool {
	if len(s.Nodes) != len(o.Nodes) || len(s.Edges) != len(o.Edges) {
		return false
	}
	for i := range s.Nodes {
		if s.Nodes[i] != o.Nodes[i] {
			return false
		}
	}
	for i := range s.Edges {
		a, b := s.Edges[i], o.Edges[i]
		if a.Start != b.Start || a.End != b.End || a.Cost != b.Cost {
			return false
		}
	}
	return true
}

func (s Snapshot) IsConnected() bool {
	return isConnected(len(s.Nodes), s.Edges)
}

func (s Snapshot) HasNegativeEdge() bool {
	return hasNegativeEdge(s.Edges)
}

func (s Snapshot) MinCostBetween(a, b int) float64 {
	return minCostBetween(s.Edges, a, b)
}

// Components returns the number of undirected connected components.
func (s Snapshot) Components() int {
	uf := NewUnionFind(len(s.Nodes))
	for _, e := range s.Edges {
		if !inRange(e.Start, len(s.Nodes)) || !inRange(e.End, len(s.Nodes)) {
			continue
		}
		uf.Union(e.Start, e.End)
	}
	return uf.Sets()
}
