package graph

// GraphStore defines graph storage interface.
//
// Nodes and edges are addressed by their current index. Removing an entry
// shifts every later index down by one, so callers must re-resolve indices
// after any removal.
type GraphStore interface {
	// Node operations.
	AddNode(x, y float64) int
	MoveNode(index int, x, y float64) error
	RemoveNodeAt(index int) error
	Node(index int) (Node, error)
	Nodes() []Node // Copy.
	NodeCount() int
	HitTest(x, y float64) (int, bool)

	// Edge operations.
	AddEdge(start, end int, cost float64) int
	RemoveEdgeAt(index int) error
	Edge(index int) (Edge, error)
	Edges() []Edge // Copy.
	EdgeCount() int
	SetHighlight(index int, h Highlight) error
	ResetHighlights()

	// Bulk operations.
	ReplaceAll(nodes []Node, edges []Edge)
	Snapshot() Snapshot

	// Queries.
	IsConnected() bool
	HasNegativeEdge() bool
	MinCostBetween(a, b int) float64
}
