package graph

import "math"

// Highlight is the render state of an edge.
type Highlight string

const (
	HighlightDefault    Highlight = "default"
	HighlightPath       Highlight = "path"
	HighlightInProgress Highlight = "in-progress"
)

// Valid reports whether h is one of the known tokens.
func (h Highlight) Valid() bool {
	switch h {
	case HighlightDefault, HighlightPath, HighlightInProgress:
		return true
	}
	return false
}

// DefaultNodeSize is the hit radius used for new nodes.
const DefaultNodeSize = 50.0

// Node is a vertex on the canvas. Its identity is its index in the store.
type Node struct {
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	Size float64 `json:"size" yaml:"size"`
}

// Contains reports whether (x, y) falls inside the node's radius.
func (n Node) Contains(x, y float64) bool {
	dx := n.X - x
	dy := n.Y - y
	return dx*dx+dy*dy <= n.Size*n.Size
}

// DistanceTo returns the euclidean distance between node centers.
func (n Node) DistanceTo(o Node) float64 {
	return math.Hypot(n.X-o.X, n.Y-o.Y)
}

// Edge connects two node indices. Duplicates and self-loops are allowed.
type Edge struct {
	Start     int       `json:"start" yaml:"start"`
	End       int       `json:"end" yaml:"end"`
	Cost      float64   `json:"cost" yaml:"cost"`
	Highlight Highlight `json:"highlight,omitempty" yaml:"-"`
}

// Connects reports whether the edge joins a and b in either direction.
func (e Edge) Connects(a, b int) bool {
	return (e.Start == a && e.End == b) || (e.Start == b && e.End == a)
}

// IsLoop reports whether the edge starts and ends at the same node.
func (e Edge) IsLoop() bool {
	return e.Start == e.End
}
