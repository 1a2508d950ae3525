package graph

import (
	"fmt"
	"sync"
)

// MemoryStore is an in-memory graph storage.
type MemoryStore struct {
	mu       sync.RWMutex
	nodes    []Node
	edges    []Edge
	nodeSize float64
}

// StoreOption configures a MemoryStore.
type StoreOption func(*MemoryStore)

// WithNodeSize sets the radius given to nodes created by AddNode.
func WithNodeSize(size float64) StoreOption {
	return func(s *MemoryStore) {
		if size > 0 {
			s.nodeSize = size
		}
	}
}

func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		nodes:    make([]Node, 0, 16),
		edges:    make([]Edge, 0, 32),
		nodeSize: DefaultNodeSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ GraphStore = (*MemoryStore)(nil)

func (s *MemoryStore) AddNode(x, y float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = append(s.nodes, Node{X: x, Y: y, Size: s.nodeSize})
	return len(s.nodes) - 1
}

func (s *MemoryStore) MoveNode(index int, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.nodes) {
		return nodeIndexError(index, len(s.nodes))
	}
	s.nodes[index].X = x
	s.nodes[index].Y = y
	return nil
}

// RemoveNodeAt removes a node and shifts later nodes down. Edges are not
// touched; queries ignore edges whose endpoints no longer resolve.
func (s *MemoryStore) RemoveNodeAt(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.nodes) {
		return nodeIndexError(index, len(s.nodes))
	}
	s.nodes = append(s.nodes[:index], s.nodes[index+1:]...)
	return nil
}

func (s *MemoryStore) Node(index int) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.nodes) {
		return Node{}, nodeIndexError(index, len(s.nodes))
	}
	return s.nodes[index], nil
}

func (s *MemoryStore) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

func (s *MemoryStore) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// HitTest returns the earliest inserted node containing (x, y).
func (s *MemoryStore) HitTest(x, y float64) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, n := range s.nodes {
		if n.Contains(x, y) {
			return i, true
		}
	}
	return -1, false
}

// AddEdge appends an edge. Endpoint bounds are the caller's responsibility.
func (s *MemoryStore) AddEdge(start, end int, cost float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.edges = append(s.edges, Edge{Start: start, End: end, Cost: cost, Highlight: HighlightDefault})
	return len(s.edges) - 1
}

func (s *MemoryStore) RemoveEdgeAt(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.edges) {
		return edgeIndexError(index, len(s.edges))
	}
	s.edges = append(s.edges[:index], s.edges[index+1:]...)
	return nil
}

func (s *MemoryStore) Edge(index int) (Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.edges) {
		return Edge{}, edgeIndexError(index, len(s.edges))
	}
	return s.edges[index], nil
}

func (s *MemoryStore) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

func (s *MemoryStore) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.edges)
}

func (s *MemoryStore) SetHighlight(index int, h Highlight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.edges) {
		return edgeIndexError(index, len(s.edges))
	}
	if !h.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownHighlight, h)
	}
	s.edges[index].Highlight = h
	return nil
}

func (s *MemoryStore) ResetHighlights() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.edges {
		s.edges[i].Highlight = HighlightDefault
	}
}

// ReplaceAll swaps both sequences in one step. The inputs are copied.
func (s *MemoryStore) ReplaceAll(nodes []Node, edges []Edge) {
	n := make([]Node, len(nodes))
	copy(n, nodes)
	e := make([]Edge, len(edges))
	copy(e, edges)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = n
	s.edges = e
}

func (s *MemoryStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Nodes: s.nodes, Edges: s.edges}.Clone()
}

func (s *MemoryStore) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return isConnected(len(s.nodes), s.edges)
}

func (s *MemoryStore) HasNegativeEdge() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return hasNegativeEdge(s.edges)
}

func (s *MemoryStore) MinCostBetween(a, b int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return minCostBetween(s.edges, a, b)
}
