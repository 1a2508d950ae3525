package history

import (
	"fmt"

	"github.com/DrSkyle/routeviz/pkg/graph"
)

// Kind tags an Action.
type Kind string

const (
	KindAddNode  Kind = "addNode"
	KindAddEdge  Kind = "addEdge"
	KindDragNode Kind = "dragNode"
	KindClear    Kind = "clear"
)

// Action holds exactly what is needed to reverse one mutation.
type Action struct {
	Kind  Kind
	Index int

	// dragNode
	PriorX float64
	PriorY float64

	// clear
	Prior graph.Snapshot
}

func AddNode(index int) Action { return Action{Kind: KindAddNode, Index: index} }

func AddEdge(index int) Action { return Action{Kind: KindAddEdge, Index: index} }

func DragNode(index int, priorX, priorY float64) Action {
	return Action{Kind: KindDragNode, Index: index, PriorX: priorX, PriorY: priorY}
}

// Clear captures the graph as it was before being wiped or replaced.
func Clear(prior graph.Snapshot) Action {
	return Action{Kind: KindClear, Prior: prior.Clone()}
}

// Revert applies the inverse of a against store.
func (a Action) Revert(store graph.GraphStore) error {
	switch a.Kind {
	case KindAddNode:
		return store.RemoveNodeAt(a.Index)
	case KindAddEdge:
		return store.RemoveEdgeAt(a.Index)
	case KindDragNode:
		return store.MoveNode(a.Index, a.PriorX, a.PriorY)
	case KindClear:
		store.ReplaceAll(a.Prior.Nodes, a.Prior.Edges)
		return nil
	}
	return fmt.Errorf("history: unknown action kind %q", a.Kind)
}

func (a Action) String() string {
	switch a.Kind {
	case KindAddNode:
		return fmt.Sprintf("add node N%d", a.Index)
	case KindAddEdge:
		return fmt.Sprintf("add edge #%d", a.Index)
	case KindDragNode:
		return fmt.Sprintf("move N%d", a.Index)
	case KindClear:
		return fmt.Sprintf("clear (%d nodes, %d edges)", len(a.Prior.Nodes), len(a.Prior.Edges))
	}
	return string(a.Kind)
}
