package algo

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/DrSkyle/routeviz/pkg/graph"
	"github.com/DrSkyle/routeviz/pkg/playback"
)

var wireValidate *validator.Validate

func init() {
	wireValidate = validator.New()
	wireValidate.RegisterStructValidation(requestStructLevel, Request{})
}

// NodeDTO is a node as the backend sees it.
type NodeDTO struct {
	ID    int     `json:"id" validate:"gte=0"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label" validate:"required"`
}

// EdgeDTO is an edge as the backend sees it.
type EdgeDTO struct {
	Start int     `json:"start" validate:"gte=0"`
	End   int     `json:"end" validate:"gte=0"`
	Cost  float64 `json:"cost"`
}

// Request is sent to both the validate and the run endpoints.
type Request struct {
	StartNode int       `json:"startNode" validate:"gte=0"`
	EndNode   int       `json:"endNode" validate:"gte=0"`
	Nodes     []NodeDTO `json:"nodes" validate:"required,min=1,dive"`
	Edges     []EdgeDTO `json:"edges" validate:"dive"`
}

// requestStructLevel checks that every index addresses a node in the request.
func requestStructLevel(sl validator.StructLevel) {
	r := sl.Current().Interface().(Request)
	n := len(r.Nodes)
	if r.StartNode >= n {
		sl.ReportError(r.StartNode, "StartNode", "startNode", "node_index", "")
	}
	if r.EndNode >= n {
		sl.ReportError(r.EndNode, "EndNode", "endNode", "node_index", "")
	}
	for i, e := range r.Edges {
		if e.Start >= n || e.End >= n {
			sl.ReportError(e, fmt.Sprintf("Edges[%d]", i), fmt.Sprintf("edges[%d]", i), "node_index", "")
		}
	}
}

// Validate runs the struct rules.
func (r *Request) Validate() error {
	return wireValidate.Struct(r)
}

// BuildRequest converts a graph snapshot into the wire form. Nodes are
// labelled N<i> by index.
func BuildRequest(snap graph.Snapshot, start, end int) Request {
	req := Request{
		StartNode: start,
		EndNode:   end,
		Nodes:     make([]NodeDTO, len(snap.Nodes)),
		Edges:     make([]EdgeDTO, len(snap.Edges)),
	}
	for i, n := range snap.Nodes {
		req.Nodes[i] = NodeDTO{ID: i, X: n.X, Y: n.Y, Label: fmt.Sprintf("N%d", i)}
	}
	for i, e := range snap.Edges {
		req.Edges[i] = EdgeDTO{Start: e.Start, End: e.End, Cost: e.Cost}
	}
	return req
}

// StepDTO is one entry of Response.Steps.
type StepDTO struct {
	CurrentNode        *int         `json:"currentNode,omitempty"`
	Distances          map[int]Cost `json:"distances"`
	Predecessors       map[int]*int `json:"predecessors"`
	VisitedEdgeIndices []int        `json:"visitedEdgeIndices"`
}

// Response is returned by the run endpoints.
type Response struct {
	Success        bool         `json:"success"`
	Error          string       `json:"error,omitempty"`
	Steps          []StepDTO    `json:"steps"`
	ShortestPath   []int        `json:"shortestPath,omitempty"`
	FinalDistances map[int]Cost `json:"finalDistances,omitempty"`
	TotalCost      *Cost        `json:"totalCost,omitempty"`
}

// PlaybackSteps converts the trace for the animator. A null or negative
// predecessor becomes playback.NoPredecessor.
func (r *Response) PlaybackSteps() []playback.Step {
	out := make([]playback.Step, len(r.Steps))
	for i, s := range r.Steps {
		st := playback.Step{
			Distances:          make(map[int]float64, len(s.Distances)),
			Predecessors:       make(map[int]int, len(s.Predecessors)),
			VisitedEdgeIndices: append([]int(nil), s.VisitedEdgeIndices...),
		}
		for k, v := range s.Distances {
			st.Distances[k] = v.Float()
		}
		for k, v := range s.Predecessors {
			if v == nil || *v < 0 {
				st.Predecessors[k] = playback.NoPredecessor
				continue
			}
			st.Predecessors[k] = *v
		}
		out[i] = st
	}
	return out
}

// Final returns FinalDistances as plain floats.
func (r *Response) Final() map[int]float64 {
	if r.FinalDistances == nil {
		return nil
	}
	out := make(map[int]float64, len(r.FinalDistances))
	for k, v := range r.FinalDistances {
		out[k] = v.Float()
	}
	return out
}

// Validation is the answer of the validate endpoint.
type Validation struct {
	Valid            bool   `json:"valid"`
	Error            string `json:"error,omitempty"`
	Field            string `json:"field,omitempty"`
	Connected        bool   `json:"connected"`
	HasNegativeEdges bool   `json:"hasNegativeEdges"`
}

// errorBody is the backend's 4xx/5xx payload.
type errorBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}
