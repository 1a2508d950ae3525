// Package scenario saves and loads named graphs.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/DrSkyle/routeviz/pkg/graph"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("scenario: invalid")

var (
	validate *validator.Validate
	namePat  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("scenario_name", func(fl validator.FieldLevel) bool {
		return namePat.MatchString(fl.Field().String())
	})
	validate.RegisterStructValidation(scenarioStructLevel, Scenario{})
}

// Scenario is the persisted form of a graph plus the run it was set up for.
type Scenario struct {
	Name        string       `yaml:"name" validate:"required,max=64,scenario_name"`
	Description string       `yaml:"description,omitempty"`
	Algorithm   string       `yaml:"algorithm,omitempty" validate:"omitempty,oneof=dijkstra bellman-ford"`
	Start       int          `yaml:"start" validate:"gte=0"`
	End         int          `yaml:"end" validate:"gte=0"`
	Nodes       []graph.Node `yaml:"nodes"`
	Edges       []graph.Edge `yaml:"edges"`
	SavedAt     time.Time    `yaml:"saved_at,omitempty"`
}

func scenarioStructLevel(sl validator.StructLevel) {
	s := sl.Current().Interface().(Scenario)
	n := len(s.Nodes)
	if n > 0 && s.Start >= n {
		sl.ReportError(s.Start, "Start", "start", "node_index", "")
	}
	if n > 0 && s.End >= n {
		sl.ReportError(s.End, "End", "end", "node_index", "")
	}
	for i, node := range s.Nodes {
		if node.Size < 0 || math.IsNaN(node.X) || math.IsNaN(node.Y) {
			sl.ReportError(node, fmt.Sprintf("Nodes[%d]", i), fmt.Sprintf("nodes[%d]", i), "node", "")
		}
	}
	for i, e := range s.Edges {
		if e.Start < 0 || e.Start >= n || e.End < 0 || e.End >= n {
			sl.ReportError(e, fmt.Sprintf("Edges[%d]", i), fmt.Sprintf("edges[%d]", i), "node_index", "")
		}
		if math.IsNaN(e.Cost) || math.IsInf(e.Cost, 0) {
			sl.ReportError(e.Cost, fmt.Sprintf("Edges[%d].Cost", i), fmt.Sprintf("edges[%d].cost", i), "finite", "")
		}
	}
}

// Validate checks names, indices and costs.
func (s *Scenario) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s fails %q", ErrInvalid, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// FromGraph captures a snapshot. Highlights are not saved.
func FromGraph(name string, snap graph.Snapshot) *Scenario {
	s := &Scenario{Name: name, Nodes: make([]graph.Node, len(snap.Nodes)), Edges: make([]graph.Edge, len(snap.Edges))}
	copy(s.Nodes, snap.Nodes)
	for i, e := range snap.Edges {
		e.Highlight = ""
		s.Edges[i] = e
	}
	if len(snap.Nodes) > 1 {
		s.End = len(snap.Nodes) - 1
	}
	return s
}

// Graph returns the stored graph with default sizes filled in and every
// edge highlight reset.
func (s *Scenario) Graph() graph.Snapshot {
	out := graph.Snapshot{
		Nodes: make([]graph.Node, len(s.Nodes)),
		Edges: make([]graph.Edge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		if n.Size == 0 {
			n.Size = graph.DefaultNodeSize
		}
		out.Nodes[i] = n
	}
	for i, e := range s.Edges {
		e.Highlight = graph.HighlightDefault
		out.Edges[i] = e
	}
	return out
}

// Encode renders the scenario as YAML.
func (s *Scenario) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode scenario %s: %w", s.Name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses YAML, rejecting unknown fields, and validates the result.
func Decode(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
