package scenario

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/DrSkyle/routeviz/pkg/graph"
)

// Canvas is exposed to HCL files as the `canvas` object.
type Canvas struct {
	Width    float64
	Height   float64
	NodeSize float64
}

type hclScenario struct {
	Name        string    `hcl:"name,optional"`
	Description string    `hcl:"description,optional"`
	Algorithm   string    `hcl:"algorithm,optional"`
	Start       string    `hcl:"start,optional"`
	End         string    `hcl:"end,optional"`
	Nodes       []hclNode `hcl:"node,block"`
	Edges       []hclEdge `hcl:"edge,block"`
}

type hclNode struct {
	Label string   `hcl:"label,label"`
	X     float64  `hcl:"x"`
	Y     float64  `hcl:"y"`
	Size  *float64 `hcl:"size,optional"`
}

type hclEdge struct {
	From string  `hcl:"from"`
	To   string  `hcl:"to"`
	Cost float64 `hcl:"cost"`
}

func evalContext(c Canvas) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"canvas": cty.ObjectVal(map[string]cty.Value{
				"width":     cty.NumberFloatVal(c.Width),
				"height":    cty.NumberFloatVal(c.Height),
				"node_size": cty.NumberFloatVal(c.NodeSize),
			}),
		},
		Functions: map[string]function.Function{
			"min":   stdlib.MinFunc,
			"max":   stdlib.MaxFunc,
			"abs":   stdlib.AbsoluteFunc,
			"floor": stdlib.FloorFunc,
			"ceil":  stdlib.CeilFunc,
		},
	}
}

// ImportHCLFile reads an authored scenario from disk.
func ImportHCLFile(path string, c Canvas) (*Scenario, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ImportHCL(path, src, c)
}

// ImportHCL decodes an authored scenario:
//
//	name  = "triangle"
//	start = "a"
//	end   = "c"
//
//	node "a" {
//	  x = canvas.width / 4
//	  y = 100
//	}
//	edge {
//	  from = "a"
//	  to   = "b"
//	  cost = 3
//	}
//
// Nodes are indexed in declaration order. A missing name falls back to the
// file's base name.
func ImportHCL(filename string, src []byte, c Canvas) (*Scenario, error) {
	if c.NodeSize <= 0 {
		c.NodeSize = graph.DefaultNodeSize
	}

	var doc hclScenario
	if err := hclsimple.Decode(filename, src, evalContext(c), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	s := &Scenario{
		Name:        doc.Name,
		Description: doc.Description,
		Algorithm:   doc.Algorithm,
		Nodes:       make([]graph.Node, 0, len(doc.Nodes)),
		Edges:       make([]graph.Edge, 0, len(doc.Edges)),
	}
	if s.Name == "" {
		base := filepath.Base(filename)
		s.Name = base[:len(base)-len(filepath.Ext(base))]
	}

	index := make(map[string]int, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if _, dup := index[n.Label]; dup {
			return nil, fmt.Errorf("%w: node %q declared twice", ErrInvalid, n.Label)
		}
		size := c.NodeSize
		if n.Size != nil {
			size = *n.Size
		}
		index[n.Label] = len(s.Nodes)
		s.Nodes = append(s.Nodes, graph.Node{X: n.X, Y: n.Y, Size: size})
	}

	lookup := func(what, label string) (int, error) {
		i, ok := index[label]
		if !ok {
			return 0, fmt.Errorf("%w: %s refers to unknown node %q", ErrInvalid, what, label)
		}
		return i, nil
	}

	for i, e := range doc.Edges {
		from, err := lookup(fmt.Sprintf("edge %d", i), e.From)
		if err != nil {
			return nil, err
		}
		to, err := lookup(fmt.Sprintf("edge %d", i), e.To)
		if err != nil {
			return nil, err
		}
		s.Edges = append(s.Edges, graph.Edge{Start: from, End: to, Cost: e.Cost})
	}

	var err error
	if doc.Start != "" {
		if s.Start, err = lookup("start", doc.Start); err != nil {
			return nil, err
		}
	}
	if doc.End != "" {
		if s.End, err = lookup("end", doc.End); err != nil {
			return nil, err
		}
	} else if len(s.Nodes) > 1 {
		s.End = len(s.Nodes) - 1
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
