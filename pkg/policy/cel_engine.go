package policy

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"
)

// Rule is a run admission rule. Condition is a CEL expression that
// evaluates to true when the run must be blocked.
type Rule struct {
	ID        string `yaml:"id" json:"id"`
	Condition string `yaml:"condition" json:"condition"` // e.g. "algorithm == 'dijkstra' && hasNegativeEdges"
	Message   string `yaml:"message" json:"message"`
}

// Input is the graph summary rules are evaluated against.
type Input struct {
	Algorithm        string
	Start            int
	End              int
	NodeCount        int
	EdgeCount        int
	Connected        bool
	HasNegativeEdges bool
	MaxNodes         int
	MaxEdges         int
}

func (in Input) vars() map[string]any {
	return map[string]any{
		"algorithm":        in.Algorithm,
		"start":            int64(in.Start),
		"end":              int64(in.End),
		"nodeCount":        int64(in.NodeCount),
		"edgeCount":        int64(in.EdgeCount),
		"connected":        in.Connected,
		"hasNegativeEdges": in.HasNegativeEdges,
		"maxNodes":         int64(in.MaxNodes),
		"maxEdges":         int64(in.MaxEdges),
	}
}

// Violation is a matched rule.
type Violation struct {
	ID      string
	Message string
}

func (v Violation) Error() string { return v.Message }

type compiled struct {
	rule Rule
	prg  cel.Program
}

// Engine manages the compilation and execution of admission rules.
// Rules are evaluated in the order they were compiled.
type Engine struct {
	env   *cel.Env
	rules []compiled
}

// NewEngine initializes the CEL environment with the graph summary variables.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("algorithm", cel.StringType),
		cel.Variable("start", cel.IntType),
		cel.Variable("end", cel.IntType),
		cel.Variable("nodeCount", cel.IntType),
		cel.Variable("edgeCount", cel.IntType),
		cel.Variable("connected", cel.BoolType),
		cel.Variable("hasNegativeEdges", cel.BoolType),
		cel.Variable("maxNodes", cel.IntType),
		cel.Variable("maxEdges", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return &Engine{env: env}, nil
}

// NewDefaultEngine returns an engine loaded with DefaultRules.
func NewDefaultEngine() (*Engine, error) {
	e, err := NewEngine()
	if err != nil {
		return nil, err
	}
	if err := e.Compile(DefaultRules()); err != nil {
		return nil, err
	}
	return e, nil
}

// Compile appends rules. Nothing is added if any rule fails to compile.
func (e *Engine) Compile(rules []Rule) error {
	out := make([]compiled, 0, len(rules))
	for _, r := range rules {
		ast, issues := e.env.Compile(r.Condition)
		if issues != nil && issues.Err() != nil {
			return fmt.Errorf("rule %s compilation error: %w", r.ID, issues.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return fmt.Errorf("rule %s must evaluate to bool, got %s", r.ID, ast.OutputType())
		}

		prg, err := e.env.Program(ast)
		if err != nil {
			return fmt.Errorf("rule %s program creation error: %w", r.ID, err)
		}
		out = append(out, compiled{rule: r, prg: prg})
	}
	e.rules = append(e.rules, out...)
	return nil
}

// Rules lists the compiled rules in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	for i, c := range e.rules {
		out[i] = c.rule
	}
	return out
}

// Evaluate returns every matching rule, in order.
func (e *Engine) Evaluate(ctx context.Context, in Input) ([]Violation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vars := in.vars()
	var matches []Violation
	for _, c := range e.rules {
		out, _, err := c.prg.ContextEval(ctx, vars)
		if err != nil {
			slog.Error("Rule evaluation failed", "rule_id", c.rule.ID, "error", err)
			continue
		}
		if match, ok := out.Value().(bool); ok && match {
			msg := c.rule.Message
			if msg == "" {
				msg = "run blocked by rule " + c.rule.ID
			}
			matches = append(matches, Violation{ID: c.rule.ID, Message: msg})
		}
	}
	return matches, nil
}

// First returns the first violation, if any.
func (e *Engine) First(ctx context.Context, in Input) (*Violation, error) {
	vs, err := e.Evaluate(ctx, in)
	if err != nil || len(vs) == 0 {
		return nil, err
	}
	return &vs[0], nil
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML document of the form `rules: [{id, condition, message}]`.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	for i, r := range rf.Rules {
		if r.ID == "" || r.Condition == "" {
			return nil, fmt.Errorf("rules file %s: rule %d needs id and condition", path, i)
		}
	}
	return rf.Rules, nil
}
