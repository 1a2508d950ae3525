package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(vs []Violation) []string {
	var out []string
	for _, v := range vs {
		out = append(out, v.ID)
	}
	return out
}

func TestDefaultRules(t *testing.T) {
	engine, err := NewDefaultEngine()
	require.NoError(t, err)
	ctx := context.Background()

	ok := Input{Algorithm: "dijkstra", NodeCount: 3, EdgeCount: 2, Connected: true, MaxNodes: 100, MaxEdges: 500}
	vs, err := engine.Evaluate(ctx, ok)
	require.NoError(t, err)
	assert.Empty(t, vs)

	neg := ok
	neg.HasNegativeEdges = true
	neg.Connected = false
	vs, err = engine.Evaluate(ctx, neg)
	require.NoError(t, err)
	assert.Equal(t, []string{"dijkstra-negative-edges", "dijkstra-disconnected"}, ids(vs))

	neg.Algorithm = "bellman-ford"
	vs, _ = engine.Evaluate(ctx, neg)
	assert.Empty(t, vs, "bellman-ford accepts negative and disconnected graphs")

	big := ok
	big.NodeCount = 101
	big.EdgeCount = 501
	vs, _ = engine.Evaluate(ctx, big)
	assert.Equal(t, []string{"too-many-nodes", "too-many-edges"}, ids(vs))

	unlimited := big
	unlimited.MaxNodes, unlimited.MaxEdges = 0, 0
	vs, _ = engine.Evaluate(ctx, unlimited)
	assert.Empty(t, vs)

	first, err := engine.First(ctx, Input{Algorithm: "dijkstra"})
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "empty-graph", first.ID)
	assert.Equal(t, "The network is empty. Add some nodes first.", first.Error())
}

func TestCompileRejectsBadRules(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	assert.Error(t, engine.Compile([]Rule{{ID: "syntax", Condition: "nodeCount >"}}))
	assert.Error(t, engine.Compile([]Rule{{ID: "unknown", Condition: "weight > 1"}}))
	assert.Error(t, engine.Compile([]Rule{{ID: "type", Condition: "nodeCount + 1"}}))
	assert.Empty(t, engine.Rules())

	require.NoError(t, engine.Compile([]Rule{{ID: "start-is-end", Condition: "start == end"}}))
	vs, err := engine.Evaluate(context.Background(), Input{Start: 2, End: 2})
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, "run blocked by rule start-is-end", vs[0].Message)
}

func TestEvaluateHonorsContext(t *testing.T) {
	engine, err := NewDefaultEngine()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Evaluate(ctx, Input{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - id: small-only
    condition: "nodeCount > 10"
    message: "Keep it under ten nodes."
`), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "small-only", rules[0].ID)

	engine, err := NewEngine()
	require.NoError(t, err)
	require.NoError(t, engine.Compile(rules))
	vs, _ := engine.Evaluate(context.Background(), Input{NodeCount: 11})
	assert.Equal(t, []string{"small-only"}, ids(vs))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("rules:\n  - id: x\n"), 0o644))
	_, err = LoadRules(bad)
	assert.Error(t, err)

	_, err = LoadRules(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
