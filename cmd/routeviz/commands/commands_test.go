package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrSkyle/routeviz/pkg/session"
)

const pairYAML = `name: pair
start: 0
end: 1
nodes:
  - {x: 100, y: 100}
  - {x: 300, y: 100}
edges:
  - {start: 0, end: 1, cost: 3}
`

func newBackend(t *testing.T) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/graph/validate", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"valid": true, "connected": true, "hasNegativeEdges": false}`)
	})
	mux.HandleFunc("/api/routing/dijkstra", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
		  "success": true,
		  "steps": [
		    {"distances": {"0": 0, "1": "Infinity"}, "predecessors": {"0": null, "1": null}, "visitedEdgeIndices": []},
		    {"distances": {"0": 0, "1": 3}, "predecessors": {"0": null, "1": 0}, "visitedEdgeIndices": [0]}
		  ],
		  "shortestPath": [0, 1],
		  "finalDistances": {"0": 0, "1": 3}
		}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

type env struct {
	dir       string
	config    string
	scenarios string
	backend   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	e := env{
		dir:       dir,
		config:    filepath.Join(dir, "routeviz.yaml"),
		scenarios: filepath.Join(dir, "scenarios"),
		backend:   newBackend(t),
	}
	require.NoError(t, os.WriteFile(e.config, []byte("verbose: false\n"), 0600))
	return e
}

func (e env) write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

// run executes the root command with fresh flag state.
func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	scenarioName, scenarioFile, saveName = "", "", ""
	runAlgorithm, runStart, runEnd = "", -1, -1
	replayFormat, replayOutput, replayMaxSteps = "text", "", 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--config", e.config, "--backend", e.backend, "--scenarios", e.scenarios))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReplay_CSV(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "replay", "--file", e.write(t, "pair.yaml", pairYAML), "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "node,distance,predecessor,final\nN0,0,null,0\nN1,3,N0,3\n", out)
}

func TestReplay_OutputFile(t *testing.T) {
	e := newEnv(t)
	dest := filepath.Join(e.dir, "out.json")
	out, err := e.run(t, "replay", "-f", e.write(t, "pair.yaml", pairYAML), "--format", "json", "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"shortestPath"`)
}

func TestReplay_BadFormat(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "replay", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestValidate_Seed(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "scenario: seed")
	assert.Contains(t, out, "route: Dijkstra N0 -> N6")
	assert.Contains(t, out, "[OK]")
}

func TestValidate_Rejected(t *testing.T) {
	e := newEnv(t)
	split := e.write(t, "split.yaml", "name: split\nnodes: [{x: 1, y: 1}, {x: 300, y: 1}]\n")
	out, err := e.run(t, "validate", "--file", split)
	assert.True(t, errors.Is(err, errRejected))
	assert.Contains(t, out, "[FAIL] dijkstra-disconnected")

	// Bellman-Ford has no connectivity rule.
	out, err = e.run(t, "validate", "--file", split, "--algorithm", "bf")
	require.NoError(t, err)
	assert.Contains(t, out, "Bellman-Ford")
}

func TestScenarioCommands(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "scenario", "list")
	require.NoError(t, err)
	assert.Equal(t, "No saved scenarios.\n", out)

	out, err = e.run(t, "scenario", "save", e.write(t, "pair.yaml", pairYAML))
	require.NoError(t, err)
	assert.Equal(t, "Saved scenario pair (2 nodes, 1 edges).\n", out)

	hcl := e.write(t, "tri.hcl", `
node "a" {
  x = 10
  y = 10
}
node "b" {
  x = 200
  y = 10
}
edge {
  from = "a"
  to   = "b"
  cost = 1
}
`)
	_, err = e.run(t, "scenario", "import", hcl, "--name", "triangle")
	require.NoError(t, err)

	out, err = e.run(t, "scenario", "list")
	require.NoError(t, err)
	assert.Equal(t, "pair\ntriangle\n", out)

	out, err = e.run(t, "scenario", "show", "triangle")
	require.NoError(t, err)
	assert.Contains(t, out, "name: triangle")

	out, err = e.run(t, "replay", "--scenario", "pair", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "N1,3,N0,3")

	_, err = e.run(t, "scenario", "delete", "pair")
	require.NoError(t, err)
	_, err = e.run(t, "scenario", "show", "pair")
	assert.Error(t, err)
}

func TestCompletion_Bash(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _routeviz_completion routeviz")
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, session.ErrRunInFlight)
	assert.Equal(t, "[ERROR] An algorithm run is already in progress.\n", buf.String())
}
