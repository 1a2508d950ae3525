package app

import (
	"context"
	"fmt"

	"github.com/DrSkyle/routeviz/pkg/algo"
	"github.com/DrSkyle/routeviz/pkg/report"
	"github.com/DrSkyle/routeviz/pkg/scenario"
	"github.com/DrSkyle/routeviz/pkg/session"
)

// RunSpec picks the algorithm and route for a headless run. Negative
// indices and an empty algorithm fall back to the scenario's own values.
type RunSpec struct {
	Algorithm algo.Algorithm
	Start     int
	End       int
}

func (r RunSpec) resolve(sc *scenario.Scenario) RunSpec {
	out := r
	if out.Algorithm == "" {
		out.Algorithm = algo.Algorithm(sc.Algorithm)
	}
	if out.Algorithm == "" {
		out.Algorithm = algo.Dijkstra
	}
	if out.Start < 0 {
		out.Start = sc.Start
	}
	if out.End < 0 {
		out.End = sc.End
	}
	return out
}

// ValidateResult combines the local rule check with the backend's answer.
type ValidateResult struct {
	Run     RunSpec
	Summary session.Summary
	Remote  *algo.Validation
	// RemoteErr is set when the backend could not be asked.
	RemoteErr error
}

// OK reports whether a run would be admitted.
func (v ValidateResult) OK() bool {
	if len(v.Summary.Violations) > 0 || v.RemoteErr != nil {
		return false
	}
	return v.Remote != nil && v.Remote.Valid
}

// Validate checks sc against the run rules and the backend without
// running the algorithm.
func (a *App) Validate(ctx context.Context, sc *scenario.Scenario, spec RunSpec) (*ValidateResult, error) {
	spec = spec.resolve(sc)
	coord, err := a.Coordinator(sc.Graph())
	if err != nil {
		return nil, err
	}
	sum, err := coord.Check(ctx, spec.Algorithm, spec.Start, spec.End)
	if err != nil {
		return nil, err
	}
	res := &ValidateResult{Run: spec, Summary: sum}

	ctx, cancel := context.WithTimeout(ctx, a.Config.Backend.Timeout)
	defer cancel()
	req := algo.BuildRequest(coord.Store().Snapshot(), spec.Start, spec.End)
	res.Remote, res.RemoteErr = a.Client.Validate(ctx, req)

	a.Logger.Info("scenario validated",
		"scenario", sc.Name,
		"violations", len(sum.Violations),
		"ok", res.OK(),
	)
	return res, nil
}

// Replay runs the algorithm on sc and records the whole playback.
func (a *App) Replay(ctx context.Context, sc *scenario.Scenario, spec RunSpec, maxSteps int) (*report.Transcript, error) {
	spec = spec.resolve(sc)
	coord, err := a.Coordinator(sc.Graph())
	if err != nil {
		return nil, err
	}

	ticket, err := coord.BeginRun(ctx, spec.Algorithm, spec.Start, spec.End)
	if err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithTimeout(ctx, a.Config.Backend.Timeout)
	defer cancel()
	res := ticket.Execute(runCtx, a.Client)
	if err := coord.CompleteRun(ctx, res); err != nil {
		return nil, err
	}

	t, err := report.Record(coord, maxSteps)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	a.Logger.Info("replay recorded",
		"scenario", sc.Name,
		"algorithm", spec.Algorithm,
		"frames", len(t.Frames),
		"duration", res.Duration,
	)
	return t, nil
}
