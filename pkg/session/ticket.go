package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/DrSkyle/routeviz/pkg/algo"
)

// Ticket is one outstanding algorithm run. It carries the request built
// from the graph at BeginRun time and the generation it belongs to.
type Ticket struct {
	ID         string
	Generation uint64
	Algorithm  algo.Algorithm
	Start      int
	End        int
	Request    algo.Request
	IssuedAt   time.Time
}

func newTicket(gen uint64, alg algo.Algorithm, start, end int, req algo.Request) *Ticket {
	return &Ticket{
		ID:         uuid.NewString(),
		Generation: gen,
		Algorithm:  alg,
		Start:      start,
		End:        end,
		Request:    req,
		IssuedAt:   time.Now(),
	}
}

// RunResult is what Execute hands back to CompleteRun.
type RunResult struct {
	Ticket   *Ticket
	Response *algo.Response
	Err      error
	Duration time.Duration
}

// Execute validates remotely, then runs the algorithm. It touches nothing
// but the ticket and the client, so it may run off the event loop.
func (t *Ticket) Execute(ctx context.Context, client algo.Client) RunResult {
	start := time.Now()
	res := RunResult{Ticket: t}
	res.Response, res.Err = t.exchange(ctx, client)
	res.Duration = time.Since(start)
	return res
}

func (t *Ticket) exchange(ctx context.Context, client algo.Client) (*algo.Response, error) {
	v, err := client.Validate(ctx, t.Request)
	if err != nil {
		return nil, err
	}
	if !v.Valid {
		msg := v.Error
		if msg == "" {
			msg = "The backend rejected the network."
		}
		return nil, &ValidationError{Rule: "backend", Message: msg}
	}
	if !t.Algorithm.SupportsNegativeEdges() && v.HasNegativeEdges {
		return nil, &ValidationError{Rule: "dijkstra-negative-edges", Message: msgNegativeEdges}
	}
	if t.Algorithm.RequiresConnected() && !v.Connected {
		return nil, &ValidationError{Rule: "dijkstra-disconnected", Message: msgDisconnected}
	}

	return client.Run(ctx, t.Algorithm, t.Request)
}
