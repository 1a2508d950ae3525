package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DrSkyle/routeviz/pkg/algo"
	"github.com/DrSkyle/routeviz/pkg/graph"
	"github.com/DrSkyle/routeviz/pkg/history"
)

var (
	// ErrPlaybackActive rejects edits, undo and new runs during playback.
	ErrPlaybackActive = errors.New("session: network is locked while animating")
	// ErrRunInFlight rejects a second run while one is pending.
	ErrRunInFlight = errors.New("session: a run is already in progress")
	// ErrNotPlaying is returned by playback controls outside playback.
	ErrNotPlaying = errors.New("session: no animation is running")
	// ErrStaleResponse marks a response whose graph has since changed, or
	// that belongs to no pending run.
	ErrStaleResponse = errors.New("session: response no longer matches the network")
	// ErrNoDrag is returned by drag updates without a grabbed node.
	ErrNoDrag = errors.New("session: no node is being dragged")
)

// InputError is bad user input. The operation it aborted changed nothing.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ValidationError blocks a run before or instead of the algorithm call.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

const (
	msgNegativeEdges = "Dijkstra's Algorithm isn't meant for graphs with negative edges!"
	msgDisconnected  = "Please use a connected graph for Dijkstra's Algorithm"
)

// Describe turns an error from this package or its collaborators into the
// line shown to the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var (
		in   *InputError
		ve   *ValidationError
		be   *algo.BackendError
		fe   *algo.FailureError
		idxE *graph.IndexError
	)
	switch {
	case errors.Is(err, ErrPlaybackActive), errors.Is(err, history.ErrLocked):
		return "Can't edit the network while animating. Exit the animation to make it editable."
	case errors.Is(err, ErrRunInFlight):
		return "An algorithm run is already in progress."
	case errors.Is(err, ErrNotPlaying):
		return "No animation is running."
	case errors.Is(err, ErrStaleResponse):
		return "The network changed while the algorithm was running; result discarded."
	case errors.Is(err, ErrNoDrag):
		return "No node is grabbed."
	case errors.As(err, &in):
		return capitalize(in.Error())
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &fe):
		return fe.Error()
	case errors.As(err, &be):
		return "Backend error: " + be.Error()
	case errors.Is(err, algo.ErrTransport):
		return "Backend error: " + err.Error()
	case errors.As(err, &idxE):
		return capitalize(idxE.Error())
	}
	return err.Error()
}

func capitalize(s string) string {
	s = strings.TrimPrefix(s, "graph: ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
