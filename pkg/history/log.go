package history

import (
	"errors"
	"fmt"

	"github.com/DrSkyle/routeviz/pkg/graph"
)

// ErrLocked is returned by Undo while the log is locked under LockReject.
var ErrLocked = errors.New("history: undo is locked during playback")

// LockPolicy decides how a locked log answers Undo.
type LockPolicy int

const (
	// LockReject makes Undo return ErrLocked.
	LockReject LockPolicy = iota
	// LockIgnore makes Undo a silent no-op.
	LockIgnore
)

// ParseLockPolicy accepts "reject" or "ignore".
func ParseLockPolicy(s string) (LockPolicy, error) {
	switch s {
	case "", "reject":
		return LockReject, nil
	case "ignore":
		return LockIgnore, nil
	}
	return LockReject, fmt.Errorf("history: unknown lock policy %q", s)
}

func (p LockPolicy) String() string {
	if p == LockIgnore {
		return "ignore"
	}
	return "reject"
}

// Log is a single-level undo history bound to one store. There is no redo;
// an undone action is gone.
type Log struct {
	store   graph.GraphStore
	actions []Action
	locked  bool
	policy  LockPolicy
}

func NewLog(store graph.GraphStore, policy LockPolicy) *Log {
	return &Log{store: store, policy: policy}
}

// Record appends an action.
func (l *Log) Record(a Action) {
	l.actions = append(l.actions, a)
}

// Undo pops the latest action and reverts it. It reports false when there
// was nothing to undo or the log is locked under LockIgnore.
// If the revert fails the action stays on the log and the store is untouched.
func (l *Log) Undo() (bool, error) {
	if l.locked {
		if l.policy == LockIgnore {
			return false, nil
		}
		return false, ErrLocked
	}
	if len(l.actions) == 0 {
		return false, nil
	}

	last := l.actions[len(l.actions)-1]
	if err := last.Revert(l.store); err != nil {
		return false, fmt.Errorf("history: undo %s: %w", last, err)
	}
	l.actions = l.actions[:len(l.actions)-1]
	return true, nil
}

// Peek returns the action Undo would revert.
func (l *Log) Peek() (Action, bool) {
	if len(l.actions) == 0 {
		return Action{}, false
	}
	return l.actions[len(l.actions)-1], true
}

func (l *Log) Len() int { return len(l.actions) }

// Reset drops every recorded action.
func (l *Log) Reset() { l.actions = nil }

// SetLocked toggles the playback lock.
func (l *Log) SetLocked(locked bool) { l.locked = locked }

