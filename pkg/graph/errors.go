package graph

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is wrapped by every IndexError.
var ErrIndexOutOfRange = errors.New("graph: index out of range")

// ErrUnknownHighlight is returned by SetHighlight for an unlisted token.
var ErrUnknownHighlight = errors.New("graph: unknown highlight")

// IndexError reports an index that does not address an existing node or edge.
type IndexError struct {
	Kind  string // "node" or "edge"
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("graph: %s index %d out of range [0,%d)", e.Kind, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

func nodeIndexError(index, n int) error {
	return &IndexError{Kind: "node", Index: index, Len: n}
}

func edgeIndexError(index, n int) error {
	return &IndexError{Kind: "edge", Index: index, Len: n}
}
