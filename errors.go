package bramble

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the store, the diff engine and the asset service.
var (
	// ErrNotFound reports a NodeID that was removed or never existed.
	// Referencing one is always a caller bug.
	ErrNotFound = errors.New("node not found")

	// ErrKindMismatch reports a matched node whose widget kind changed.
	// The diff engine recovers from it with a remove followed by an insert.
	ErrKindMismatch = errors.New("widget kind mismatch")

	// ErrResourceUnavailable reports a font, image or path that is not loaded
	// yet. Extraction skips the affected node for the frame.
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrStalePlan reports a plan built against a tree that has since changed.
	ErrStalePlan = errors.New("plan built against a stale tree")
)

// NodeError records the operation and node that produced an error.
type NodeError struct {
	Op  string
	ID  NodeID
	Err error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("bramble: %s %v: %v", e.Op, e.ID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func notFound(op string, id NodeID) error {
	return &NodeError{Op: op, ID: id, Err: ErrNotFound}
}
