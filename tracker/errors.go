package tracker

import "errors"

// Sentinel errors returned by Tracker. Callers match them with errors.Is;
// every returned error is wrapped with the node or operation it concerns.
//
// None of these is recoverable inside the tracker: a failed RecordDecision
// may leave the current iteration partially updated, and the caller is
// expected to start a new iteration rather than continue.
var (
	// ErrNilGraph is returned by New when the graph collaborator is nil.
	ErrNilGraph = errors.New("tracker: graph is nil")

	// ErrNilIndex is returned by New when the node index is nil.
	ErrNilIndex = errors.New("tracker: node index is nil")

	// ErrNotInitialized is returned when a decision is recorded before
	// StartIteration has ever run.
	ErrNotInitialized = errors.New("tracker: no iteration started")

	// ErrInvalidShape is returned for a decision that is not a flat
	// per-batch vector (more than one dimension of size > 1, or empty).
	ErrInvalidShape = errors.New("tracker: decision must be a flat vector")

	// ErrBatchWidthMismatch is returned when a decision's length differs from
	// the batch width fixed by the first decision of the iteration.
	ErrBatchWidthMismatch = errors.New("tracker: batch width mismatch")

	// ErrPredecessorPending is returned in strict mode when a node is recorded
	// before one of its predecessors in the current iteration.
	ErrPredecessorPending = errors.New("tracker: predecessor not yet recorded")

	// ErrDuplicateDecision is returned in strict mode when a node is recorded
	// twice within one iteration.
	ErrDuplicateDecision = errors.New("tracker: node already recorded in this iteration")

	// ErrNoDecisions is returned by queries while the current iteration has
	// no recorded decision (tensors are unsized).
	ErrNoDecisions = errors.New("tracker: no decisions recorded in this iteration")

	// ErrUnknownEvent is returned by Handle for a nil or foreign Event.
	ErrUnknownEvent = errors.New("tracker: unknown event")
)
