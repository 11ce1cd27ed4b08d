package detent

import "errors"

// Construction and lifecycle errors.
var (
	// ErrNilStore is returned when a Group is created without a store.
	ErrNilStore = errors.New("detent: store is nil")

	// ErrEmptyParameterID is returned when a Group is created without a parameter id.
	ErrEmptyParameterID = errors.New("detent: parameter id is empty")

	// ErrNilDispatcher is returned when a Group is created without a dispatcher.
	ErrNilDispatcher = errors.New("detent: dispatcher is nil")

	// ErrLoopStarted is returned when Start is called on a Loop more than once.
	ErrLoopStarted = errors.New("detent: loop already started")

	// ErrLoopStopped is returned by Invoke once the Loop has stopped.
	ErrLoopStopped = errors.New("detent: loop stopped")

	// ErrRejected marks a candidate value refused by a Confirmer pipeline.
	ErrRejected = errors.New("detent: candidate rejected")
)
