package detent

import "github.com/zoobzio/capitan"

// Group lifecycle signals.
var (
	// GroupCreated is emitted when a Group registers with its store.
	GroupCreated = capitan.NewSignal(
		"detent.group.created",
		"Group attached to store",
	)

	// GroupClosed is emitted when a Group unregisters from its store.
	GroupClosed = capitan.NewSignal(
		"detent.group.closed",
		"Group detached from store",
	)

	// ControlAttached is emitted when a control joins a Group.
	ControlAttached = capitan.NewSignal(
		"detent.group.control.attached",
		"Control attached to group",
	)

	// ControlDetached is emitted when a control leaves a Group.
	ControlDetached = capitan.NewSignal(
		"detent.group.control.detached",
		"Control detached from group",
	)
)

// Candidate signals.
var (
	// CandidateReported is emitted when a user edit is withheld and forwarded.
	CandidateReported = capitan.NewSignal(
		"detent.candidate.reported",
		"Control edit withheld pending confirmation",
	)

	// CandidateIgnored is emitted when a report arrives from a nil or
	// detached control.
	CandidateIgnored = capitan.NewSignal(
		"detent.candidate.ignored",
		"Control edit ignored",
	)
)

// Dispatch signals.
var (
	// DispatchApplied is emitted after the authoritative value is written to
	// the store and pushed to every control.
	DispatchApplied = capitan.NewSignal(
		"detent.dispatch.applied",
		"Confirmed value applied on UI context",
	)

	// DispatchCancelled is emitted when a synchronous confirm replaces a
	// pending dispatch.
	DispatchCancelled = capitan.NewSignal(
		"detent.dispatch.cancelled",
		"Pending dispatch cancelled by synchronous confirm",
	)
)

// Gesture signals.
var (
	// GestureBegan is emitted when a change gesture opens.
	GestureBegan = capitan.NewSignal(
		"detent.gesture.began",
		"Change gesture opened",
	)

	// GestureEnded is emitted when a change gesture closes.
	GestureEnded = capitan.NewSignal(
		"detent.gesture.ended",
		"Change gesture closed",
	)
)

// Store signals.
var (
	// StoreChanged is emitted when the store reports a change made elsewhere.
	StoreChanged = capitan.NewSignal(
		"detent.store.changed",
		"External store change forwarded",
	)

	// EchoSuppressed is emitted when the store echoes the Group's own write.
	EchoSuppressed = capitan.NewSignal(
		"detent.store.echo.suppressed",
		"Store echo of own write suppressed",
	)

	// ParameterMissing is emitted when the store has no handle for the id.
	ParameterMissing = capitan.NewSignal(
		"detent.store.parameter.missing",
		"Store has no parameter for id",
	)
)

// Loop signals.
var (
	// LoopStarted is emitted when a Loop begins draining tasks.
	LoopStarted = capitan.NewSignal(
		"detent.loop.started",
		"UI loop started",
	)

	// LoopStopped is emitted when a Loop stops.
	LoopStopped = capitan.NewSignal(
		"detent.loop.stopped",
		"UI loop stopped",
	)
)

// Confirmer signals.
var (
	// ConfirmerAccepted is emitted when a candidate passes the pipeline.
	ConfirmerAccepted = capitan.NewSignal(
		"detent.confirmer.accepted",
		"Candidate accepted",
	)

	// ConfirmerRejected is emitted when the pipeline refuses a candidate.
	ConfirmerRejected = capitan.NewSignal(
		"detent.confirmer.rejected",
		"Candidate rejected",
	)
)
