package detent

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// NewValueFunc receives a value that should be considered for confirmation:
// either a candidate edit from a control or a change the store reports from
// elsewhere. Owners typically validate it and call Group.Confirm.
type NewValueFunc func(ctx context.Context, parameterID string, value float64)

// Group keeps every control attached to one parameter in sync with the
// store and with each other.
//
// Edits made through a control are withheld: the control is reverted to the
// last confirmed value and the edit is forwarded to the OnNewValue callback.
// Nothing reaches the store or other controls until Confirm is called.
// Confirm may be called from any goroutine. Off the UI context it only
// records the value and arms a single pending dispatch, so a producer
// confirming at audio block rate costs one UI update per slice.
//
// Attach, Detach, ReportCandidate, BeginGesture and EndGesture must be
// called on the UI context. LastValue and Confirm are safe anywhere.
type Group struct {
	id          string
	parameterID string
	store       Store
	dispatcher  Dispatcher

	pushWhenMissing bool
	clock           clockz.Clock
	metrics         MetricsProvider
	onNewValue      atomic.Pointer[NewValueFunc]

	last    atomic.Uint64
	pending atomic.Bool
	armed   atomic.Int64
	closed  atomic.Bool

	// UI context only.
	guard    guard
	controls registry
}

// NewGroup creates a Group bound to parameterID in store and registers it as
// the store's listener for that id. Producer-side confirms are handed to the
// UI context through d.
//
// The authoritative value starts at the store's current value in domain
// units, or zero when the store has no such parameter.
func NewGroup(store Store, parameterID string, d Dispatcher) (*Group, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if parameterID == "" {
		return nil, ErrEmptyParameterID
	}
	if d == nil {
		return nil, ErrNilDispatcher
	}

	g := &Group{
		id:              uuid.NewString(),
		parameterID:     parameterID,
		store:           store,
		dispatcher:      d,
		pushWhenMissing: true,
		clock:           clockz.RealClock,
		metrics:         NoOpMetricsProvider{},
	}

	if p := store.Parameter(parameterID); p != nil {
		g.storeLast(p.ToDomain(p.Value()))
	}
	store.AddListener(parameterID, g)

	capitan.Emit(context.Background(), GroupCreated,
		KeyParameter.Field(parameterID),
		KeyGroup.Field(g.id),
		KeyValue.Field(g.LastValue()),
	)

	return g, nil
}

// -----------------------------------------------------------------------------
// Chainable Configuration
// -----------------------------------------------------------------------------

// OnNewValue sets the callback that receives candidate edits and external
// store changes. It may be replaced at any time; pass nil to clear it.
func (g *Group) OnNewValue(fn NewValueFunc) *Group {
	if fn == nil {
		g.onNewValue.Store(nil)
		return g
	}
	g.onNewValue.Store(&fn)
	return g
}

// PushWhenMissing controls whether a dispatch still updates the controls
// when the store has no parameter for the id. Default: true.
// Should be set before the Group is shared with other goroutines.
func (g *Group) PushWhenMissing(push bool) *Group {
	g.pushWhenMissing = push
	return g
}

// Metrics sets a metrics provider. Should be set before the Group is
// shared with other goroutines.
func (g *Group) Metrics(provider MetricsProvider) *Group {
	if provider == nil {
		provider = NoOpMetricsProvider{}
	}
	g.metrics = provider
	return g
}

// Clock sets the clock used to time dispatch applications.
func (g *Group) Clock(clock clockz.Clock) *Group {
	if clock == nil {
		clock = clockz.RealClock
	}
	g.clock = clock
	return g
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// ID returns the unique id of this Group instance.
func (g *Group) ID() string {
	return g.id
}

// ParameterID returns the id of the bound parameter.
func (g *Group) ParameterID() string {
	return g.parameterID
}

// Dispatcher returns the dispatcher that owns the UI context.
func (g *Group) Dispatcher() Dispatcher {
	return g.dispatcher
}

// Parameter looks up the bound parameter in the store. It returns nil when
// the store has no handle for the id.
func (g *Group) Parameter() Parameter {
	return g.store.Parameter(g.parameterID)
}

// LastValue returns the authoritative value in domain units. It never
// blocks and is safe to call from any goroutine.
func (g *Group) LastValue() float64 {
	return math.Float64frombits(g.last.Load())
}

func (g *Group) storeLast(v float64) {
	g.last.Store(math.Float64bits(v))
}

// Len returns the number of attached controls. UI context only.
func (g *Group) Len() int {
	return g.controls.len()
}

// -----------------------------------------------------------------------------
// Controls
// -----------------------------------------------------------------------------

// Attach adds c to the group. Nil and already attached controls are ignored.
func (g *Group) Attach(c Control) {
	if !g.controls.add(c) {
		return
	}
	capitan.Emit(context.Background(), ControlAttached,
		KeyParameter.Field(g.parameterID),
		KeyControls.Field(g.controls.len()),
	)
}

// Detach removes c from the group. Nil and absent controls are ignored.
// It is safe to call while the group is pushing values to its controls.
func (g *Group) Detach(c Control) {
	if !g.controls.remove(c) {
		return
	}
	capitan.Emit(context.Background(), ControlDetached,
		KeyParameter.Field(g.parameterID),
		KeyControls.Field(g.controls.len()),
	)
}

// ReportCandidate is called by a control after the user edited it.
//
// The edit is withheld: c is immediately redisplayed at the last confirmed
// value and the candidate is passed to the OnNewValue callback. The store
// and the other controls are left untouched. Reports made while the group
// is writing, or from a nil or detached control, are ignored.
func (g *Group) ReportCandidate(ctx context.Context, c Control, candidate float64) {
	if g.guard.active {
		return
	}
	if !g.controls.contains(c) {
		capitan.Emit(ctx, CandidateIgnored,
			KeyParameter.Field(g.parameterID),
			KeyValue.Field(candidate),
		)
		return
	}

	confirmed := g.LastValue()
	g.guard.hold(func() {
		c.SetDisplay(ctx, confirmed)
	})

	capitan.Emit(ctx, CandidateReported,
		KeyParameter.Field(g.parameterID),
		KeyValue.Field(candidate),
	)
	g.metrics.OnCandidate()

	g.notify(ctx, candidate)
}

// -----------------------------------------------------------------------------
// Gestures
// -----------------------------------------------------------------------------

// BeginGesture opens a change gesture, starting a new undo transaction when
// the store keeps one. It does nothing if the parameter is absent.
func (g *Group) BeginGesture(ctx context.Context) {
	p := g.Parameter()
	if p == nil {
		g.missing(ctx)
		return
	}
	if undo, ok := g.store.(UndoHost); ok {
		undo.BeginNewTransaction()
	}
	p.BeginChangeGesture()

	capitan.Emit(ctx, GestureBegan, KeyParameter.Field(g.parameterID))
	g.metrics.OnGesture(true)
}

// EndGesture closes the change gesture. It does nothing if the parameter
// is absent.
func (g *Group) EndGesture(ctx context.Context) {
	p := g.Parameter()
	if p == nil {
		g.missing(ctx)
		return
	}
	p.EndChangeGesture()

	capitan.Emit(ctx, GestureEnded, KeyParameter.Field(g.parameterID))
	g.metrics.OnGesture(false)
}

// -----------------------------------------------------------------------------
// Confirmation
// -----------------------------------------------------------------------------

// Confirm commits value as the authoritative value.
//
// On the UI context the value is applied at once and any pending dispatch
// is cancelled, so an older producer value can never land after it. From
// any other goroutine the value is recorded and a single dispatch is armed;
// further confirms before it runs only replace the value. Confirm never
// blocks. After Close the value is recorded but never applied. NaN and
// infinite values are ignored, and an applied value is clamped to the
// parameter's range.
func (g *Group) Confirm(ctx context.Context, value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}
	g.storeLast(value)
	if g.closed.Load() {
		return
	}

	if g.dispatcher.IsUI(ctx) {
		if g.pending.Swap(false) {
			capitan.Emit(ctx, DispatchCancelled,
				KeyParameter.Field(g.parameterID),
				KeyCoalesced.Field(int(g.armed.Swap(0))),
			)
		}
		g.apply(ctx, 0)
		return
	}

	g.armed.Add(1)
	if g.pending.CompareAndSwap(false, true) {
		g.dispatcher.Post(g.dispatch)
	}
}

// dispatch runs on the UI context once per arming.
func (g *Group) dispatch(ctx context.Context) {
	if !g.pending.Swap(false) || g.closed.Load() {
		return
	}
	g.apply(ctx, int(g.armed.Swap(0)))
}

// apply writes the authoritative value into the store and every control
// while holding the guard, so the echoes of these writes are swallowed.
func (g *Group) apply(ctx context.Context, coalesced int) {
	start := g.clock.Now()
	bits := g.last.Load()
	value := math.Float64frombits(bits)

	p := g.Parameter()
	if p == nil {
		g.missing(ctx)
		if !g.pushWhenMissing {
			return
		}
	}

	var normalized float64
	if p != nil {
		// The store can only hold values inside its range. A producer
		// confirm that landed since the load keeps its own value.
		if clamped := p.Range().Clamp(value); clamped != value {
			g.last.CompareAndSwap(bits, math.Float64bits(clamped))
			value = clamped
		}
		normalized = p.ToNormalized(value)
	}

	g.guard.hold(func() {
		if p != nil && normalized != p.Value() {
			p.SetValueNotifyingHost(ctx, normalized)
		}
		g.controls.each(func(c Control) {
			c.SetDisplay(ctx, value)
		})
	})

	controls := g.controls.len()
	capitan.Emit(ctx, DispatchApplied,
		KeyParameter.Field(g.parameterID),
		KeyValue.Field(value),
		KeyNormalized.Field(normalized),
		KeyControls.Field(controls),
		KeyCoalesced.Field(coalesced),
	)
	g.metrics.OnApply(g.clock.Since(start), controls, coalesced)
}

// -----------------------------------------------------------------------------
// Store listener
// -----------------------------------------------------------------------------

// ParameterChanged implements Listener. Changes made elsewhere (automation,
// another editor, a preset) are forwarded to the OnNewValue callback without
// touching local state. The echo of the group's own write is suppressed.
func (g *Group) ParameterChanged(ctx context.Context, _ string, value float64) {
	if g.dispatcher.IsUI(ctx) && g.guard.active {
		capitan.Emit(ctx, EchoSuppressed,
			KeyParameter.Field(g.parameterID),
			KeyValue.Field(value),
		)
		g.metrics.OnEchoSuppressed()
		return
	}

	capitan.Emit(ctx, StoreChanged,
		KeyParameter.Field(g.parameterID),
		KeyValue.Field(value),
	)
	g.notify(ctx, value)
}

func (g *Group) notify(ctx context.Context, value float64) {
	if fn := g.onNewValue.Load(); fn != nil {
		(*fn)(ctx, g.parameterID, value)
	}
}

func (g *Group) missing(ctx context.Context) {
	capitan.Emit(ctx, ParameterMissing,
		KeyParameter.Field(g.parameterID),
	)
}

// Close unregisters the group from its store. A pending dispatch is
// dropped. Controls should be closed before the group. Close is idempotent.
func (g *Group) Close() error {
	if !g.closed.CompareAndSwap(false, true) {
		return nil
	}
	g.pending.Store(false)
	g.store.RemoveListener(g.parameterID, g)

	capitan.Emit(context.Background(), GroupClosed,
		KeyParameter.Field(g.parameterID),
		KeyGroup.Field(g.id),
	)
	return nil
}
