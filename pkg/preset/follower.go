package preset

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/detent"
)

// DefaultDebounce is the default debounce duration for incoming documents.
const DefaultDebounce = 100 * time.Millisecond

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("preset: follower already started")

// Setter writes a parameter value in domain units with host notification.
// memstore.Store implements it.
type Setter interface {
	SetDomainValue(ctx context.Context, parameterID string, value float64) error
}

// Follower applies presets from a Watcher to a store.
type Follower struct {
	watcher  Watcher
	setter   Setter
	debounce time.Duration
	syncMode bool
	clock    clockz.Clock
	codec    Codec
	onStop   func(State)

	state     atomic.Int32
	current   atomic.Pointer[Document]
	lastError atomic.Pointer[error]
	applied   atomic.Int64

	mu      sync.Mutex
	started bool

	// Sync mode only.
	changes <-chan []byte
}

// New creates a Follower that writes presets from watcher into setter.
func New(watcher Watcher, setter Setter) *Follower {
	f := &Follower{
		watcher:  watcher,
		setter:   setter,
		debounce: DefaultDebounce,
		clock:    clockz.RealClock,
		codec:    JSONCodec{},
	}
	f.state.Store(int32(StateLoading))
	return f
}

// Debounce sets how long the follower waits for changes to settle.
// Default: 100ms. Must be called before Start().
func (f *Follower) Debounce(d time.Duration) *Follower {
	f.debounce = d
	return f
}

// SyncMode disables the watch goroutine. Subsequent documents are applied
// one at a time with Process. Must be called before Start().
func (f *Follower) SyncMode() *Follower {
	f.syncMode = true
	return f
}

// Clock sets the clock used for debouncing.
// Must be called before Start().
func (f *Follower) Clock(clock clockz.Clock) *Follower {
	f.clock = clock
	return f
}

// Codec sets the document codec. Default: JSONCodec.
// Must be called before Start().
func (f *Follower) Codec(codec Codec) *Follower {
	f.codec = codec
	return f
}

// OnStop sets a callback invoked with the final state when watching ends.
// Must be called before Start().
func (f *Follower) OnStop(fn func(State)) *Follower {
	f.onStop = fn
	return f
}

// State returns the current state of the Follower.
func (f *Follower) State() State {
	return State(f.state.Load())
}

// Current returns the last applied preset and true, or false if none has
// been applied.
func (f *Follower) Current() (Document, bool) {
	ptr := f.current.Load()
	if ptr == nil {
		return Document{}, false
	}
	return *ptr, true
}

// LastError returns the error of the last document, or nil if it applied.
func (f *Follower) LastError() error {
	ptr := f.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// Applied returns the number of presets applied.
func (f *Follower) Applied() int64 {
	return f.applied.Load()
}

// Start begins watching. It blocks until the first document is processed,
// then keeps watching in the background until ctx is canceled. An error
// from the first document is returned, but watching continues.
//
// In sync mode only the first document is processed; use Process for the
// rest. Start can only be called once.
func (f *Follower) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return ErrAlreadyStarted
	}
	f.started = true
	f.mu.Unlock()

	capitan.Emit(ctx, FollowerStarted,
		KeyDebounce.Field(f.debounce),
	)

	changes, err := f.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	var initialErr error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case raw, ok := <-changes:
		if !ok {
			return errors.New("watcher closed before emitting initial preset")
		}
		capitan.Emit(ctx, PresetReceived)
		initialErr = f.process(ctx, raw)
	}

	if f.syncMode {
		f.changes = changes
		return initialErr
	}

	go f.watch(ctx, changes)
	return initialErr
}

// Process applies the next queued document, if any. Only available in
// sync mode. Returns false if nothing was waiting.
func (f *Follower) Process(ctx context.Context) bool {
	if !f.syncMode {
		return false
	}
	select {
	case raw, ok := <-f.changes:
		if !ok {
			return false
		}
		capitan.Emit(ctx, PresetReceived)
		_ = f.process(ctx, raw)
		return true
	default:
		return false
	}
}

// process decodes, validates and writes one document.
func (f *Follower) process(ctx context.Context, raw []byte) error {
	oldState := f.State()

	var doc Document
	if err := f.codec.Unmarshal(raw, &doc); err != nil {
		f.fail(ctx, oldState, PresetDecodeFailed, err)
		return fmt.Errorf("decode preset: %w", err)
	}
	if err := doc.Validate(); err != nil {
		f.fail(ctx, oldState, PresetInvalid, err)
		return err
	}

	var errs []error
	for _, id := range slices.Sorted(maps.Keys(doc.Values)) {
		if err := f.setter.SetDomainValue(ctx, id, doc.Values[id]); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		f.fail(ctx, oldState, PresetApplyFailed, err)
		return fmt.Errorf("apply preset %q: %w", doc.Name, err)
	}

	f.current.Store(&doc)
	f.lastError.Store(nil)
	f.applied.Add(1)
	f.transition(ctx, oldState, StateHealthy)
	capitan.Emit(ctx, PresetApplied,
		KeyPreset.Field(doc.Name),
		KeyValues.Field(len(doc.Values)),
	)
	return nil
}

func (f *Follower) fail(ctx context.Context, oldState State, signal capitan.Signal, err error) {
	e := err
	f.lastError.Store(&e)

	next := StateDegraded
	if f.current.Load() == nil {
		next = StateEmpty
	}
	f.transition(ctx, oldState, next)
	capitan.Emit(ctx, signal,
		detent.KeyError.Field(err.Error()),
	)
}

func (f *Follower) transition(ctx context.Context, oldState, newState State) {
	if oldState == newState {
		return
	}
	f.state.Store(int32(newState))
	capitan.Emit(ctx, FollowerStateChanged,
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
}

// watch applies documents with debouncing until ctx ends or the watcher
// closes. A document still waiting when the watcher closes is applied.
func (f *Follower) watch(ctx context.Context, changes <-chan []byte) {
	defer func() {
		final := f.State()
		capitan.Emit(ctx, FollowerStopped,
			detent.KeyState.Field(final.String()),
		)
		if f.onStop != nil {
			f.onStop(final)
		}
	}()

	var (
		timer      clockz.Timer
		pending    []byte
		hasPending bool
	)

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case raw, ok := <-changes:
			if !ok {
				if hasPending {
					_ = f.process(ctx, pending)
				}
				return
			}
			capitan.Emit(ctx, PresetReceived)
			pending = raw
			hasPending = true

			if timer == nil {
				timer = f.clock.NewTimer(f.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(f.debounce)
			}

		case <-timerC:
			if hasPending {
				_ = f.process(ctx, pending)
				hasPending = false
			}
		}
	}
}
