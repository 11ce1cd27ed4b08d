package detent

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// uiKey marks contexts handed to tasks running on a Loop.
type uiKey struct{}

// Loop is a Dispatcher that runs tasks on one goroutine, standing in for a
// toolkit's message thread. Posted tasks are queued and drained in slices;
// with a frame interval set, each slice waits for the next frame so bursts
// of posts collapse into a single pass.
type Loop struct {
	clock    clockz.Clock
	frame    time.Duration
	syncMode bool
	onStop   func()

	state atomic.Int32

	mu      sync.Mutex
	queue   []func(context.Context)
	started bool

	wake chan struct{}
	done chan struct{}
}

// NewLoop creates a Loop. Call Start to begin draining tasks.
func NewLoop() *Loop {
	l := &Loop{
		clock: clockz.RealClock,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	l.state.Store(int32(StateIdle))
	return l
}

// Clock sets the clock used for frame pacing.
// Use this with clockz.FakeClock for deterministic tests.
// Must be called before Start().
func (l *Loop) Clock(clock clockz.Clock) *Loop {
	l.clock = clock
	return l
}

// FrameInterval delays each slice until d has elapsed after the first post
// that woke the loop. Zero (the default) drains as soon as work arrives.
// Must be called before Start().
func (l *Loop) FrameInterval(d time.Duration) *Loop {
	l.frame = d
	return l
}

// SyncMode disables the loop goroutine. Tasks accumulate until Process is
// called, and the caller of Process acts as the UI context.
// Must be called before Start().
func (l *Loop) SyncMode() *Loop {
	l.syncMode = true
	return l
}

// OnStop sets a callback invoked once after the loop stops.
// Must be called before Start().
func (l *Loop) OnStop(fn func()) *Loop {
	l.onStop = fn
	return l
}

// State returns the current state of the Loop.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Post queues task for the UI context. It never blocks. Tasks posted after
// the loop stopped are discarded.
func (l *Loop) Post(task func(ctx context.Context)) {
	if task == nil || l.State() == StateStopped {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// IsUI reports whether ctx belongs to a task running on this Loop.
func (l *Loop) IsUI(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	owner, _ := ctx.Value(uiKey{}).(*Loop)
	return owner == l
}

func (l *Loop) uiContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, uiKey{}, l)
}

// Start begins draining tasks until ctx is canceled. In sync mode no
// goroutine is started; drive the loop with Process.
//
// Start can only be called once. Subsequent calls return ErrLoopStarted.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return ErrLoopStarted
	}
	l.started = true
	l.mu.Unlock()

	l.state.Store(int32(StateRunning))
	capitan.Emit(ctx, LoopStarted,
		KeyState.Field(StateRunning.String()),
	)

	if l.syncMode {
		return nil
	}

	go l.run(ctx)
	return nil
}

// Process drains one slice of queued tasks on the calling goroutine and
// returns how many ran. Only available in sync mode; returns 0 otherwise.
func (l *Loop) Process(ctx context.Context) int {
	if !l.syncMode {
		return 0
	}
	if ctx.Err() != nil {
		l.stop(ctx)
		return 0
	}
	return l.drain(l.uiContext(ctx))
}

// Invoke runs fn on the UI context and waits for it to finish. It runs fn
// inline when ctx already belongs to this Loop or the Loop is in sync mode.
func (l *Loop) Invoke(ctx context.Context, fn func(ctx context.Context)) error {
	if l.IsUI(ctx) {
		fn(ctx)
		return nil
	}
	if l.syncMode {
		fn(l.uiContext(ctx))
		return nil
	}
	if l.State() == StateStopped {
		return ErrLoopStopped
	}

	finished := make(chan struct{})
	l.Post(func(ui context.Context) {
		defer close(finished)
		fn(ui)
	})

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the loop goroutine.
func (l *Loop) run(ctx context.Context) {
	defer l.stop(ctx)
	ui := l.uiContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}

		if l.frame > 0 {
			timer := l.clock.NewTimer(l.frame)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C():
			}
		}

		l.drain(ui)
	}
}

// drain runs every task queued before the call. Tasks posted while draining
// wait for the next slice.
func (l *Loop) drain(ui context.Context) int {
	l.mu.Lock()
	tasks := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, task := range tasks {
		task(ui)
	}
	return len(tasks)
}

// stop transitions to StateStopped once and releases waiters.
func (l *Loop) stop(ctx context.Context) {
	if State(l.state.Swap(int32(StateStopped))) == StateStopped {
		return
	}
	close(l.done)

	l.mu.Lock()
	l.queue = nil
	l.mu.Unlock()

	capitan.Emit(ctx, LoopStopped,
		KeyState.Field(StateStopped.String()),
	)
	if l.onStop != nil {
		l.onStop()
	}
}
