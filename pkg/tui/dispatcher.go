// Package tui runs detent groups inside a bubbletea program.
//
// The bubbletea event loop is the UI context: posted tasks travel to the
// program as messages and are executed by Model.Update, and key presses
// drive Slider widgets from the same loop.
package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Sender delivers messages to a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// taskMsg carries one posted task to Model.Update.
type taskMsg struct {
	task func(ctx context.Context)
}

// uiKey marks contexts handed out by a Dispatcher.
type uiKey struct{}

// Dispatcher implements detent.Dispatcher over a bubbletea program.
//
// Post only appends to a queue. A pump goroutine forwards the queue to the
// program, since tea.Program.Send blocks until the event loop reads it.
// Tasks posted before Bind are held and sent once a program is bound.
type Dispatcher struct {
	ui context.Context

	mu      sync.Mutex
	sender  Sender
	backlog []func(context.Context)
	closed  bool

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

// NewDispatcher creates an unbound Dispatcher.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	d.ui = context.WithValue(context.Background(), uiKey{}, d)
	return d
}

// Bind attaches the program and starts forwarding tasks to it, including
// any posted so far. Binding twice has no effect.
func (d *Dispatcher) Bind(s Sender) {
	d.mu.Lock()
	if d.sender != nil || d.closed {
		d.mu.Unlock()
		return
	}
	d.sender = s
	d.mu.Unlock()

	go d.pump()
	d.signal()
}

// Post implements detent.Dispatcher. It never blocks.
func (d *Dispatcher) Post(task func(ctx context.Context)) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.backlog = append(d.backlog, task)
	d.mu.Unlock()
	d.signal()
}

// IsUI implements detent.Dispatcher.
func (d *Dispatcher) IsUI(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	owner, ok := ctx.Value(uiKey{}).(*Dispatcher)
	return ok && owner == d
}

// Context returns the UI context. It must only be used from the program's
// event loop.
func (d *Dispatcher) Context() context.Context {
	return d.ui
}

// Pending returns the number of tasks not yet sent to the program.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.backlog)
}

// Close stops forwarding. Tasks still queued are dropped. Close is
// idempotent.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.backlog = nil
		d.mu.Unlock()
		close(d.done)
	})
}

func (d *Dispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) pump() {
	for {
		select {
		case <-d.done:
			return
		case <-d.wake:
		}

		d.mu.Lock()
		batch := d.backlog
		d.backlog = nil
		sender := d.sender
		d.mu.Unlock()

		for _, task := range batch {
			select {
			case <-d.done:
				return
			default:
			}
			sender.Send(taskMsg{task: task})
		}
	}
}
