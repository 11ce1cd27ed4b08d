// Package automation drives a Group from a producer goroutine, the way a
// host plays back recorded parameter automation.
package automation

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/detent"
)

// ErrNoParameter is returned by Run when the group's parameter is absent.
var ErrNoParameter = errors.New("automation: parameter not found")

// Defaults for a new LFO.
const (
	DefaultRate   = 20 * time.Millisecond
	DefaultPeriod = 4 * time.Second
	DefaultDepth  = 0.5
)

// LFO sweeps a parameter around its starting position with a sine wave,
// confirming a new value on every tick. Confirms go through the group's
// producer path and never touch the UI context directly.
type LFO struct {
	group  *detent.Group
	clock  clockz.Clock
	rate   time.Duration
	period time.Duration
	depth  float64

	ticks atomic.Int64
	ready chan struct{}
}

// New creates an LFO for g.
func New(g *detent.Group) *LFO {
	return &LFO{
		group:  g,
		clock:  clockz.RealClock,
		rate:   DefaultRate,
		period: DefaultPeriod,
		depth:  DefaultDepth,
		ready:  make(chan struct{}),
	}
}

// Clock sets the clock used for ticking.
func (a *LFO) Clock(clock clockz.Clock) *LFO {
	a.clock = clock
	return a
}

// Rate sets the tick interval.
func (a *LFO) Rate(d time.Duration) *LFO {
	if d > 0 {
		a.rate = d
	}
	return a
}

// Period sets the length of one sweep.
func (a *LFO) Period(d time.Duration) *LFO {
	if d > 0 {
		a.period = d
	}
	return a
}

// Depth sets the peak-to-peak sweep on the normalized scale.
func (a *LFO) Depth(depth float64) *LFO {
	a.depth = math.Max(0, math.Min(1, depth))
	return a
}

// Ticks returns how many values have been confirmed.
func (a *LFO) Ticks() int64 {
	return a.ticks.Load()
}

// Ready is closed once Run has armed its first tick.
func (a *LFO) Ready() <-chan struct{} {
	return a.ready
}

// Position returns the normalized position elapsed after starting at
// centre.
func (a *LFO) Position(centre float64, elapsed time.Duration) float64 {
	phase := 2 * math.Pi * float64(elapsed) / float64(a.period)
	n := centre + a.depth/2*math.Sin(phase)
	return math.Max(0, math.Min(1, n))
}

// Run confirms values until ctx is cancelled. The sweep is centred on the
// parameter's value when Run is called. Run must only be called once.
func (a *LFO) Run(ctx context.Context) error {
	p := a.group.Parameter()
	if p == nil {
		return ErrNoParameter
	}
	centre := p.Value()
	start := a.clock.Now()

	timer := a.clock.NewTimer(a.rate)
	defer timer.Stop()
	close(a.ready)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C():
			n := a.Position(centre, a.clock.Since(start))
			a.group.Confirm(ctx, p.ToDomain(n))
			a.ticks.Add(1)
			timer.Reset(a.rate)
		}
	}
}
