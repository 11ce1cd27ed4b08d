package redis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/detent"
)

// ErrSurfaceStarted is returned when Start is called twice.
var ErrSurfaceStarted = errors.New("redis: surface already started")

// Surface is a detent.Control driven over Redis pub/sub.
//
// A message on the edit channel carries a domain value as text. Each one is
// reported to the group on its UI context as a single-step gesture, the way
// a click on a local toggle would be. Values the group displays are handed
// to a publisher goroutine through a one-slot outbox and published on the
// display channel; only the newest value waits, so SetDisplay never blocks
// the UI context on the network.
type Surface struct {
	client  *redis.Client
	group   *detent.Group
	edit    string
	display string

	value  atomic.Uint64
	outbox chan float64

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a Surface.
type Option func(*Surface)

// WithEditChannel overrides the channel edits are read from.
func WithEditChannel(channel string) Option {
	return func(s *Surface) {
		s.edit = channel
	}
}

// WithDisplayChannel overrides the channel displayed values are published to.
func WithDisplayChannel(channel string) Option {
	return func(s *Surface) {
		s.display = channel
	}
}

// NewSurface creates a Surface for g. By default it reads edits from
// "detent:<parameter>:edit" and publishes to "detent:<parameter>:display".
func NewSurface(client *redis.Client, g *detent.Group, opts ...Option) *Surface {
	s := &Surface{
		client:  client,
		group:   g,
		edit:    fmt.Sprintf("detent:%s:edit", g.ParameterID()),
		display: fmt.Sprintf("detent:%s:display", g.ParameterID()),
		outbox:  make(chan float64, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.value.Store(math.Float64bits(g.LastValue()))
	return s
}

// EditChannel returns the channel edits are read from.
func (s *Surface) EditChannel() string {
	return s.edit
}

// DisplayChannel returns the channel displayed values are published to.
func (s *Surface) DisplayChannel() string {
	return s.display
}

// Start subscribes to the edit channel, attaches the surface to its group
// on the UI context and starts the reader and publisher goroutines. They
// run until ctx is canceled or Close is called.
func (s *Surface) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrSurfaceStarted
	}

	pubsub := s.client.Subscribe(ctx, s.edit)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("redis: subscribe %s: %w", s.edit, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true

	g := s.group
	g.Dispatcher().Post(func(ui context.Context) {
		g.Attach(s)
		s.SetDisplay(ui, g.LastValue())
	})

	s.wg.Add(2)
	go s.read(ctx, pubsub)
	go s.publish(ctx)

	capitan.Emit(ctx, SurfaceStarted,
		detent.KeyParameter.Field(g.ParameterID()),
		KeyChannel.Field(s.edit),
	)
	return nil
}

// read turns edit messages into gestures on the UI context.
func (s *Surface) read(ctx context.Context, pubsub *redis.PubSub) {
	defer s.wg.Done()
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			v, err := strconv.ParseFloat(msg.Payload, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				capitan.Emit(ctx, SurfaceEditInvalid,
					detent.KeyParameter.Field(s.group.ParameterID()),
					KeyPayload.Field(msg.Payload),
				)
				continue
			}
			s.group.Dispatcher().Post(func(ui context.Context) {
				s.edited(ui, v)
			})
		}
	}
}

// edited runs on the UI context.
func (s *Surface) edited(ctx context.Context, v float64) {
	s.value.Store(math.Float64bits(v))
	s.group.BeginGesture(ctx)
	s.group.ReportCandidate(ctx, s, v)
	s.group.EndGesture(ctx)
}

// publish drains the outbox until ctx is canceled.
func (s *Surface) publish(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-s.outbox:
			payload := strconv.FormatFloat(v, 'f', -1, 64)
			if err := s.client.Publish(ctx, s.display, payload).Err(); err != nil && ctx.Err() == nil {
				capitan.Emit(ctx, SurfacePublishFailed,
					detent.KeyParameter.Field(s.group.ParameterID()),
					KeyChannel.Field(s.display),
					detent.KeyError.Field(err.Error()),
				)
			}
		}
	}
}

// CurrentValue implements detent.Control.
func (s *Surface) CurrentValue() float64 {
	return math.Float64frombits(s.value.Load())
}

// SetDisplay implements detent.Control. It replaces any value still
// waiting in the outbox.
func (s *Surface) SetDisplay(_ context.Context, value float64) {
	s.value.Store(math.Float64bits(value))
	for {
		select {
		case s.outbox <- value:
			return
		default:
		}
		select {
		case <-s.outbox:
		default:
		}
	}
}

// Close detaches the surface and stops its goroutines. Pass a UI context
// to detach inline; otherwise the detach is posted. Close is idempotent.
func (s *Surface) Close(ctx context.Context) {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}

	g := s.group
	if g.Dispatcher().IsUI(ctx) {
		g.Detach(s)
	} else {
		g.Dispatcher().Post(func(ui context.Context) { g.Detach(s) })
	}

	cancel()
	s.wg.Wait()
	capitan.Emit(ctx, SurfaceStopped,
		detent.KeyParameter.Field(g.ParameterID()),
	)
}
