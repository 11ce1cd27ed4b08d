package detent

import (
	"context"
	"sync/atomic"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Confirmer is a ready-made owner for a Group. It receives every candidate
// and external change, runs it through a pipz pipeline, and confirms the
// result. A pipeline error leaves the authoritative value untouched.
//
// Example:
//
//	group, _ := detent.NewGroup(store, "gain", loop)
//	confirmer := detent.NewConfirmer(group,
//	    detent.WithMiddleware(detent.UseSnap(), detent.UseMaxStep(6)),
//	).ErrorHistorySize(8)
type Confirmer struct {
	group    *Group
	pipeline pipz.Chainable[*Request]
	metrics  MetricsProvider

	lastError  atomic.Pointer[error]
	rejections *rejectionRing
	accepted   atomic.Int64
	rejected   atomic.Int64
}

// NewConfirmer builds the pipeline and installs the Confirmer as g's
// OnNewValue callback, replacing any previous one.
func NewConfirmer(g *Group, opts ...Option) *Confirmer {
	terminal := pipz.Effect(confirmID, func(ctx context.Context, req *Request) error {
		g.Confirm(ctx, req.Value)
		return nil
	})

	c := &Confirmer{
		group:    g,
		pipeline: buildPipeline(terminal, opts),
		metrics:  NoOpMetricsProvider{},
	}
	g.OnNewValue(c.Handle)
	return c
}

// ErrorHistorySize sets how many recent rejections to retain.
// Use 0 (default) to only retain the most recent error via LastError().
func (c *Confirmer) ErrorHistorySize(n int) *Confirmer {
	c.rejections = newRejectionRing(n)
	return c
}

// Metrics sets a metrics provider notified of rejections.
func (c *Confirmer) Metrics(provider MetricsProvider) *Confirmer {
	if provider == nil {
		provider = NoOpMetricsProvider{}
	}
	c.metrics = provider
	return c
}

// Handle processes one value. It is installed as the Group's NewValueFunc
// and may be called on any goroutine.
func (c *Confirmer) Handle(ctx context.Context, parameterID string, value float64) {
	req := &Request{
		ParameterID: parameterID,
		Previous:    c.group.LastValue(),
		Candidate:   value,
		Value:       value,
	}
	if p := c.group.Parameter(); p != nil {
		req.Range = p.Range()
	}

	out, err := c.pipeline.Process(ctx, req)
	if err != nil {
		e := err
		c.lastError.Store(&e)
		c.rejections.push(Rejection{ParameterID: parameterID, Candidate: value, Err: err})
		c.rejected.Add(1)
		capitan.Emit(ctx, ConfirmerRejected,
			KeyParameter.Field(parameterID),
			KeyValue.Field(value),
			KeyError.Field(err.Error()),
		)
		c.metrics.OnRejected()
		return
	}

	c.lastError.Store(nil)
	c.accepted.Add(1)
	capitan.Emit(ctx, ConfirmerAccepted,
		KeyParameter.Field(parameterID),
		KeyValue.Field(out.Value),
	)
}

// LastError returns the most recent rejection error, or nil if the last
// value was accepted.
func (c *Confirmer) LastError() error {
	ptr := c.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// Rejections returns the retained rejections, oldest first.
// Returns nil if history is not enabled (see ErrorHistorySize).
func (c *Confirmer) Rejections() []Rejection {
	return c.rejections.all()
}

// ClearRejections drops the retained rejection history.
func (c *Confirmer) ClearRejections() {
	c.rejections.clear()
}

// Accepted returns the number of values confirmed through the pipeline.
func (c *Confirmer) Accepted() int64 {
	return c.accepted.Load()
}

// Rejected returns the number of values the pipeline refused.
func (c *Confirmer) Rejected() int64 {
	return c.rejected.Load()
}
