package detent

import (
	"context"
	"fmt"
	"math"

	"github.com/zoobzio/pipz"
)

// Pipeline identities.
var (
	confirmID    = pipz.NewIdentity("detent:confirm", "Confirm value on group")
	middlewareID = pipz.NewIdentity("detent:middleware", "Confirmer middleware sequence")
	clampID      = pipz.NewIdentity("detent:clamp", "Clamp value to parameter range")
	snapID       = pipz.NewIdentity("detent:snap", "Snap value to legal step")
	maxStepID    = pipz.NewIdentity("detent:max-step", "Limit change per candidate")
)

// Option configures the processing pipeline of a Confirmer. Options wrap
// the terminal confirm step with middleware.
type Option func(pipz.Chainable[*Request]) pipz.Chainable[*Request]

// buildPipeline wraps a terminal with pipeline options.
func buildPipeline(terminal pipz.Chainable[*Request], opts []Option) pipz.Chainable[*Request] {
	pipeline := terminal
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}
	return pipeline
}

// WithMiddleware runs processors in order before the wrapped pipeline.
//
// Example:
//
//	detent.NewConfirmer(group,
//	    detent.WithMiddleware(
//	        detent.UseSnap(),
//	        detent.UseMaxStep(0.1),
//	    ),
//	)
func WithMiddleware(processors ...pipz.Chainable[*Request]) Option {
	return func(p pipz.Chainable[*Request]) pipz.Chainable[*Request] {
		all := make([]pipz.Chainable[*Request], 0, len(processors)+1)
		all = append(all, processors...)
		all = append(all, p)
		return pipz.NewSequence(middlewareID, all...)
	}
}

// -----------------------------------------------------------------------------
// Middleware Processors - Adapters (Use*)
// -----------------------------------------------------------------------------

// UseTransform creates a processor that rewrites the request. Cannot fail.
func UseTransform(id pipz.Identity, fn func(context.Context, *Request) *Request) pipz.Chainable[*Request] {
	return pipz.Transform(id, fn)
}

// UseApply creates a processor that can rewrite the request or fail.
// A failure stops the candidate from being confirmed.
func UseApply(id pipz.Identity, fn func(context.Context, *Request) (*Request, error)) pipz.Chainable[*Request] {
	return pipz.Apply(id, fn)
}

// UseEffect creates a processor that performs a side effect and passes the
// request through unchanged.
func UseEffect(id pipz.Identity, fn func(context.Context, *Request) error) pipz.Chainable[*Request] {
	return pipz.Effect(id, fn)
}

// UseFilter runs processor only when condition returns true.
func UseFilter(id pipz.Identity, condition func(context.Context, *Request) bool, processor pipz.Chainable[*Request]) pipz.Chainable[*Request] {
	return pipz.NewFilter(id, condition, processor)
}

// UseValidate rejects the request when check returns an error. The error
// wraps ErrRejected.
func UseValidate(id pipz.Identity, check func(*Request) error) pipz.Chainable[*Request] {
	return pipz.Apply(id, func(_ context.Context, req *Request) (*Request, error) {
		if err := check(req); err != nil {
			return req, fmt.Errorf("%w: %v", ErrRejected, err)
		}
		return req, nil
	})
}

// -----------------------------------------------------------------------------
// Middleware Processors - Range (Use*)
// -----------------------------------------------------------------------------

// UseClamp limits the value to the parameter's range.
func UseClamp() pipz.Chainable[*Request] {
	return pipz.Transform(clampID, func(_ context.Context, req *Request) *Request {
		if req.Range.Length() > 0 {
			req.Value = req.Range.Clamp(req.Value)
		}
		return req
	})
}

// UseSnap rounds the value to the parameter's nearest legal step.
func UseSnap() pipz.Chainable[*Request] {
	return pipz.Transform(snapID, func(_ context.Context, req *Request) *Request {
		if req.Range.Length() > 0 {
			req.Value = req.Range.Snap(req.Value)
		}
		return req
	})
}

// UseMaxStep limits how far a single candidate may move the value away
// from the authoritative one.
func UseMaxStep(step float64) pipz.Chainable[*Request] {
	return pipz.Transform(maxStepID, func(_ context.Context, req *Request) *Request {
		if step <= 0 {
			return req
		}
		if d := req.Delta(); math.Abs(d) > step {
			req.Value = req.Previous + math.Copysign(step, d)
		}
		return req
	})
}
