package detent

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Every callback runs on the UI context; none is invoked from the producer path.
type MetricsProvider interface {
	// OnCandidate is called when a control edit is withheld and forwarded.
	OnCandidate()

	// OnApply is called after a dispatch application. Coalesced is the number
	// of producer confirms folded into it; zero for a synchronous confirm.
	OnApply(duration time.Duration, controls, coalesced int)

	// OnEchoSuppressed is called when the store echoes the Group's own write.
	OnEchoSuppressed()

	// OnGesture is called when a gesture opens (begin true) or closes.
	OnGesture(begin bool)

	// OnRejected is called when a Confirmer pipeline refuses a candidate.
	OnRejected()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnCandidate()                      {}
func (NoOpMetricsProvider) OnApply(_ time.Duration, _, _ int) {}
func (NoOpMetricsProvider) OnEchoSuppressed()                 {}
func (NoOpMetricsProvider) OnGesture(_ bool)                  {}
func (NoOpMetricsProvider) OnRejected()                       {}
