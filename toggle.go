package detent

import "context"

// ToggleAttachment binds an on/off Toggle to a Group. The domain values are
// 0 and 1; each click is reported as a single-step gesture.
type ToggleAttachment struct {
	group   *Group
	toggle  Toggle
	closed  bool
	showing bool
}

// NewToggleAttachment attaches t to g and shows the group's current value.
// It must be called on the UI context.
func NewToggleAttachment(ctx context.Context, g *Group, t Toggle) *ToggleAttachment {
	a := &ToggleAttachment{group: g, toggle: t}
	g.Attach(a)
	a.SetDisplay(ctx, g.LastValue())
	t.AddToggleListener(a)
	return a
}

// CurrentValue implements Control.
func (a *ToggleAttachment) CurrentValue() float64 {
	if a.toggle.On() {
		return 1
	}
	return 0
}

// SetDisplay implements Control. Values of 0.5 and above display as on.
func (a *ToggleAttachment) SetDisplay(ctx context.Context, value float64) {
	a.showing = true
	defer func() { a.showing = false }()
	a.toggle.SetOn(ctx, value >= 0.5, true)
}

// Toggled implements ToggleListener. Notifications caused by SetDisplay
// are not clicks and open no gesture.
func (a *ToggleAttachment) Toggled(ctx context.Context, _ Toggle) {
	if a.showing {
		return
	}
	a.group.BeginGesture(ctx)
	a.group.ReportCandidate(ctx, a, a.CurrentValue())
	a.group.EndGesture(ctx)
}

// Close stops listening to the toggle and detaches from the group.
// It must be called on the UI context and is idempotent.
func (a *ToggleAttachment) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.toggle.RemoveToggleListener(a)
	a.group.Detach(a)
}
