package detent

import "context"

// Control is one UI-facing view of a parameter attached to a Group.
// Implementations must be comparable (normally a pointer type) and must
// detach from their Group before they are discarded.
type Control interface {
	// CurrentValue returns the displayed value in domain units.
	CurrentValue() float64

	// SetDisplay shows value without reporting it as a user edit. It is
	// always called on the UI context, with the Group's guard held.
	SetDisplay(ctx context.Context, value float64)
}
