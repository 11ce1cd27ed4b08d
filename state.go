package detent

// State represents the lifecycle state of a Loop.
type State int32

const (
	// StateIdle indicates the Loop has been created but not started.
	StateIdle State = iota

	// StateRunning indicates the Loop is draining tasks.
	StateRunning

	// StateStopped indicates the Loop's context ended. Posted tasks are
	// discarded and Invoke returns ErrLoopStopped.
	StateStopped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
