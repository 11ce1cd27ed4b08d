package preset

// State represents the current state of a Follower.
type State int32

const (
	// StateLoading indicates the Follower is waiting for its first document.
	StateLoading State = iota

	// StateHealthy indicates the last document was applied.
	StateHealthy

	// StateDegraded indicates the last document failed and an earlier
	// preset is still in effect.
	StateDegraded

	// StateEmpty indicates no document has ever been applied.
	StateEmpty
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateHealthy:
		return "healthy"
	case StateDegraded:
		return "degraded"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}
