package detent

import "context"

// Listener receives value changes for a parameter from the store.
// ParameterChanged may be called on any goroutine, including the UI context,
// and the value is expressed in domain units.
type Listener interface {
	ParameterChanged(ctx context.Context, parameterID string, value float64)
}

// Parameter is the store's handle for a single parameter.
// Values passed to Value, SetValueNotifyingHost, Text and DefaultValue are
// normalized to [0,1]; ToDomain and ToNormalized convert between the two.
type Parameter interface {
	// Value returns the current normalized value.
	Value() float64

	// SetValueNotifyingHost writes a normalized value and notifies the host
	// and every registered Listener. The context is forwarded to listeners
	// so they can tell which goroutine performed the write.
	SetValueNotifyingHost(ctx context.Context, normalized float64)

	// ToNormalized converts a domain value to [0,1].
	ToNormalized(value float64) float64

	// ToDomain converts a normalized value to domain units.
	ToDomain(normalized float64) float64

	// DefaultValue returns the normalized default.
	DefaultValue() float64

	// Text renders a normalized value for display.
	Text(normalized float64) string

	// ValueForText parses display text into a normalized value.
	ValueForText(text string) float64

	// Range returns the parameter's current domain range. The range may
	// change over the parameter's life and must not be cached by callers.
	Range() Range

	// BeginChangeGesture and EndChangeGesture bracket a host change gesture.
	BeginChangeGesture()
	EndChangeGesture()
}

// Store is the external system of record for parameter values.
type Store interface {
	AddListener(parameterID string, l Listener)
	RemoveListener(parameterID string, l Listener)

	// Parameter returns the handle for id, or nil if the store has none.
	Parameter(parameterID string) Parameter
}

// UndoHost is implemented by stores that keep an undo history.
// BeginNewTransaction is called once at the start of every gesture.
type UndoHost interface {
	BeginNewTransaction()
}
