package detent

import "context"

// RangeConverter translates between a widget's domain and [0,1].
// RangeAdapter is the implementation handed to widgets by attachments.
type RangeConverter interface {
	Range() Range
	ToDomain(normalized float64) float64
	ToNormalized(value float64) float64
	Snap(value float64) float64
}

// WidgetListener receives events from a continuous widget such as a slider
// or a knob. Events are delivered on the UI context.
type WidgetListener interface {
	ValueChanged(ctx context.Context, w Widget)
	DragStarted(ctx context.Context, w Widget)
	DragEnded(ctx context.Context, w Widget)
}

// Widget is a continuous UI widget driven by a SliderAttachment.
type Widget interface {
	Value() float64

	// SetValue displays value. When notify is true the widget reports the
	// change to its listeners synchronously, as a user edit would.
	SetValue(ctx context.Context, value float64, notify bool)

	AddListener(l WidgetListener)
	RemoveListener(l WidgetListener)

	SetRange(r RangeConverter)
	SetResetValue(enabled bool, value float64)
	SetTextConverters(fromText func(string) float64, toText func(float64) string)
}

// ToggleListener receives clicks from an on/off widget.
type ToggleListener interface {
	Toggled(ctx context.Context, t Toggle)
}

// Toggle is an on/off UI widget driven by a ToggleAttachment.
type Toggle interface {
	On() bool
	SetOn(ctx context.Context, on bool, notify bool)

	AddToggleListener(l ToggleListener)
	RemoveToggleListener(l ToggleListener)
}
