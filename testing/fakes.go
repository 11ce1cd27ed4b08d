package testing

import (
	"context"
	"sync"

	"github.com/zoobzio/detent"
)

// FakeWidget is an in-memory detent.Widget. Notifying writes call the
// listeners synchronously on the caller's goroutine, like a toolkit slider.
type FakeWidget struct {
	mu        sync.Mutex
	value     float64
	listeners []detent.WidgetListener
	rng       detent.RangeConverter
	reset     float64
	resetOn   bool
	fromText  func(string) float64
	toText    func(float64) string
	sets      int
}

// NewFakeWidget creates a FakeWidget showing value.
func NewFakeWidget(value float64) *FakeWidget {
	return &FakeWidget{value: value}
}

// Value implements detent.Widget.
func (w *FakeWidget) Value() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// SetValue implements detent.Widget. Listeners are only told about real
// changes.
func (w *FakeWidget) SetValue(ctx context.Context, value float64, notify bool) {
	w.mu.Lock()
	changed := w.value != value
	w.value = value
	w.sets++
	listeners := append([]detent.WidgetListener(nil), w.listeners...)
	w.mu.Unlock()

	if !notify || !changed {
		return
	}
	for _, l := range listeners {
		l.ValueChanged(ctx, w)
	}
}

// Sets returns how many times SetValue was called.
func (w *FakeWidget) Sets() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sets
}

// AddListener implements detent.Widget.
func (w *FakeWidget) AddListener(l detent.WidgetListener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, l)
}

// RemoveListener implements detent.Widget.
func (w *FakeWidget) RemoveListener(l detent.WidgetListener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, existing := range w.listeners {
		if existing == l {
			w.listeners = append(w.listeners[:i:i], w.listeners[i+1:]...)
			return
		}
	}
}

// Listeners returns the number of registered listeners.
func (w *FakeWidget) Listeners() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners)
}

// SetRange implements detent.Widget.
func (w *FakeWidget) SetRange(r detent.RangeConverter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rng = r
}

// RangeConverter returns the converter installed with SetRange.
func (w *FakeWidget) RangeConverter() detent.RangeConverter {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rng
}

// SetResetValue implements detent.Widget.
func (w *FakeWidget) SetResetValue(enabled bool, value float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetOn = enabled
	w.reset = value
}

// ResetValue returns the reset value and whether reset is enabled.
func (w *FakeWidget) ResetValue() (float64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reset, w.resetOn
}

// SetTextConverters implements detent.Widget.
func (w *FakeWidget) SetTextConverters(fromText func(string) float64, toText func(float64) string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fromText = fromText
	w.toText = toText
}

// Text renders the current value with the installed converter.
func (w *FakeWidget) Text() string {
	w.mu.Lock()
	toText, value := w.toText, w.value
	w.mu.Unlock()
	if toText == nil {
		return ""
	}
	return toText(value)
}

// Edit simulates the user moving the widget to value without a drag.
func (w *FakeWidget) Edit(ctx context.Context, value float64) {
	w.SetValue(ctx, value, true)
}

// Drag simulates a full drag gesture ending at value.
func (w *FakeWidget) Drag(ctx context.Context, values ...float64) {
	w.mu.Lock()
	listeners := append([]detent.WidgetListener(nil), w.listeners...)
	w.mu.Unlock()

	for _, l := range listeners {
		l.DragStarted(ctx, w)
	}
	for _, v := range values {
		w.SetValue(ctx, v, true)
	}
	for _, l := range listeners {
		l.DragEnded(ctx, w)
	}
}

// EnterText simulates the user typing text into the widget's editor.
func (w *FakeWidget) EnterText(ctx context.Context, text string) {
	w.mu.Lock()
	fromText := w.fromText
	w.mu.Unlock()
	if fromText == nil {
		return
	}
	w.SetValue(ctx, fromText(text), true)
}

// Reset simulates a double click returning the widget to its reset value.
func (w *FakeWidget) Reset(ctx context.Context) {
	value, enabled := w.ResetValue()
	if enabled {
		w.SetValue(ctx, value, true)
	}
}

// FakeToggle is an in-memory detent.Toggle.
type FakeToggle struct {
	mu        sync.Mutex
	on        bool
	listeners []detent.ToggleListener
}

// NewFakeToggle creates a FakeToggle.
func NewFakeToggle(on bool) *FakeToggle {
	return &FakeToggle{on: on}
}

// On implements detent.Toggle.
func (f *FakeToggle) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

// SetOn implements detent.Toggle.
func (f *FakeToggle) SetOn(ctx context.Context, on bool, notify bool) {
	f.mu.Lock()
	changed := f.on != on
	f.on = on
	listeners := append([]detent.ToggleListener(nil), f.listeners...)
	f.mu.Unlock()

	if !notify || !changed {
		return
	}
	for _, l := range listeners {
		l.Toggled(ctx, f)
	}
}

// Click simulates the user flipping the toggle.
func (f *FakeToggle) Click(ctx context.Context) {
	f.SetOn(ctx, !f.On(), true)
}

// AddToggleListener implements detent.Toggle.
func (f *FakeToggle) AddToggleListener(l detent.ToggleListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
}

// RemoveToggleListener implements detent.Toggle.
func (f *FakeToggle) RemoveToggleListener(l detent.ToggleListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.listeners {
		if existing == l {
			f.listeners = append(f.listeners[:i:i], f.listeners[i+1:]...)
			return
		}
	}
}

// RecordingControl is a bare detent.Control that records every display.
type RecordingControl struct {
	mu       sync.Mutex
	value    float64
	displays []float64
}

// CurrentValue implements detent.Control.
func (c *RecordingControl) CurrentValue() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// SetDisplay implements detent.Control.
func (c *RecordingControl) SetDisplay(_ context.Context, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.displays = append(c.displays, value)
}

// Displays returns every displayed value in order.
func (c *RecordingControl) Displays() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]float64(nil), c.displays...)
}
