package detent

import (
	"context"
	"strconv"
)

// SliderAttachment binds a continuous Widget to a Group.
//
// The widget's range, reset value and text conversion are taken from the
// store. User edits are reported to the Group as candidates, and drags are
// bracketed as gestures.
type SliderAttachment struct {
	group  *Group
	widget Widget
	closed bool
}

// NewSliderAttachment attaches w to g and shows the group's current value.
// It must be called on the UI context.
func NewSliderAttachment(ctx context.Context, g *Group, w Widget) *SliderAttachment {
	s := &SliderAttachment{group: g, widget: w}
	g.Attach(s)

	if p := g.Parameter(); p != nil {
		w.SetRange(NewRangeAdapter(s.liveRange))
		w.SetResetValue(true, p.ToDomain(p.DefaultValue()))
		w.SetTextConverters(s.valueFromText, s.textFromValue)
	}

	s.SetDisplay(ctx, g.LastValue())
	w.AddListener(s)
	return s
}

// Widget returns the attached widget.
func (s *SliderAttachment) Widget() Widget {
	return s.widget
}

// liveRange fetches the store's range each time a conversion is needed.
func (s *SliderAttachment) liveRange() Range {
	if p := s.group.Parameter(); p != nil {
		return p.Range()
	}
	return Range{}
}

func (s *SliderAttachment) valueFromText(text string) float64 {
	p := s.group.Parameter()
	if p == nil {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return s.group.LastValue()
		}
		return v
	}
	return p.ToDomain(p.ValueForText(text))
}

func (s *SliderAttachment) textFromValue(value float64) string {
	p := s.group.Parameter()
	if p == nil {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return p.Text(p.ToNormalized(value))
}

// CurrentValue implements Control.
func (s *SliderAttachment) CurrentValue() float64 {
	return s.widget.Value()
}

// SetDisplay implements Control.
func (s *SliderAttachment) SetDisplay(ctx context.Context, value float64) {
	s.widget.SetValue(ctx, value, true)
}

// ValueChanged implements WidgetListener.
func (s *SliderAttachment) ValueChanged(ctx context.Context, _ Widget) {
	s.group.ReportCandidate(ctx, s, s.CurrentValue())
}

// DragStarted implements WidgetListener.
func (s *SliderAttachment) DragStarted(ctx context.Context, _ Widget) {
	s.group.BeginGesture(ctx)
}

// DragEnded implements WidgetListener.
func (s *SliderAttachment) DragEnded(ctx context.Context, _ Widget) {
	s.group.EndGesture(ctx)
}

// Close stops listening to the widget and detaches from the group.
// It must be called on the UI context and is idempotent.
func (s *SliderAttachment) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.widget.RemoveListener(s)
	s.group.Detach(s)
}
