package tui

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/zoobzio/detent"
)

// DefaultStep is the normalized distance one key press moves a Slider.
const DefaultStep = 0.01

const defaultWidth = 32

// Slider is a terminal detent.Widget. It is only touched from the
// program's event loop, so it holds no locks.
type Slider struct {
	label     string
	value     float64
	step      float64
	width     int
	listeners []detent.WidgetListener

	rng      detent.RangeConverter
	reset    float64
	resetOn  bool
	fromText func(string) float64
	toText   func(float64) string
}

// NewSlider creates a Slider with a display label.
func NewSlider(label string) *Slider {
	return &Slider{label: label, step: DefaultStep, width: defaultWidth}
}

// Step sets the normalized distance moved per key press.
func (s *Slider) Step(step float64) *Slider {
	if step > 0 {
		s.step = step
	}
	return s
}

// Width sets the track width in cells.
func (s *Slider) Width(cells int) *Slider {
	if cells > 0 {
		s.width = cells
	}
	return s
}

// Label returns the display label.
func (s *Slider) Label() string {
	return s.label
}

// Value implements detent.Widget.
func (s *Slider) Value() float64 {
	return s.value
}

// SetValue implements detent.Widget. Listeners hear about real changes only.
func (s *Slider) SetValue(ctx context.Context, value float64, notify bool) {
	changed := s.value != value
	s.value = value
	if !notify || !changed {
		return
	}
	for _, l := range append([]detent.WidgetListener(nil), s.listeners...) {
		l.ValueChanged(ctx, s)
	}
}

// AddListener implements detent.Widget.
func (s *Slider) AddListener(l detent.WidgetListener) {
	s.listeners = append(s.listeners, l)
}

// RemoveListener implements detent.Widget.
func (s *Slider) RemoveListener(l detent.WidgetListener) {
	for i, existing := range s.listeners {
		if existing == l {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

// SetRange implements detent.Widget.
func (s *Slider) SetRange(r detent.RangeConverter) { s.rng = r }

// SetResetValue implements detent.Widget.
func (s *Slider) SetResetValue(enabled bool, value float64) {
	s.resetOn = enabled
	s.reset = value
}

// SetTextConverters implements detent.Widget.
func (s *Slider) SetTextConverters(fromText func(string) float64, toText func(float64) string) {
	s.fromText = fromText
	s.toText = toText
}

// position returns the displayed value in [0,1].
func (s *Slider) position() float64 {
	if s.rng == nil {
		return math.Max(0, math.Min(1, s.value))
	}
	return s.rng.ToNormalized(s.value)
}

// Nudge moves the slider by steps key presses as one drag gesture.
func (s *Slider) Nudge(ctx context.Context, steps int) {
	if steps == 0 {
		return
	}
	pos := math.Max(0, math.Min(1, s.position()+float64(steps)*s.step))
	target := pos
	if s.rng != nil {
		target = s.rng.Snap(s.rng.ToDomain(pos))
	}
	s.drag(ctx, target)
}

// Reset moves the slider to its reset value as one drag gesture. It does
// nothing when reset is disabled.
func (s *Slider) Reset(ctx context.Context) {
	if !s.resetOn {
		return
	}
	s.drag(ctx, s.reset)
}

// EnterText parses text with the installed converter and applies it as a
// single edit.
func (s *Slider) EnterText(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if s.fromText != nil {
		s.SetValue(ctx, s.fromText(text), true)
		return
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		s.SetValue(ctx, v, true)
	}
}

func (s *Slider) drag(ctx context.Context, target float64) {
	listeners := append([]detent.WidgetListener(nil), s.listeners...)
	for _, l := range listeners {
		l.DragStarted(ctx, s)
	}
	s.SetValue(ctx, target, true)
	for _, l := range listeners {
		l.DragEnded(ctx, s)
	}
}

// Text renders the current value with the installed converter.
func (s *Slider) Text() string {
	if s.toText != nil {
		return s.toText(s.value)
	}
	return strconv.FormatFloat(s.value, 'f', 2, 64)
}

// Render draws the slider on one line.
func (s *Slider) Render(focused bool) string {
	filled := int(math.Round(s.position() * float64(s.width)))
	bar := filledStyle.Render(strings.Repeat("█", filled)) +
		trackStyle.Render(strings.Repeat("░", s.width-filled))

	label := labelStyle.Render(s.label)
	if focused {
		label = focusStyle.Render("› " + s.label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", bar, " ", valueStyle.Render(s.Text()))
}
