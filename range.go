package detent

import "math"

// Range describes a parameter's domain: the span [Start, End], an optional
// step Interval, and a Skew that bends the normalized mapping. A zero Skew is
// treated as linear. Symmetric applies the skew outward from the centre of
// the range instead of from Start.
type Range struct {
	Start     float64 `json:"start" yaml:"start"`
	End       float64 `json:"end" yaml:"end"`
	Interval  float64 `json:"interval,omitempty" yaml:"interval,omitempty"`
	Skew      float64 `json:"skew,omitempty" yaml:"skew,omitempty"`
	Symmetric bool    `json:"symmetric,omitempty" yaml:"symmetric,omitempty"`
}

// SkewForCentre returns the skew that maps centre to a normalized 0.5.
// It returns 1 when centre is not strictly inside (start, end).
func SkewForCentre(start, end, centre float64) float64 {
	if end <= start || centre <= start || centre >= end {
		return 1
	}
	return math.Log(0.5) / math.Log((centre-start)/(end-start))
}

// WithCentre returns a copy of r skewed so that centre sits at 0.5.
func (r Range) WithCentre(centre float64) Range {
	r.Skew = SkewForCentre(r.Start, r.End, centre)
	r.Symmetric = false
	return r
}

// Length returns End - Start.
func (r Range) Length() float64 {
	return r.End - r.Start
}

func (r Range) skew() float64 {
	if r.Skew <= 0 {
		return 1
	}
	return r.Skew
}

// ToNormalized maps a domain value onto [0,1].
func (r Range) ToNormalized(value float64) float64 {
	length := r.Length()
	if length <= 0 {
		return 0
	}
	proportion := clamp01((value - r.Start) / length)
	skew := r.skew()
	if skew == 1 {
		return proportion
	}
	if !r.Symmetric {
		return math.Pow(proportion, skew)
	}
	fromMiddle := 2*proportion - 1
	return (1 + math.Copysign(math.Pow(math.Abs(fromMiddle), skew), fromMiddle)) / 2
}

// ToDomain maps a normalized value back into the domain.
func (r Range) ToDomain(normalized float64) float64 {
	length := r.Length()
	if length <= 0 {
		return r.Start
	}
	proportion := clamp01(normalized)
	skew := r.skew()
	if !r.Symmetric {
		if skew != 1 && proportion > 0 {
			proportion = math.Exp(math.Log(proportion) / skew)
		}
		return r.Start + length*proportion
	}
	fromMiddle := 2*proportion - 1
	if skew != 1 && fromMiddle != 0 {
		fromMiddle = math.Copysign(math.Exp(math.Log(math.Abs(fromMiddle))/skew), fromMiddle)
	}
	return r.Start + length/2*(1+fromMiddle)
}

// Snap rounds value to the nearest legal step and clamps it into the range.
func (r Range) Snap(value float64) float64 {
	if r.Interval > 0 {
		value = r.Start + r.Interval*math.Floor((value-r.Start)/r.Interval+0.5)
	}
	if value <= r.Start || r.End <= r.Start {
		return r.Start
	}
	if value >= r.End {
		return r.End
	}
	return value
}

// Clamp limits value to [Start, End] without snapping.
func (r Range) Clamp(value float64) float64 {
	if value < r.Start {
		return r.Start
	}
	if value > r.End {
		return r.End
	}
	return value
}

func clamp01(v float64) float64 {
	switch {
	case v < 0, math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// RangeAdapter converts values using a range fetched fresh on every call.
// The store may publish a different range at any time, so nothing is cached.
type RangeAdapter struct {
	source func() Range
}

// NewRangeAdapter creates a RangeAdapter over source.
func NewRangeAdapter(source func() Range) RangeAdapter {
	return RangeAdapter{source: source}
}

// Range returns the range as currently published by the source.
func (a RangeAdapter) Range() Range {
	if a.source == nil {
		return Range{}
	}
	return a.source()
}

// ToDomain converts a normalized value using the current range.
func (a RangeAdapter) ToDomain(normalized float64) float64 {
	return a.Range().ToDomain(normalized)
}

// ToNormalized converts a domain value using the current range.
func (a RangeAdapter) ToNormalized(value float64) float64 {
	return a.Range().ToNormalized(value)
}

// Snap snaps value using the current range.
func (a RangeAdapter) Snap(value float64) float64 {
	return a.Range().Snap(value)
}
