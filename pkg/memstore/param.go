package memstore

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/detent"
)

// Definition describes a parameter held by the Store.
type Definition struct {
	ID       string       `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Range    detent.Range `json:"range" yaml:"range"`
	Default  float64      `json:"default" yaml:"default"`
	Unit     string       `json:"unit,omitempty" yaml:"unit,omitempty"`
	Decimals int          `json:"decimals,omitempty" yaml:"decimals,omitempty"`
}

// Validate checks the definition is usable.
func (d Definition) Validate() error {
	if d.ID == "" {
		return errors.New("memstore: parameter id is required")
	}
	if d.Range.End <= d.Range.Start {
		return errors.New("memstore: range end must be greater than start")
	}
	if d.Default < d.Range.Start || d.Default > d.Range.End {
		return errors.New("memstore: default must lie within the range")
	}
	if d.Decimals < 0 {
		return errors.New("memstore: decimals must not be negative")
	}
	return nil
}

// Param is one parameter in a Store. It implements detent.Parameter.
type Param struct {
	store *Store

	mu  sync.RWMutex
	def Definition

	value        atomic.Uint64
	hostWrites   atomic.Int64
	gestures     atomic.Int64
	gestureDepth atomic.Int32
}

func floatBits(v float64) uint64 { return math.Float64bits(v) }

// Definition returns a copy of the parameter's definition.
func (p *Param) Definition() Definition {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.def
}

// Value implements detent.Parameter.
func (p *Param) Value() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValueNotifyingHost implements detent.Parameter. Listeners run on the
// calling goroutine with ctx.
func (p *Param) SetValueNotifyingHost(ctx context.Context, normalized float64) {
	normalized = math.Max(0, math.Min(1, normalized))
	p.value.Store(floatBits(normalized))
	p.hostWrites.Add(1)

	id := p.Definition().ID
	p.store.notify(ctx, id, normalized, p.ToDomain(normalized))
}

// Range implements detent.Parameter.
func (p *Param) Range() detent.Range {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.def.Range
}

// ToNormalized implements detent.Parameter.
func (p *Param) ToNormalized(value float64) float64 {
	return p.Range().ToNormalized(value)
}

// ToDomain implements detent.Parameter.
func (p *Param) ToDomain(normalized float64) float64 {
	return p.Range().ToDomain(normalized)
}

// DefaultValue implements detent.Parameter.
func (p *Param) DefaultValue() float64 {
	def := p.Definition()
	return def.Range.ToNormalized(def.Default)
}

// Text implements detent.Parameter, e.g. "-6.0 dB".
func (p *Param) Text(normalized float64) string {
	def := p.Definition()
	text := strconv.FormatFloat(def.Range.ToDomain(normalized), 'f', def.Decimals, 64)
	if def.Unit == "" {
		return text
	}
	return text + " " + def.Unit
}

// ValueForText implements detent.Parameter. The unit suffix is optional.
// Text that does not parse yields the current value.
func (p *Param) ValueForText(text string) float64 {
	def := p.Definition()
	text = strings.TrimSpace(text)
	if def.Unit != "" {
		text = strings.TrimSpace(strings.TrimSuffix(text, def.Unit))
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return p.Value()
	}
	return def.Range.ToNormalized(v)
}

// BeginChangeGesture implements detent.Parameter.
func (p *Param) BeginChangeGesture() {
	p.gestures.Add(1)
	p.gestureDepth.Add(1)
}

// EndChangeGesture implements detent.Parameter.
func (p *Param) EndChangeGesture() {
	p.gestureDepth.Add(-1)
}

// HostWrites returns the number of host-notifying writes.
func (p *Param) HostWrites() int64 {
	return p.hostWrites.Load()
}

// Gestures returns the number of gestures begun.
func (p *Param) Gestures() int64 {
	return p.gestures.Load()
}

// GestureDepth returns the number of open gestures.
func (p *Param) GestureDepth() int {
	return int(p.gestureDepth.Load())
}
