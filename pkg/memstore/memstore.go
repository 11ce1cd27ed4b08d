// Package memstore provides an in-memory detent.Store.
//
// It keeps normalized values atomically, notifies listeners on whichever
// goroutine performed the write, and counts host notifications, gestures
// and undo transactions so tests and demos can observe what a host would
// see.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/detent"
)

// ErrUnknownParameter is returned for ids the store does not hold.
var ErrUnknownParameter = errors.New("memstore: unknown parameter")

// HostFunc observes every host-notifying write as a normalized value.
type HostFunc func(parameterID string, normalized float64)

// Store is an in-memory detent.Store and detent.UndoHost.
type Store struct {
	mu        sync.RWMutex
	params    map[string]*Param
	order     []string
	listeners map[string][]detent.Listener

	transactions atomic.Int64
	onHost       atomic.Pointer[HostFunc]
}

// New creates a Store holding the given parameters.
func New(defs ...Definition) (*Store, error) {
	s := &Store{
		params:    make(map[string]*Param),
		listeners: make(map[string][]detent.Listener),
	}
	for _, def := range defs {
		if err := s.Add(def); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add registers a parameter initialised to its default value.
func (s *Store) Add(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.params[def.ID]; exists {
		return fmt.Errorf("memstore: duplicate parameter %q", def.ID)
	}
	p := &Param{store: s, def: def}
	p.value.Store(floatBits(def.Range.ToNormalized(def.Default)))
	s.params[def.ID] = p
	s.order = append(s.order, def.ID)
	return nil
}

// OnHostNotify sets a callback invoked for every host-notifying write.
func (s *Store) OnHostNotify(fn HostFunc) *Store {
	if fn == nil {
		s.onHost.Store(nil)
		return s
	}
	s.onHost.Store(&fn)
	return s
}

// IDs returns parameter ids in registration order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Param returns the concrete parameter for id, or nil.
func (s *Store) Param(id string) *Param {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params[id]
}

// Parameter implements detent.Store.
func (s *Store) Parameter(id string) detent.Parameter {
	if p := s.Param(id); p != nil {
		return p
	}
	return nil
}

// AddListener implements detent.Store.
func (s *Store) AddListener(id string, l detent.Listener) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[id] = append(s.listeners[id], l)
}

// RemoveListener implements detent.Store.
func (s *Store) RemoveListener(id string, l detent.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := s.listeners[id]
	for i, sub := range subs {
		if sub == l {
			s.listeners[id] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Listeners returns the number of listeners registered for id.
func (s *Store) Listeners(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners[id])
}

// BeginNewTransaction implements detent.UndoHost.
func (s *Store) BeginNewTransaction() {
	s.transactions.Add(1)
}

// Transactions returns the number of undo transactions started.
func (s *Store) Transactions() int64 {
	return s.transactions.Load()
}

// SetDomainValue writes a domain value with host notification. It is the
// entry point for writers outside the UI, such as automation or presets.
func (s *Store) SetDomainValue(ctx context.Context, id string, value float64) error {
	p := s.Param(id)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	p.SetValueNotifyingHost(ctx, p.ToNormalized(value))
	return nil
}

// DomainValue returns the current value of id in domain units.
func (s *Store) DomainValue(id string) (float64, bool) {
	p := s.Param(id)
	if p == nil {
		return 0, false
	}
	return p.ToDomain(p.Value()), true
}

// SetRange replaces the domain range of id. The normalized value is kept,
// so the domain value moves with the range.
func (s *Store) SetRange(id string, r detent.Range) error {
	p := s.Param(id)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	if r.End <= r.Start {
		return fmt.Errorf("memstore: invalid range [%g, %g] for %q", r.Start, r.End, id)
	}
	p.mu.Lock()
	p.def.Range = r
	p.mu.Unlock()
	return nil
}

// notify delivers a change to a copy of the listener list so listeners may
// unregister themselves while being called.
func (s *Store) notify(ctx context.Context, id string, normalized, domain float64) {
	if fn := s.onHost.Load(); fn != nil {
		(*fn)(id, normalized)
	}

	s.mu.RLock()
	subs := make([]detent.Listener, len(s.listeners[id]))
	copy(subs, s.listeners[id])
	s.mu.RUnlock()

	for _, l := range subs {
		l.ParameterChanged(ctx, id, domain)
	}
}
