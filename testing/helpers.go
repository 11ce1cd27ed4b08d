// Package testing provides test utilities and fakes for detent groups.
package testing

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/zoobzio/detent"
	"github.com/zoobzio/detent/pkg/memstore"
)

// GainDefinition is a standard parameter for tests: -60..12 dB, default 0.
func GainDefinition() memstore.Definition {
	return memstore.Definition{
		ID:       "gain",
		Name:     "Gain",
		Range:    detent.Range{Start: -60, End: 12},
		Default:  0,
		Unit:     "dB",
		Decimals: 1,
	}
}

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// RequireValue fails the test immediately if the group's authoritative
// value is not expected.
func RequireValue(t *testing.T, g *detent.Group, expected float64) {
	t.Helper()
	if got := g.LastValue(); math.Abs(got-expected) > 1e-9 {
		t.Fatalf("expected last value %v, got %v", expected, got)
	}
}

// RequireStoreValue fails the test if the store does not hold expected for
// parameterID, in domain units.
func RequireStoreValue(t *testing.T, s *memstore.Store, parameterID string, expected float64) {
	t.Helper()
	got, ok := s.DomainValue(parameterID)
	if !ok {
		t.Fatalf("parameter %q not found", parameterID)
	}
	if math.Abs(got-expected) > 1e-9 {
		t.Fatalf("expected store value %v for %q, got %v", expected, parameterID, got)
	}
}

// Fixture bundles a sync-mode loop, an in-memory store and one group.
type Fixture struct {
	Loop  *detent.Loop
	Store *memstore.Store
	Group *detent.Group
}

// UI returns a context that the fixture's loop recognises as the UI
// context. Tasks run with it are treated as running on the loop.
func (f *Fixture) UI(ctx context.Context) context.Context {
	ui := ctx
	_ = f.Loop.Invoke(ctx, func(c context.Context) { ui = c })
	return ui
}

// Process drains every queued task, including tasks posted while draining.
func (f *Fixture) Process(ctx context.Context) int {
	total := 0
	for {
		n := f.Loop.Process(ctx)
		if n == 0 {
			return total
		}
		total += n
	}
}

// NewFixture creates a Fixture for def in sync mode. Everything is closed
// when the test ends.
func NewFixture(t *testing.T, def memstore.Definition) *Fixture {
	t.Helper()

	store, err := memstore.New(def)
	if err != nil {
		t.Fatalf("memstore.New failed: %v", err)
	}

	loop := detent.NewLoop().SyncMode()
	ctx, cancel := context.WithCancel(context.Background())
	if err := loop.Start(ctx); err != nil {
		cancel()
		t.Fatalf("loop.Start failed: %v", err)
	}

	group, err := detent.NewGroup(store, def.ID, loop)
	if err != nil {
		cancel()
		t.Fatalf("detent.NewGroup failed: %v", err)
	}

	t.Cleanup(func() {
		_ = group.Close()
		cancel()
	})

	return &Fixture{Loop: loop, Store: store, Group: group}
}
