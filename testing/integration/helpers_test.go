package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/zoobzio/detent"
	"github.com/zoobzio/detent/pkg/memstore"
	dtesting "github.com/zoobzio/detent/testing"
)

// rig is a store with one group running on an asynchronous loop and a
// slider attached to it.
type rig struct {
	loop      *detent.Loop
	store     *memstore.Store
	group     *detent.Group
	confirmer *detent.Confirmer
	widget    *dtesting.FakeWidget
}

func newRig(t *testing.T, opts ...detent.Option) *rig {
	t.Helper()

	store, err := memstore.New(dtesting.GainDefinition())
	if err != nil {
		t.Fatalf("memstore.New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	loop := detent.NewLoop()
	if err := loop.Start(ctx); err != nil {
		cancel()
		t.Fatalf("loop.Start failed: %v", err)
	}

	group, err := detent.NewGroup(store, "gain", loop)
	if err != nil {
		cancel()
		t.Fatalf("detent.NewGroup failed: %v", err)
	}

	r := &rig{
		loop:      loop,
		store:     store,
		group:     group,
		confirmer: detent.NewConfirmer(group, opts...),
		widget:    dtesting.NewFakeWidget(0),
	}
	r.ui(t, func(ui context.Context) {
		detent.NewSliderAttachment(ui, group, r.widget)
	})

	t.Cleanup(func() {
		_ = group.Close()
		cancel()
	})
	return r
}

// ui runs fn on the loop and waits for it.
func (r *rig) ui(t *testing.T, fn func(ui context.Context)) {
	t.Helper()
	if err := r.loop.Invoke(context.Background(), fn); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
}

// settled reports whether the widget, the group and the store all show v.
func (r *rig) settled(v float64) bool {
	stored, _ := r.store.DomainValue("gain")
	return near(r.widget.Value(), v) && near(r.group.LastValue(), v) && near(stored, v)
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	return dtesting.WaitFor(t, timeout, condition)
}
