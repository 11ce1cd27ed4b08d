package detent

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
)

// fakeParam is a linear parameter held by fakeStore.
type fakeParam struct {
	store *fakeStore
	id    string
	rng   Range
	def   float64
	value float64

	writes int
	begins int
	ends   int
}

func (p *fakeParam) Value() float64 {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	return p.value
}

func (p *fakeParam) SetValueNotifyingHost(ctx context.Context, normalized float64) {
	p.store.mu.Lock()
	p.value = normalized
	p.writes++
	listeners := append([]Listener(nil), p.store.listeners[p.id]...)
	p.store.mu.Unlock()

	domain := p.ToDomain(normalized)
	for _, l := range listeners {
		l.ParameterChanged(ctx, p.id, domain)
	}
}

func (p *fakeParam) ToNormalized(value float64) float64  { return p.rng.ToNormalized(value) }
func (p *fakeParam) ToDomain(normalized float64) float64 { return p.rng.ToDomain(normalized) }
func (p *fakeParam) DefaultValue() float64               { return p.rng.ToNormalized(p.def) }
func (p *fakeParam) Text(float64) string                 { return "" }
func (p *fakeParam) ValueForText(string) float64         { return 0 }
func (p *fakeParam) Range() Range                        { return p.rng }
func (p *fakeParam) BeginChangeGesture()                 { p.begins++ }
func (p *fakeParam) EndChangeGesture()                   { p.ends++ }

// fakeStore is a Store and UndoHost for tests.
type fakeStore struct {
	mu           sync.Mutex
	params       map[string]*fakeParam
	listeners    map[string][]Listener
	transactions int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		params:    make(map[string]*fakeParam),
		listeners: make(map[string][]Listener),
	}
}

func (s *fakeStore) add(id string, r Range, def float64) *fakeParam {
	p := &fakeParam{store: s, id: id, rng: r, def: def, value: r.ToNormalized(def)}
	s.params[id] = p
	return p
}

func (s *fakeStore) AddListener(id string, l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[id] = append(s.listeners[id], l)
}

func (s *fakeStore) RemoveListener(id string, l Listener) {
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

func (s *fakeStore) Parameter(id string) Parameter {
	if p, ok := s.params[id]; ok {
		return p
	}
	return nil
}

func (s *fakeStore) BeginNewTransaction() {
	s.transactions++
}

// domain returns the stored value of id in domain units.
func (s *fakeStore) domain(id string) float64 {
	p := s.params[id]
	return p.ToDomain(p.Value())
}

// newValueRecorder collects values passed to a NewValueFunc.
type newValueRecorder struct {
	mu     sync.Mutex
	values []float64
}

func (r *newValueRecorder) fn(_ context.Context, _ string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, value)
}

func (r *newValueRecorder) all() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.values...)
}

var gainRange = Range{Start: -60, End: 12}

// newTestGroup creates a group on a sync-mode loop over a fresh store
// holding "gain" at 0 dB.
func newTestGroup(t *testing.T) (*Group, *fakeStore, *Loop, context.Context) {
	t.Helper()
	store := newFakeStore()
	store.add("gain", gainRange, 0)

	loop := NewLoop().SyncMode()
	if err := loop.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	g, err := NewGroup(store, "gain", loop)
	if err != nil {
		t.Fatalf("NewGroup failed: %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })

	return g, store, loop, loop.uiContext(context.Background())
}

func TestNewGroup_Validation(t *testing.T) {
	store := newFakeStore()
	loop := NewLoop()

	if _, err := NewGroup(nil, "gain", loop); !errors.Is(err, ErrNilStore) {
		t.Errorf("expected ErrNilStore, got %v", err)
	}
	if _, err := NewGroup(store, "", loop); !errors.Is(err, ErrEmptyParameterID) {
		t.Errorf("expected ErrEmptyParameterID, got %v", err)
	}
	if _, err := NewGroup(store, "gain", nil); !errors.Is(err, ErrNilDispatcher) {
		t.Errorf("expected ErrNilDispatcher, got %v", err)
	}
}

func TestNewGroup_SeedsFromStore(t *testing.T) {
	store := newFakeStore()
	store.add("gain", gainRange, -12)

	g, err := NewGroup(store, "gain", NewLoop())
	if err != nil {
		t.Fatalf("NewGroup failed: %v", err)
	}
	defer g.Close()

	if !near(g.LastValue(), -12) {
		t.Errorf("expected -12, got %v", g.LastValue())
	}
	if len(store.listeners["gain"]) != 1 {
		t.Errorf("expected group registered as listener")
	}
	if g.ID() == "" {
		t.Error("expected group id")
	}
	if g.ParameterID() != "gain" {
		t.Errorf("expected parameter id gain, got %q", g.ParameterID())
	}
}

func TestNewGroup_MissingParameterStartsAtZero(t *testing.T) {
	g, err := NewGroup(newFakeStore(), "absent", NewLoop())
	if err != nil {
		t.Fatalf("NewGroup failed: %v", err)
	}
	defer g.Close()

	if g.LastValue() != 0 {
		t.Errorf("expected 0, got %v", g.LastValue())
	}
	if g.Parameter() != nil {
		t.Error("expected nil parameter")
	}
}

func TestGroup_CandidateIsWithheld(t *testing.T) {
	g, store, _, ui := newTestGroup(t)
	rec := &newValueRecorder{}
	g.OnNewValue(rec.fn)

	a := &stubControl{}
	b := &stubControl{}
	g.Attach(a)
	g.Attach(b)

	a.value = 5
	g.ReportCandidate(ui, a, 5)

	if a.value != 0 {
		t.Errorf("expected reporting control reverted to 0, got %v", a.value)
	}
	if len(b.displays) != 0 {
		t.Errorf("expected other control untouched, got %v", b.displays)
	}
	if store.params["gain"].writes != 0 {
		t.Error("expected store untouched")
	}
	if got := rec.all(); len(got) != 1 || got[0] != 5 {
		t.Errorf("expected candidate 5 forwarded, got %v", got)
	}
	if g.LastValue() != 0 {
		t.Errorf("expected last value unchanged, got %v", g.LastValue())
	}
}

func TestGroup_CandidateFromDetachedControlIgnored(t *testing.T) {
	g, _, _, ui := newTestGroup(t)
	rec := &newValueRecorder{}
	g.OnNewValue(rec.fn)

	stray := &stubControl{}
	g.ReportCandidate(ui, stray, 3)
	g.ReportCandidate(ui, nil, 3)

	if len(rec.all()) != 0 {
		t.Errorf("expected no forwarded values, got %v", rec.all())
	}
	if len(stray.displays) != 0 {
		t.Error("expected stray control untouched")
	}
}

func TestGroup_ConfirmOnUIAppliesAtOnce(t *testing.T) {
	g, store, loop, ui := newTestGroup(t)
	rec := &newValueRecorder{}
	g.OnNewValue(rec.fn)
	metrics := &countingMetrics{}
	g.Metrics(metrics)

	a := &stubControl{}
	b := &stubControl{}
	g.Attach(a)
	g.Attach(b)

	g.Confirm(ui, -6)

	if !near(store.domain("gain"), -6) {
		t.Errorf("expected store at -6, got %v", store.domain("gain"))
	}
	if a.value != -6 || b.value != -6 {
		t.Errorf("expected controls at -6, got %v and %v", a.value, b.value)
	}
	if len(rec.all()) != 0 {
		t.Errorf("expected echo suppressed, got %v", rec.all())
	}
	if loop.Pending() != 0 {
		t.Errorf("expected nothing queued, got %d", loop.Pending())
	}
	if metrics.applies != 1 || metrics.echoes != 1 {
		t.Errorf("expected 1 apply and 1 echo, got %+v", metrics)
	}
}

func TestGroup_ConfirmSameValueSkipsStoreWrite(t *testing.T) {
	g, store, _, ui := newTestGroup(t)
	a := &stubControl{}
	g.Attach(a)

	g.Confirm(ui, 0)

	if store.params["gain"].writes != 0 {
		t.Errorf("expected no store write, got %d", store.params["gain"].writes)
	}
	if len(a.displays) != 1 {
		t.Errorf("expected controls refreshed, got %v", a.displays)
	}
}

func TestGroup_ConfirmOutOfRangeClamps(t *testing.T) {
	t.Run("ui context", func(t *testing.T) {
		g, store, _, ui := newTestGroup(t)
		a := &stubControl{}
		g.Attach(a)

		g.Confirm(ui, 100)

		if g.LastValue() != 12 {
			t.Errorf("expected last value 12, got %v", g.LastValue())
		}
		if !near(store.domain("gain"), 12) {
			t.Errorf("expected store at 12, got %v", store.domain("gain"))
		}
		if a.value != 12 {
			t.Errorf("expected control at 12, got %v", a.value)
		}
	})

	t.Run("producer", func(t *testing.T) {
		g, store, loop, _ := newTestGroup(t)
		a := &stubControl{}
		g.Attach(a)
		ctx := context.Background()

		g.Confirm(ctx, 5)
		g.Confirm(ctx, -200)
		loop.Process(ctx)

		if g.LastValue() != -60 {
			t.Errorf("expected last value -60, got %v", g.LastValue())
		}
		if !near(store.domain("gain"), -60) {
			t.Errorf("expected store at -60, got %v", store.domain("gain"))
		}
		if a.value != -60 {
			t.Errorf("expected control at -60, got %v", a.value)
		}
	})
}

func TestGroup_ConfirmIgnoresNonFinite(t *testing.T) {
	g, store, loop, ui := newTestGroup(t)
	a := &stubControl{}
	g.Attach(a)

	g.Confirm(ui, -6)
	g.Confirm(ui, math.NaN())
	g.Confirm(context.Background(), math.Inf(1))
	g.Confirm(context.Background(), math.Inf(-1))

	if loop.Pending() != 0 {
		t.Errorf("expected nothing queued, got %d", loop.Pending())
	}
	if g.LastValue() != -6 {
		t.Errorf("expected last value -6, got %v", g.LastValue())
	}
	if !near(store.domain("gain"), -6) {
		t.Errorf("expected store at -6, got %v", store.domain("gain"))
	}
	if len(a.displays) != 1 || a.value != -6 {
		t.Errorf("expected one display at -6, got %v", a.displays)
	}
}

func TestGroup_NilClockFallsBack(t *testing.T) {
	g, store, _, ui := newTestGroup(t)
	g.Clock(nil)

	g.Confirm(ui, -12)

	if !near(store.domain("gain"), -12) {
		t.Errorf("expected store at -12, got %v", store.domain("gain"))
	}
}

func TestGroup_ProducerConfirmsCoalesce(t *testing.T) {
	g, store, loop, _ := newTestGroup(t)
	metrics := &countingMetrics{}
	g.Metrics(metrics)
	a := &stubControl{}
	g.Attach(a)

	producer := context.Background()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 50; i++ {
			g.Confirm(producer, float64(-i))
		}
	}()
	wg.Wait()

	if !near(g.LastValue(), -50) {
		t.Errorf("expected last value -50, got %v", g.LastValue())
	}
	if loop.Pending() != 1 {
		t.Fatalf("expected exactly 1 queued dispatch, got %d", loop.Pending())
	}
	if store.params["gain"].writes != 0 {
		t.Error("expected store untouched before dispatch")
	}

	if n := loop.Process(context.Background()); n != 1 {
		t.Errorf("expected 1 task, got %d", n)
	}

	if !near(store.domain("gain"), -50) {
		t.Errorf("expected store at -50, got %v", store.domain("gain"))
	}
	if len(a.displays) != 1 || a.value != -50 {
		t.Errorf("expected one display of -50, got %v", a.displays)
	}
	if metrics.applies != 1 || metrics.coalesced != 50 {
		t.Errorf("expected 1 apply of 50 confirms, got %+v", metrics)
	}

	g.Confirm(producer, -1)
	if loop.Pending() != 1 {
		t.Errorf("expected a new dispatch armed after the first ran, got %d", loop.Pending())
	}
}

func TestGroup_UIConfirmCancelsPendingDispatch(t *testing.T) {
	g, store, loop, ui := newTestGroup(t)
	metrics := &countingMetrics{}
	g.Metrics(metrics)

	g.Confirm(context.Background(), -30)
	g.Confirm(ui, -3)

	if !near(store.domain("gain"), -3) {
		t.Errorf("expected store at -3, got %v", store.domain("gain"))
	}

	loop.Process(context.Background())

	if !near(store.domain("gain"), -3) {
		t.Errorf("expected stale dispatch dropped, store at %v", store.domain("gain"))
	}
	if metrics.applies != 1 {
		t.Errorf("expected 1 apply, got %d", metrics.applies)
	}
}

func TestGroup_ExternalChangeIsForwarded(t *testing.T) {
	g, store, _, ui := newTestGroup(t)
	rec := &newValueRecorder{}
	g.OnNewValue(rec.fn)
	a := &stubControl{}
	g.Attach(a)

	p := store.params["gain"]
	p.SetValueNotifyingHost(context.Background(), p.ToNormalized(6))
	p.SetValueNotifyingHost(ui, p.ToNormalized(-24))

	got := rec.all()
	if len(got) != 2 || !near(got[0], 6) || !near(got[1], -24) {
		t.Errorf("expected [6 -24] forwarded, got %v", got)
	}
	if g.LastValue() != 0 {
		t.Errorf("expected last value unchanged, got %v", g.LastValue())
	}
	if len(a.displays) != 0 {
		t.Error("expected controls untouched")
	}
}

func TestGroup_NoFeedbackFromControls(t *testing.T) {
	g, _, _, ui := newTestGroup(t)
	rec := &newValueRecorder{}
	g.OnNewValue(rec.fn)

	a := &stubControl{}
	a.onShow = func(value float64) {
		// A toolkit widget reports programmatic changes like user edits.
		g.ReportCandidate(ui, a, value)
	}
	g.Attach(a)

	g.Confirm(ui, -6)

	if len(rec.all()) != 0 {
		t.Errorf("expected no candidates during apply, got %v", rec.all())
	}
	if a.value != -6 {
		t.Errorf("expected -6, got %v", a.value)
	}
}

func TestGroup_DetachDuringApply(t *testing.T) {
	g, _, _, ui := newTestGroup(t)
	a := &stubControl{}
	b := &stubControl{}
	a.onShow = func(float64) { g.Detach(b) }
	g.Attach(a)
	g.Attach(b)

	g.Confirm(ui, 1)

	if len(b.displays) != 0 {
		t.Errorf("expected detached control skipped, got %v", b.displays)
	}
	if g.Len() != 1 {
		t.Errorf("expected 1 control, got %d", g.Len())
	}
}

func TestGroup_Gestures(t *testing.T) {
	g, store, _, ui := newTestGroup(t)
	metrics := &countingMetrics{}
	g.Metrics(metrics)

	g.BeginGesture(ui)
	g.EndGesture(ui)

	p := store.params["gain"]
	if p.begins != 1 || p.ends != 1 {
		t.Errorf("expected 1 begin and 1 end, got %d and %d", p.begins, p.ends)
	}
	if store.transactions != 1 {
		t.Errorf("expected 1 undo transaction, got %d", store.transactions)
	}
	if metrics.begins != 1 || metrics.ends != 1 {
		t.Errorf("expected gesture metrics, got %+v", metrics)
	}
}

func TestGroup_GestureSpansManyConfirms(t *testing.T) {
	g, store, loop, ui := newTestGroup(t)
	a := &stubControl{}
	g.Attach(a)
	producer := context.Background()

	g.BeginGesture(ui)
	for i := 0; i < 10; i++ {
		g.Confirm(ui, float64(-i))
		g.Confirm(producer, float64(-i-20))
	}
	loop.Process(producer)
	g.Confirm(ui, -3)
	g.EndGesture(ui)

	p := store.params["gain"]
	if store.transactions != 1 {
		t.Errorf("expected 1 undo transaction, got %d", store.transactions)
	}
	if p.begins != 1 || p.ends != 1 {
		t.Errorf("expected 1 begin and 1 end, got %d and %d", p.begins, p.ends)
	}
	if a.value != -3 || !near(store.domain("gain"), -3) {
		t.Errorf("expected -3 after gesture, got control %v store %v", a.value, store.domain("gain"))
	}
}

func TestGroup_GesturesWithoutParameter(t *testing.T) {
	store := newFakeStore()
	loop := NewLoop().SyncMode()
	g, _ := NewGroup(store, "absent", loop)
	defer g.Close()
	ui := loop.uiContext(context.Background())

	g.BeginGesture(ui)
	g.EndGesture(ui)

	if store.transactions != 0 {
		t.Errorf("expected no transaction, got %d", store.transactions)
	}
}

func TestGroup_PushWhenMissing(t *testing.T) {
	t.Run("default pushes to controls", func(t *testing.T) {
		loop := NewLoop().SyncMode()
		g, _ := NewGroup(newFakeStore(), "absent", loop)
		defer g.Close()
		a := &stubControl{}
		g.Attach(a)

		g.Confirm(loop.uiContext(context.Background()), 4)
		if a.value != 4 {
			t.Errorf("expected control at 4, got %v", a.value)
		}
	})

	t.Run("disabled skips push", func(t *testing.T) {
		loop := NewLoop().SyncMode()
		g, _ := NewGroup(newFakeStore(), "absent", loop)
		defer g.Close()
		g.PushWhenMissing(false)
		a := &stubControl{}
		g.Attach(a)

		g.Confirm(loop.uiContext(context.Background()), 4)
		if len(a.displays) != 0 {
			t.Errorf("expected no display, got %v", a.displays)
		}
		if g.LastValue() != 4 {
			t.Errorf("expected last value recorded, got %v", g.LastValue())
		}
	})
}

func TestGroup_Close(t *testing.T) {
	g, store, loop, _ := newTestGroup(t)

	g.Confirm(context.Background(), -10)
	if err := g.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if len(store.listeners["gain"]) != 0 {
		t.Error("expected listener removed")
	}

	loop.Process(context.Background())
	if store.params["gain"].writes != 0 {
		t.Error("expected pending dispatch dropped after Close")
	}

	g.Confirm(context.Background(), -20)
	if loop.Pending() != 0 {
		t.Errorf("expected nothing posted after Close, got %d", loop.Pending())
	}
	if g.LastValue() != -20 {
		t.Errorf("expected value recorded, got %v", g.LastValue())
	}
}

func TestGroup_OnNewValueCleared(t *testing.T) {
	g, store, _, _ := newTestGroup(t)
	rec := &newValueRecorder{}
	g.OnNewValue(rec.fn)
	g.OnNewValue(nil)

	p := store.params["gain"]
	p.SetValueNotifyingHost(context.Background(), 0.1)

	if len(rec.all()) != 0 {
		t.Errorf("expected no callback, got %v", rec.all())
	}
}

func TestGroup_AttachDetachIgnoreNilAndDuplicates(t *testing.T) {
	g, _, _, _ := newTestGroup(t)
	a := &stubControl{}

	g.Attach(nil)
	g.Attach(a)
	g.Attach(a)
	if g.Len() != 1 {
		t.Errorf("expected 1 control, got %d", g.Len())
	}

	g.Detach(nil)
	g.Detach(&stubControl{})
	g.Detach(a)
	if g.Len() != 0 {
		t.Errorf("expected 0 controls, got %d", g.Len())
	}
}

func TestGroup_Convergence(t *testing.T) {
	g, store, loop, ui := newTestGroup(t)
	a := &stubControl{}
	b := &stubControl{}
	g.Attach(a)
	g.Attach(b)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		v := gainRange.Start + rng.Float64()*gainRange.Length()
		switch rng.Intn(3) {
		case 0:
			g.Confirm(ui, v)
		case 1:
			g.Confirm(context.Background(), v)
		default:
			loop.Process(context.Background())
		}
	}
	loop.Process(context.Background())

	want := g.LastValue()
	if !near(store.domain("gain"), want) {
		t.Errorf("store %v did not converge to %v", store.domain("gain"), want)
	}
	if a.value != want || b.value != want {
		t.Errorf("controls %v and %v did not converge to %v", a.value, b.value, want)
	}
}
