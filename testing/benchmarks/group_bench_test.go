package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/zoobzio/detent"
	"github.com/zoobzio/detent/pkg/memstore"
)

func benchGroup(b *testing.B) (*detent.Group, *detent.Loop, *memstore.Store) {
	b.Helper()
	store, err := memstore.New(memstore.Definition{
		ID:      "gain",
		Range:   detent.Range{Start: -60, End: 12},
		Default: 0,
	})
	if err != nil {
		b.Fatal(err)
	}
	loop := detent.NewLoop().SyncMode()
	if err := loop.Start(context.Background()); err != nil {
		b.Fatal(err)
	}
	g, err := detent.NewGroup(store, "gain", loop)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = g.Close() })
	return g, loop, store
}

type nopControl struct{ v float64 }

func (c *nopControl) CurrentValue() float64                   { return c.v }
func (c *nopControl) SetDisplay(_ context.Context, v float64) { c.v = v }

func BenchmarkGroup_ProducerConfirm(b *testing.B) {
	g, _, _ := benchGroup(b)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Confirm(ctx, float64(i%72)-60)
	}
}

func BenchmarkGroup_ProducerConfirmParallel(b *testing.B) {
	g, _, _ := benchGroup(b)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		v := 0.0
		for pb.Next() {
			v -= 0.01
			g.Confirm(ctx, v)
		}
	})
}

func BenchmarkGroup_LastValue(b *testing.B) {
	g, _, _ := benchGroup(b)

	b.ReportAllocs()
	b.ResetTimer()
	var sink float64
	for i := 0; i < b.N; i++ {
		sink += g.LastValue()
	}
	_ = sink
}

func BenchmarkGroup_UIConfirm(b *testing.B) {
	for _, controls := range []int{1, 4, 16} {
		b.Run(fmt.Sprintf("controls=%d", controls), func(b *testing.B) {
			g, loop, _ := benchGroup(b)
			for i := 0; i < controls; i++ {
				g.Attach(&nopControl{})
			}
			var ui context.Context
			_ = loop.Invoke(context.Background(), func(c context.Context) { ui = c })

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				g.Confirm(ui, float64(i%72)-60)
			}
		})
	}
}

func BenchmarkGroup_ConfirmAndDispatch(b *testing.B) {
	g, loop, _ := benchGroup(b)
	g.Attach(&nopControl{})
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < 64; j++ {
			g.Confirm(ctx, float64(j%72)-60)
		}
		loop.Process(ctx)
	}
}

func BenchmarkRange_RoundTrip(b *testing.B) {
	r := detent.Range{Start: 20, End: 20000}.WithCentre(1000)

	b.ReportAllocs()
	b.ResetTimer()
	var sink float64
	for i := 0; i < b.N; i++ {
		sink += r.ToDomain(r.ToNormalized(float64(20 + i%19980)))
	}
	_ = sink
}
