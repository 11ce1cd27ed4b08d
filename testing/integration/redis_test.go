package integration

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/zoobzio/detent/pkg/preset"
	dredis "github.com/zoobzio/detent/pkg/redis"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.ConfigSet(ctx, "notify-keyspace-events", "KEA").Err(); err != nil {
		t.Fatalf("failed to enable keyspace notifications: %v", err)
	}
	return client
}

func TestRedis_PresetKeyAndSurfaceShareOneGroup(t *testing.T) {
	client := setupRedis(t)
	r := newRig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := "detent:preset"
	if err := client.Set(ctx, key, `{"name":"a","values":{"gain":-24}}`, 0).Err(); err != nil {
		t.Fatalf("failed to set preset: %v", err)
	}

	follower := preset.New(dredis.NewKeyWatcher(client, key), r.store).Debounce(20 * time.Millisecond)
	if err := follower.Start(ctx); err != nil {
		t.Fatalf("follower Start failed: %v", err)
	}
	if !waitFor(t, 5*time.Second, func() bool { return r.settled(-24) }) {
		t.Fatalf("expected preset -24 everywhere, widget=%v", r.widget.Value())
	}

	surface := dredis.NewSurface(client, r.group)
	if err := surface.Start(ctx); err != nil {
		t.Fatalf("surface Start failed: %v", err)
	}
	defer surface.Close(ctx)

	if !waitFor(t, 5*time.Second, func() bool { return r.group.Len() == 2 }) {
		t.Fatalf("expected surface attached, controls=%d", r.group.Len())
	}

	if err := client.Publish(ctx, surface.EditChannel(), "-9").Err(); err != nil {
		t.Fatalf("publish edit failed: %v", err)
	}
	if !waitFor(t, 5*time.Second, func() bool { return r.settled(-9) && near(surface.CurrentValue(), -9) }) {
		t.Fatalf("expected surface edit -9 everywhere, widget=%v surface=%v", r.widget.Value(), surface.CurrentValue())
	}

	if err := client.Set(ctx, key, `{"name":"b","values":{"gain":-3}}`, 0).Err(); err != nil {
		t.Fatalf("failed to update preset: %v", err)
	}
	if !waitFor(t, 5*time.Second, func() bool { return r.settled(-3) && near(surface.CurrentValue(), -3) }) {
		t.Fatalf("expected preset -3 everywhere, widget=%v surface=%v", r.widget.Value(), surface.CurrentValue())
	}
}
