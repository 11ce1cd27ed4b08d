package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// writeEvents are the keyspace events that replace a string key.
var writeEvents = map[string]bool{
	"set":    true,
	"setex":  true,
	"psetex": true,
	"setnx":  true,
	"mset":   true,
	"getset": true,
}

// KeyWatcher follows a Redis string key holding an encoded preset. It
// requires keyspace notifications on the server:
//
//	CONFIG SET notify-keyspace-events KEA
type KeyWatcher struct {
	client *redis.Client
	key    string
}

// NewKeyWatcher creates a KeyWatcher for key.
func NewKeyWatcher(client *redis.Client, key string) *KeyWatcher {
	return &KeyWatcher{client: client, key: key}
}

func (w *KeyWatcher) channel() string {
	return fmt.Sprintf("__keyspace@%d__:%s", w.client.Options().DB, w.key)
}

// Watch emits the key's current value, if any, and then its value after
// every write. The channel closes when ctx is canceled.
func (w *KeyWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	pubsub := w.client.Subscribe(ctx, w.channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis: subscribe to keyspace of %s: %w", w.key, err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer pubsub.Close()

		if !w.emit(ctx, out) {
			return
		}

		events := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-events:
				if !ok {
					return
				}
				if writeEvents[msg.Payload] && !w.emit(ctx, out) {
					return
				}
			}
		}
	}()

	return out, nil
}

// emit sends the key's value. It reports false once ctx is done. A
// missing key sends nothing.
func (w *KeyWatcher) emit(ctx context.Context, out chan<- []byte) bool {
	val, err := w.client.Get(ctx, w.key).Bytes()
	if err != nil {
		// redis.Nil for a missing key; anything else is retried on the
		// next write event.
		return ctx.Err() == nil
	}
	select {
	case out <- val:
		return true
	case <-ctx.Done():
		return false
	}
}
