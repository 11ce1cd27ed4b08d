// Package preset follows an external source of parameter presets and
// writes each accepted preset into a store.
//
// A Follower reads raw documents from a Watcher, decodes them with a
// Codec, validates them, and writes every value through a Setter on its
// own goroutine. Groups bound to the store see those writes as external
// changes, exactly like host automation.
//
//	Source → Decode → Validate → Set → Store listeners
//
// Rapid changes are debounced. A document that fails to decode or
// validate leaves the previous preset in place and moves the follower to
// the degraded state (or empty, if nothing was ever applied).
//
// Example:
//
//	follower := preset.New(preset.NewFileWatcher("preset.yaml"), store).
//	    Codec(preset.YAMLCodec{}).
//	    Debounce(250 * time.Millisecond)
//	if err := follower.Start(ctx); err != nil {
//	    log.Printf("initial preset failed: %v", err)
//	}
package preset
