// Package detent keeps many UI controls attached to one parameter in sync
// with a store of record, while a producer goroutine (audio, automation,
// a network surface) may push values at a far higher rate than the UI
// needs to redraw.
//
// The core type is Group. It owns the authoritative value for one
// parameter and mediates between the store and every attached Control.
//
// # Withhold Until Confirmed
//
// A user edit on a control never reaches the store directly:
//
//	Control edit → ReportCandidate → control reverted → OnNewValue(id, candidate)
//	Owner decides → Confirm(value) → store write → every control updated
//
// The owner sees each candidate before any control or the host does, so it
// can validate, quantize, rate-limit or couple parameters first. Confirmer
// is a ready-made owner that runs candidates through a pipz pipeline.
//
// # Coalesced Dispatch
//
// Confirm may be called from any goroutine. On the UI context it applies
// immediately. Elsewhere it stores the value atomically and arms a single
// pending dispatch on the Dispatcher; further confirms before the dispatch
// runs only replace the value:
//
//	producer: Confirm(0.31) Confirm(0.30) ... Confirm(0.3)   (one Post)
//	UI:       dispatch → store + controls show 0.3           (one apply)
//
// A synchronous confirm on the UI context cancels any pending dispatch, so
// a stale producer value can never overwrite it.
//
// # Reentrancy
//
// While the Group writes into the store or its controls it holds a guard.
// The store's change notification and the controls' change events caused
// by that write are swallowed instead of looping back as new candidates.
//
// # Dispatchers
//
// Loop is a small Dispatcher that runs tasks on one goroutine and can pace
// slices to a frame interval. pkg/tui provides a Dispatcher over a
// bubbletea program. The UI context is identified by a marker on the
// context.Context that the Dispatcher hands to its tasks.
//
// # Example
//
//	loop := detent.NewLoop().FrameInterval(16 * time.Millisecond)
//	_ = loop.Start(ctx)
//
//	group, err := detent.NewGroup(store, "gain", loop)
//	if err != nil {
//	    return err
//	}
//	detent.NewConfirmer(group, detent.WithMiddleware(detent.UseSnap()))
//
//	_ = loop.Invoke(ctx, func(ui context.Context) {
//	    detent.NewSliderAttachment(ui, group, knobA)
//	    detent.NewSliderAttachment(ui, group, knobB)
//	})
//
//	// From the audio goroutine:
//	group.Confirm(ctx, envelope.Next())
package detent
