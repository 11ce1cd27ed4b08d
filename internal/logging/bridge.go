package logging

import (
	"context"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/detent"
	"github.com/zoobzio/detent/pkg/preset"
	"github.com/zoobzio/detent/pkg/redis"
)

// Fields extracts log attributes from an event.
type Fields func(e *capitan.Event) []any

// DetentFields reads the keys shared by every detent signal.
func DetentFields(e *capitan.Event) []any {
	var args []any
	if v, ok := detent.KeyParameter.From(e); ok {
		args = append(args, "parameter", v)
	}
	if v, ok := detent.KeyValue.From(e); ok {
		args = append(args, "value", v)
	}
	if v, ok := detent.KeyNormalized.From(e); ok {
		args = append(args, "normalized", v)
	}
	if v, ok := detent.KeyControls.From(e); ok {
		args = append(args, "controls", v)
	}
	if v, ok := detent.KeyCoalesced.From(e); ok {
		args = append(args, "coalesced", v)
	}
	if v, ok := detent.KeyState.From(e); ok {
		args = append(args, "state", v)
	}
	if v, ok := detent.KeyError.From(e); ok {
		args = append(args, "error", v)
	}
	return args
}

// Bridge hooks each signal and writes its events to l, named after the
// signal. Events carrying an error are logged at WARN, the rest at DEBUG.
// Extra extractors add attributes for package-specific keys. The returned
// function removes the hooks.
func Bridge(l *Logger, signals []capitan.Signal, extra ...Fields) func() {
	listeners := make([]*capitan.Listener, 0, len(signals))
	for _, sig := range signals {
		name := sig.Name()
		listeners = append(listeners, capitan.Hook(sig, func(_ context.Context, e *capitan.Event) {
			args := DetentFields(e)
			for _, fn := range extra {
				args = append(args, fn(e)...)
			}
			if _, failed := detent.KeyError.From(e); failed {
				l.Warn(name, args...)
				return
			}
			l.Debug(name, args...)
		}))
	}

	return func() {
		for _, listener := range listeners {
			listener.Close()
		}
	}
}

// CoreSignals lists the signals emitted by the detent package.
func CoreSignals() []capitan.Signal {
	return []capitan.Signal{
		detent.GroupCreated,
		detent.GroupClosed,
		detent.ControlAttached,
		detent.ControlDetached,
		detent.CandidateReported,
		detent.CandidateIgnored,
		detent.DispatchApplied,
		detent.DispatchCancelled,
		detent.GestureBegan,
		detent.GestureEnded,
		detent.StoreChanged,
		detent.EchoSuppressed,
		detent.ParameterMissing,
		detent.LoopStarted,
		detent.LoopStopped,
		detent.ConfirmerAccepted,
		detent.ConfirmerRejected,
	}
}

// PresetSignals lists the signals emitted by preset followers.
func PresetSignals() []capitan.Signal {
	return []capitan.Signal{
		preset.FollowerStarted,
		preset.FollowerStopped,
		preset.FollowerStateChanged,
		preset.PresetReceived,
		preset.PresetDecodeFailed,
		preset.PresetInvalid,
		preset.PresetApplyFailed,
		preset.PresetApplied,
	}
}

// PresetFields reads preset follower keys.
func PresetFields(e *capitan.Event) []any {
	var args []any
	if v, ok := preset.KeyPreset.From(e); ok {
		args = append(args, "preset", v)
	}
	if v, ok := preset.KeyOldState.From(e); ok {
		args = append(args, "old_state", v)
	}
	if v, ok := preset.KeyNewState.From(e); ok {
		args = append(args, "new_state", v)
	}
	if v, ok := preset.KeyDebounce.From(e); ok {
		args = append(args, "debounce", v.String())
	}
	if v, ok := preset.KeyValues.From(e); ok {
		args = append(args, "values", v)
	}
	return args
}

// SurfaceSignals lists the signals emitted by redis surfaces.
func SurfaceSignals() []capitan.Signal {
	return []capitan.Signal{
		redis.SurfaceStarted,
		redis.SurfaceEditInvalid,
		redis.SurfacePublishFailed,
		redis.SurfaceStopped,
	}
}

// SurfaceFields reads redis surface keys.
func SurfaceFields(e *capitan.Event) []any {
	var args []any
	if v, ok := redis.KeyChannel.From(e); ok {
		args = append(args, "channel", v)
	}
	if v, ok := redis.KeyPayload.From(e); ok {
		args = append(args, "payload", v)
	}
	return args
}

// AllSignals lists every signal the command logs.
func AllSignals() []capitan.Signal {
	all := CoreSignals()
	all = append(all, PresetSignals()...)
	return append(all, SurfaceSignals()...)
}
