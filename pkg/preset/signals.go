package preset

import "github.com/zoobzio/capitan"

// Follower signals.
var (
	// FollowerStarted is emitted when a Follower begins watching.
	FollowerStarted = capitan.NewSignal(
		"detent.preset.started",
		"Preset follower started",
	)

	// FollowerStopped is emitted when a Follower stops watching.
	FollowerStopped = capitan.NewSignal(
		"detent.preset.stopped",
		"Preset follower stopped",
	)

	// FollowerStateChanged is emitted on every state transition.
	FollowerStateChanged = capitan.NewSignal(
		"detent.preset.state.changed",
		"Preset follower state changed",
	)

	// PresetReceived is emitted when the watcher delivers a document.
	PresetReceived = capitan.NewSignal(
		"detent.preset.received",
		"Preset document received",
	)

	// PresetDecodeFailed is emitted when a document cannot be decoded.
	PresetDecodeFailed = capitan.NewSignal(
		"detent.preset.decode.failed",
		"Preset document could not be decoded",
	)

	// PresetInvalid is emitted when a decoded document fails validation.
	PresetInvalid = capitan.NewSignal(
		"detent.preset.invalid",
		"Preset document failed validation",
	)

	// PresetApplyFailed is emitted when a value cannot be written.
	PresetApplyFailed = capitan.NewSignal(
		"detent.preset.apply.failed",
		"Preset values could not be written",
	)

	// PresetApplied is emitted after every value of a preset was written.
	PresetApplied = capitan.NewSignal(
		"detent.preset.applied",
		"Preset applied",
	)
)

// Field keys for preset events.
var (
	// KeyPreset is the name of the preset.
	KeyPreset = capitan.NewStringKey("preset")

	// KeyOldState is the state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyDebounce is the configured debounce duration.
	KeyDebounce = capitan.NewDurationKey("debounce")

	// KeyValues is the number of values in a preset.
	KeyValues = capitan.NewIntKey("values")
)
