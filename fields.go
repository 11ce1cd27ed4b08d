package detent

import "github.com/zoobzio/capitan"

// Field keys for detent events.
var (
	// KeyParameter is the parameter id a Group is bound to.
	KeyParameter = capitan.NewStringKey("parameter")

	// KeyGroup is the unique id of a Group instance.
	KeyGroup = capitan.NewStringKey("group")

	// KeyValue is a value in domain units.
	KeyValue = capitan.NewFloat64Key("value")

	// KeyNormalized is a value on the store's [0,1] scale.
	KeyNormalized = capitan.NewFloat64Key("normalized")

	// KeyControls is the number of controls attached to a Group.
	KeyControls = capitan.NewIntKey("controls")

	// KeyCoalesced is the number of confirms folded into one dispatch.
	KeyCoalesced = capitan.NewIntKey("coalesced")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyState is the current state of a Loop.
	KeyState = capitan.NewStringKey("state")
)
