package redis

import "github.com/zoobzio/capitan"

// Surface signals.
var (
	// SurfaceStarted is emitted once a Surface has subscribed to its edit channel.
	SurfaceStarted = capitan.NewSignal(
		"detent.redis.surface.started",
		"Remote surface subscribed",
	)

	// SurfaceEditInvalid is emitted when an edit message cannot be parsed.
	SurfaceEditInvalid = capitan.NewSignal(
		"detent.redis.surface.edit.invalid",
		"Remote edit could not be parsed",
	)

	// SurfacePublishFailed is emitted when a display value cannot be published.
	SurfacePublishFailed = capitan.NewSignal(
		"detent.redis.surface.publish.failed",
		"Remote display publish failed",
	)

	// SurfaceStopped is emitted when a Surface shuts down.
	SurfaceStopped = capitan.NewSignal(
		"detent.redis.surface.stopped",
		"Remote surface stopped",
	)
)

// Field keys for surface events.
var (
	// KeyChannel is the pub/sub channel involved.
	KeyChannel = capitan.NewStringKey("channel")

	// KeyPayload is the raw message payload.
	KeyPayload = capitan.NewStringKey("payload")
)
