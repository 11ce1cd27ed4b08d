// Package redis connects detent groups to Redis.
//
// Surface is a remote control surface: edits arrive on a pub/sub channel
// and are reported to a Group like any local widget, while confirmed
// values are published back on a display channel. KeyWatcher follows a
// Redis key through keyspace notifications and feeds a preset follower.
package redis
