package detent

import "context"

// Dispatcher hands work to the single-threaded UI context.
//
// Post must never block: it is called from producer goroutines that may be
// running under real-time constraints. Tasks run in posting order on the UI
// context and receive a context for which IsUI reports true.
//
// IsUI reports whether ctx was handed out by this dispatcher to a running
// task, i.e. whether the caller is executing on the UI context. Contexts
// carrying that marker must not be passed to other goroutines.
type Dispatcher interface {
	Post(task func(ctx context.Context))
	IsUI(ctx context.Context) bool
}
