package detent

// guard suppresses re-entry while a Group writes into its store or its
// controls. It is only read and written on the UI context.
type guard struct {
	active bool
}

// hold sets the guard for the duration of fn and restores the previous
// value on every exit path, including panics.
func (g *guard) hold(fn func()) {
	prev := g.active
	g.active = true
	defer func() { g.active = prev }()
	fn()
}
