package detent

// registry is the set of controls attached to a Group. It holds
// back-references only and is touched exclusively on the UI context.
//
// Controls may detach while the registry is being iterated (a control's
// SetDisplay can close another control). Removal during iteration leaves a
// nil tombstone that is compacted once the outermost iteration returns, so
// indices stay stable and no detached control is visited afterwards.
type registry struct {
	items     []Control
	iterating int
	dirty     bool
}

func (r *registry) indexOf(c Control) int {
	for i, item := range r.items {
		if item == c {
			return i
		}
	}
	return -1
}

func (r *registry) contains(c Control) bool {
	return c != nil && r.indexOf(c) >= 0
}

// add appends c unless it is nil or already present.
func (r *registry) add(c Control) bool {
	if c == nil || r.contains(c) {
		return false
	}
	r.items = append(r.items, c)
	return true
}

// remove drops c, reporting whether it was present.
func (r *registry) remove(c Control) bool {
	if c == nil {
		return false
	}
	i := r.indexOf(c)
	if i < 0 {
		return false
	}
	if r.iterating > 0 {
		r.items[i] = nil
		r.dirty = true
		return true
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return true
}

// each calls fn for every control attached when the iteration began.
func (r *registry) each(fn func(Control)) {
	r.iterating++
	defer func() {
		r.iterating--
		if r.iterating == 0 && r.dirty {
			r.compact()
		}
	}()

	n := len(r.items)
	for i := 0; i < n && i < len(r.items); i++ {
		if c := r.items[i]; c != nil {
			fn(c)
		}
	}
}

func (r *registry) compact() {
	kept := r.items[:0]
	for _, c := range r.items {
		if c != nil {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(r.items); i++ {
		r.items[i] = nil
	}
	r.items = kept
	r.dirty = false
}

// len returns the number of live controls.
func (r *registry) len() int {
	n := 0
	for _, c := range r.items {
		if c != nil {
			n++
		}
	}
	return n
}
